package shaktris

import (
	"testing"

	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

func placeTetromino(board *models.Board, playerID string, cells ...models.Coord) {
	for _, c := range cells {
		board.Append(c, models.Item{Kind: models.ItemTetromino, Tetromino: &models.TetrominoItem{PlayerID: playerID, PieceType: models.PieceO}})
	}
}

func TestHasPathToKingDirectAdjacency(t *testing.T) {
	board := models.NewBoard()
	king := models.Coord{X: 0, Z: 0}
	board.Append(king, models.Item{Kind: models.ItemHome, Home: &models.HomeItem{PlayerID: "p1"}})
	placeTetromino(board, "p1", models.Coord{X: 1, Z: 0}, models.Coord{X: 2, Z: 0})

	start := models.Coord{X: 2, Z: 0}
	path, ok := HasPathToKing(board, start, king, "p1")
	if !ok {
		t.Fatal("expected a path back to the king")
	}
	if path[0] != start || path[len(path)-1] != king {
		t.Fatalf("path should run from start to king, got %v", path)
	}
}

func TestHasPathToKingFailsAcrossAGap(t *testing.T) {
	board := models.NewBoard()
	king := models.Coord{X: 0, Z: 0}
	board.Append(king, models.Item{Kind: models.ItemHome, Home: &models.HomeItem{PlayerID: "p1"}})
	// An isolated cell three steps away with nothing bridging it: not
	// eight-connected to the king's cell.
	placeTetromino(board, "p1", models.Coord{X: 3, Z: 3})

	if _, ok := HasPathToKing(board, models.Coord{X: 3, Z: 3}, king, "p1"); ok {
		t.Fatal("expected no path across a gap with no connecting cells")
	}
}

func TestHasPathToKingRejectsCellsOwnedByAnotherPlayer(t *testing.T) {
	board := models.NewBoard()
	king := models.Coord{X: 0, Z: 0}
	board.Append(king, models.Item{Kind: models.ItemHome, Home: &models.HomeItem{PlayerID: "p1"}})
	placeTetromino(board, "p2", models.Coord{X: 1, Z: 0})

	if _, ok := HasPathToKing(board, models.Coord{X: 1, Z: 0}, king, "p1"); ok {
		t.Fatal("a cell belonging to another player must not count as p1's path")
	}
}

func TestFindIslandsSeparatesDisconnectedComponents(t *testing.T) {
	board := models.NewBoard()
	board.Append(models.Coord{X: 0, Z: 0}, models.Item{Kind: models.ItemHome, Home: &models.HomeItem{PlayerID: "p1"}})
	placeTetromino(board, "p1", models.Coord{X: 1, Z: 0})
	// A disconnected cluster far away from the home zone.
	placeTetromino(board, "p1", models.Coord{X: 10, Z: 10}, models.Coord{X: 11, Z: 10})

	islands := FindIslands(board, "p1")
	if len(islands) != 2 {
		t.Fatalf("expected 2 islands, got %d: %v", len(islands), islands)
	}

	var sizes []int
	for _, island := range islands {
		sizes = append(sizes, len(island))
	}
	foundTwo := false
	for _, s := range sizes {
		if s == 2 {
			foundTwo = true
		}
	}
	if !foundTwo {
		t.Fatalf("expected one island of size 2 (home+adjacent) among %v", sizes)
	}
}

func TestFindIslandsIgnoresOtherPlayersCells(t *testing.T) {
	board := models.NewBoard()
	placeTetromino(board, "p1", models.Coord{X: 0, Z: 0})
	placeTetromino(board, "p2", models.Coord{X: 5, Z: 5})

	islands := FindIslands(board, "p1")
	if len(islands) != 1 || len(islands[0]) != 1 {
		t.Fatalf("expected exactly one single-cell island for p1, got %v", islands)
	}
}
