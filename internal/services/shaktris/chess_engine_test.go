package shaktris

import (
	"errors"
	"testing"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/gameerr"
	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

// tetrominoFloor marks every cell in cells as a passable tetromino-owned
// cell, the minimal standing surface chess pieces need per the "walks on
// blocks" adaptation (section 4.C).
func tetrominoFloor(board *models.Board, playerID string, cells ...models.Coord) {
	for _, c := range cells {
		board.Append(c, models.Item{Kind: models.ItemTetromino, Tetromino: &models.TetrominoItem{PlayerID: playerID, PieceType: models.PieceO}})
	}
}

func TestRookSlidesUntilBlockedAndCapturesOpponent(t *testing.T) {
	g := models.NewGame("g1")
	tetrominoFloor(g.Board, "p1", models.Coord{X: 1, Z: 0}, models.Coord{X: 2, Z: 0}, models.Coord{X: 3, Z: 0})
	rook := &models.ChessPiece{ID: "r1", Type: models.Rook, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}}
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0})
	g.Pieces = append(g.Pieces, rook)

	dest := LegalDestinations(g, rook)
	want := map[models.Coord]bool{{X: 1, Z: 0}: true, {X: 2, Z: 0}: true, {X: 3, Z: 0}: true}
	if len(dest) != len(want) {
		t.Fatalf("expected 3 destinations along the floor, got %v", dest)
	}
	for _, d := range dest {
		if !want[d] {
			t.Fatalf("unexpected destination %v", d)
		}
	}

	// Now place an opposing piece at (2,0): the rook should be able to
	// capture it but not slide past it to (3,0).
	g.Board.Append(models.Coord{X: 2, Z: 0}, models.Item{Kind: models.ItemChess, Chess: &models.ChessItem{PieceID: "e1", Type: models.Pawn, PlayerID: "p2"}})
	dest = LegalDestinations(g, rook)
	if containsCoord(dest, models.Coord{X: 3, Z: 0}) {
		t.Fatal("rook should not slide past a captured opposing piece")
	}
	if !containsCoord(dest, models.Coord{X: 2, Z: 0}) {
		t.Fatal("rook should be able to capture the opposing piece in its path")
	}
}

func TestKnightMovesIgnoreIntermediateOccupancy(t *testing.T) {
	g := models.NewGame("g1")
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0}, models.Coord{X: 2, Z: 1})
	// Every intervening cell stays empty; a knight must still reach (2,1).
	knight := &models.ChessPiece{ID: "n1", Type: models.Knight, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}}
	g.Pieces = append(g.Pieces, knight)

	if !containsCoord(LegalDestinations(g, knight), models.Coord{X: 2, Z: 1}) {
		t.Fatal("expected the knight to reach (2,1) regardless of what lies between")
	}
}

func TestPieceCannotStandOnImpassableCell(t *testing.T) {
	g := models.NewGame("g1")
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0})
	// (1,0) is bare board, neither tetromino nor home: impassable.
	rook := &models.ChessPiece{ID: "r1", Type: models.Rook, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}}
	g.Pieces = append(g.Pieces, rook)

	if containsCoord(LegalDestinations(g, rook), models.Coord{X: 1, Z: 0}) {
		t.Fatal("expected bare board cells to be impassable to chess pieces")
	}
}

func TestPawnAdvancesAlongHomeZoneOrientation(t *testing.T) {
	g := models.NewGame("g1")
	// Orientation 2 means forward is (0,-1): this zone's pawns advance
	// toward decreasing z, not the default increasing z.
	g.HomeZones["p1"] = models.HomeZone{PlayerID: "p1", Orientation: 2}
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0}, models.Coord{X: 0, Z: -1})
	pawn := &models.ChessPiece{ID: "pw1", Type: models.Pawn, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}}
	g.Pieces = append(g.Pieces, pawn)

	dest := LegalDestinations(g, pawn)
	if !containsCoord(dest, models.Coord{X: 0, Z: -1}) {
		t.Fatalf("expected pawn to advance toward -z under orientation 2, got %v", dest)
	}
	if containsCoord(dest, models.Coord{X: 0, Z: 1}) {
		t.Fatal("pawn should not advance toward +z under orientation 2")
	}
}

func TestPawnCapturesOnlyDiagonally(t *testing.T) {
	g := models.NewGame("g1")
	g.HomeZones["p1"] = models.HomeZone{PlayerID: "p1"}
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0}, models.Coord{X: 0, Z: 1}, models.Coord{X: 1, Z: 1})
	pawn := &models.ChessPiece{ID: "pw1", Type: models.Pawn, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}}
	g.Pieces = append(g.Pieces, pawn)
	g.Board.Append(models.Coord{X: 0, Z: 1}, models.Item{Kind: models.ItemChess, Chess: &models.ChessItem{PieceID: "e1", Type: models.Pawn, PlayerID: "p2"}})
	g.Board.Append(models.Coord{X: 1, Z: 1}, models.Item{Kind: models.ItemChess, Chess: &models.ChessItem{PieceID: "e2", Type: models.Pawn, PlayerID: "p2"}})

	dest := LegalDestinations(g, pawn)
	if containsCoord(dest, models.Coord{X: 0, Z: 1}) {
		t.Fatal("a pawn should not be able to advance straight into an occupied cell")
	}
	if !containsCoord(dest, models.Coord{X: 1, Z: 1}) {
		t.Fatal("a pawn should be able to capture diagonally")
	}
}

func TestValidateMoveRejectsWrongOwner(t *testing.T) {
	g := models.NewGame("g1")
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0}, models.Coord{X: 1, Z: 0})
	rook := &models.ChessPiece{ID: "r1", Type: models.Rook, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}}
	g.Pieces = append(g.Pieces, rook)

	_, err := ValidateMove(g, "p2", "r1", models.Coord{X: 1, Z: 0})
	if !errors.Is(err, gameerr.ErrNotYourPiece) {
		t.Fatalf("expected ErrNotYourPiece, got %v", err)
	}
}

func TestValidateMoveRejectsIllegalDestination(t *testing.T) {
	g := models.NewGame("g1")
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0})
	rook := &models.ChessPiece{ID: "r1", Type: models.Rook, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}}
	g.Pieces = append(g.Pieces, rook)

	_, err := ValidateMove(g, "p1", "r1", models.Coord{X: 9, Z: 9})
	if !errors.Is(err, gameerr.ErrIllegalChessMove) {
		t.Fatalf("expected ErrIllegalChessMove, got %v", err)
	}
}

func TestApplyMoveCapturesAndEndsGameOnKingCapture(t *testing.T) {
	g := models.NewGame("g1")
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0}, models.Coord{X: 1, Z: 0})
	attacker := &models.ChessPiece{ID: "r1", Type: models.Rook, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}}
	king := &models.ChessPiece{ID: "k1", Type: models.King, PlayerID: "p2", Position: models.Coord{X: 1, Z: 0}}
	g.Pieces = append(g.Pieces, attacker, king)
	g.Board.Append(models.Coord{X: 1, Z: 0}, models.Item{Kind: models.ItemChess, Chess: &models.ChessItem{PieceID: "k1", Type: models.King, PlayerID: "p2"}})

	result := ApplyMove(g, attacker, models.Coord{X: 1, Z: 0}, time.Now())
	if !result.KingCaptured {
		t.Fatal("expected capturing the king to report KingCaptured")
	}
	if g.Status != models.StatusEnded || g.Winner != "p1" || g.EndReason != models.EndReasonKingCaptured {
		t.Fatalf("expected the game to end with p1 as winner, got status=%s winner=%s reason=%s", g.Status, g.Winner, g.EndReason)
	}
	if _, ok := g.PieceByID("k1"); ok {
		t.Fatal("expected the captured king to be removed from the roster")
	}
}

func TestApplyMovePromotesPawnInOpposingHomeZone(t *testing.T) {
	g := models.NewGame("g1")
	g.HomeZones["p1"] = models.HomeZone{PlayerID: "p1"}
	g.HomeZones["p2"] = models.HomeZone{PlayerID: "p2", MinX: 0, MaxX: 0, MinZ: 5, MaxZ: 5}
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 4}, models.Coord{X: 0, Z: 5})
	pawn := &models.ChessPiece{ID: "pw1", Type: models.Pawn, PlayerID: "p1", Position: models.Coord{X: 0, Z: 4}}
	g.Pieces = append(g.Pieces, pawn)

	result := ApplyMove(g, pawn, models.Coord{X: 0, Z: 5}, time.Now())
	if !result.Promoted {
		t.Fatal("expected the pawn to promote on reaching the opposing home zone")
	}
	if pawn.Type != models.Queen {
		t.Fatalf("expected the promoted pawn to become a queen, got %s", pawn.Type)
	}
}

func TestHasValidChessMovesFalseWhenPieceIsBoxedIn(t *testing.T) {
	g := models.NewGame("g1")
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0})
	king := &models.ChessPiece{ID: "k1", Type: models.King, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}}
	g.Pieces = append(g.Pieces, king)

	if HasValidChessMoves(g, "p1") {
		t.Fatal("expected no legal moves when the only floor cell is the king's own cell")
	}
}
