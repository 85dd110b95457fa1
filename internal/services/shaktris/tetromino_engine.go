package shaktris

import (
	"time"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/gameerr"
	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

// CanPlace validates a tetromino placement per section 4.B, without
// mutating the board. It mirrors the teacher's HasCollision check in
// board.go, generalized from "any existing block" to "a chess item, or a
// tetromino item belonging to someone else", plus the adjacency and
// connectivity checks the teacher's fixed-grid board never needed.
func CanPlace(game *models.Game, t models.Tetromino, playerID string) error {
	cells := t.Cells()

	anyOccupiedBefore := false
	adjacentToExisting := false

	for _, c := range cells {
		if chessItem, ok := game.Board.HasChessItem(c); ok {
			_ = chessItem
			return gameerr.New(gameerr.CodeCollision, "cell is occupied by a chess piece")
		}
		if tet, ok := game.Board.HasTetrominoItem(c); ok && tet.PlayerID != playerID {
			return gameerr.New(gameerr.CodeCollision, "cell is occupied by another player's tetromino")
		}
		for _, n := range c.Neighbours() {
			if game.Board.Occupied(n) {
				adjacentToExisting = true
			}
		}
	}

	game.Board.IterateOccupied(func(c models.Coord, items []models.Item) {
		anyOccupiedBefore = true
	})

	if anyOccupiedBefore && !adjacentToExisting {
		return gameerr.New(gameerr.CodeNotAdjacent, "placement is not adjacent to any existing occupied cell")
	}

	king, ok := game.KingOf(playerID)
	if !ok {
		return gameerr.New(gameerr.CodeNotYourPiece, "player has no king on the board")
	}

	sim := game.Board.Clone()
	for _, c := range cells {
		sim.Append(c, models.Item{Kind: models.ItemTetromino, Tetromino: &models.TetrominoItem{PlayerID: playerID}})
	}
	for _, c := range cells {
		if _, reachable := HasPathToKing(sim, c, king.Position, playerID); reachable {
			return nil
		}
	}
	return gameerr.New(gameerr.CodeNoPathToKing, "no filled cell of this placement can reach the player's king")
}

// PlacementResult reports what a successful Place call changed.
type PlacementResult struct {
	ClearedRows    []int
	ClearedColumns []int
	// DestroyedKingOwners lists players whose king was destroyed by island
	// fall following this placement (Design Note open question 2).
	DestroyedKingOwners []string
}

// Place commits a validated tetromino placement, runs row/column clearing,
// then re-verifies the connectivity invariant and drops any now-disconnected
// islands ("island fall"), per section 4.B steps 1-3. Callers are
// responsible for advancing the turn phase (step 4) and for having already
// called CanPlace.
func Place(game *models.Game, t models.Tetromino, playerID string, now time.Time) PlacementResult {
	for _, c := range t.Cells() {
		game.Board.Append(c, models.Item{Kind: models.ItemTetromino, Tetromino: &models.TetrominoItem{
			PlayerID: playerID, PieceType: t.Type, PlacedAt: now,
		}})
	}

	rows, cols := clearFullLines(game)
	destroyed := runIslandFall(game)

	return PlacementResult{ClearedRows: rows, ClearedColumns: cols, DestroyedKingOwners: destroyed}
}

// clearFullLines implements section 4.B step 2: find rows/columns that are
// "full" per the game's ClearingMode and strip their tetromino items
// (leaving chess/home items in place), returning the cleared indices.
func clearFullLines(game *models.Game) (rows []int, cols []int) {
	rowCells := map[int][]models.Coord{}
	colCells := map[int][]models.Coord{}
	rowMinX, rowMaxX := map[int]int{}, map[int]int{}
	colMinZ, colMaxZ := map[int]int{}, map[int]int{}

	game.Board.IterateOccupied(func(c models.Coord, items []models.Item) {
		if _, ok := game.Board.HasTetrominoItem(c); !ok {
			return
		}
		rowCells[c.Z] = append(rowCells[c.Z], c)
		colCells[c.X] = append(colCells[c.X], c)

		if v, ok := rowMinX[c.Z]; !ok || c.X < v {
			rowMinX[c.Z] = c.X
		}
		if v, ok := rowMaxX[c.Z]; !ok || c.X > v {
			rowMaxX[c.Z] = c.X
		}
		if v, ok := colMinZ[c.X]; !ok || c.Z < v {
			colMinZ[c.X] = c.Z
		}
		if v, ok := colMaxZ[c.X]; !ok || c.Z > v {
			colMaxZ[c.X] = c.Z
		}
	})

	for z, cells := range rowCells {
		lo, hi := rowMinX[z], rowMaxX[z]
		if game.ClearingMode == models.ClearingFixedWindow {
			lo, hi = 0, game.FixedWindowSize-1
		}
		if isLineFull(cells, lo, hi, true) {
			rows = append(rows, z)
		}
	}
	for x, cells := range colCells {
		lo, hi := colMinZ[x], colMaxZ[x]
		if game.ClearingMode == models.ClearingFixedWindow {
			lo, hi = 0, game.FixedWindowSize-1
		}
		if isLineFull(cells, lo, hi, false) {
			cols = append(cols, x)
		}
	}

	for _, z := range rows {
		for x := rowMinX[z]; x <= rowMaxX[z]; x++ {
			game.Board.RemoveTetrominoItem(models.Coord{X: x, Z: z})
		}
	}
	for _, x := range cols {
		for z := colMinZ[x]; z <= colMaxZ[x]; z++ {
			game.Board.RemoveTetrominoItem(models.Coord{X: x, Z: z})
		}
	}
	return rows, cols
}

// isLineFull reports whether every coordinate between lo and hi (inclusive,
// along the row-or-column axis selected by alongRow) appears among cells.
func isLineFull(cells []models.Coord, lo, hi int, alongRow bool) bool {
	if hi < lo {
		return false
	}
	present := make(map[int]bool, len(cells))
	for _, c := range cells {
		if alongRow {
			present[c.X] = true
		} else {
			present[c.Z] = true
		}
	}
	for v := lo; v <= hi; v++ {
		if !present[v] {
			return false
		}
	}
	return true
}

// runIslandFall re-verifies invariant 3 for every player after a
// destructive event: any tetromino cell with no path back to its owner's
// king is removed, and any chess piece standing on a removed cell is
// destroyed (Design Note open question 2: "destroy; if king, end game with
// no winner").
func runIslandFall(game *models.Game) (destroyedKingOwners []string) {
	for playerID, player := range game.Players {
		king, hasKing := game.KingOf(playerID)
		if !hasKing {
			continue
		}
		islands := FindIslands(game.Board, playerID)
		for _, island := range islands {
			connected := false
			for _, c := range island {
				if c == king.Position {
					connected = true
					break
				}
				if _, ok := HasPathToKing(game.Board, c, king.Position, playerID); ok {
					connected = true
					break
				}
			}
			if connected {
				continue
			}
			for _, c := range island {
				if _, ok := game.Board.HasTetrominoItem(c); ok {
					game.Board.RemoveTetrominoItem(c)
				}
				if chessItem, ok := game.Board.HasChessItem(c); ok {
					destroyedPiece, found := game.PieceByID(chessItem.PieceID)
					game.Board.RemoveChessItem(c)
					if found {
						game.RemovePiece(destroyedPiece.ID)
						if destroyedPiece.Type == models.King {
							destroyedKingOwners = append(destroyedKingOwners, destroyedPiece.PlayerID)
							game.Status = models.StatusEnded
							game.Winner = ""
							game.EndReason = models.EndReasonKingCaptured
						}
					}
				}
			}
		}
		_ = player
	}
	return destroyedKingOwners
}
