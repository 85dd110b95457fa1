package shaktris

import (
	"time"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/gameerr"
	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

// passable reports whether a piece may stand on or cross c: it must carry a
// tetromino item (a piece "walks on blocks") or be inside a home zone,
// which gives each player's initial pieces somewhere to stand before any
// tetromino has been placed.
func passable(game *models.Game, c models.Coord) bool {
	if _, ok := game.Board.HasTetrominoItem(c); ok {
		return true
	}
	if _, ok := game.Board.HasHomeItem(c); ok {
		return true
	}
	return false
}

var rookDirections = []models.Coord{{X: 1, Z: 0}, {X: -1, Z: 0}, {X: 0, Z: 1}, {X: 0, Z: -1}}
var bishopDirections = []models.Coord{{X: 1, Z: 1}, {X: 1, Z: -1}, {X: -1, Z: 1}, {X: -1, Z: -1}}
var kingOffsets = append(append([]models.Coord{}, rookDirections...), bishopDirections...)
var knightOffsets = []models.Coord{
	{X: 1, Z: 2}, {X: 2, Z: 1}, {X: 2, Z: -1}, {X: 1, Z: -2},
	{X: -1, Z: -2}, {X: -2, Z: -1}, {X: -2, Z: 1}, {X: -1, Z: 2},
}

// slidingDestinations rays out from origin in each direction until it hits
// an impassable cell or a chess piece, including the first opposing piece
// encountered as a capture and then stopping — grounded on the gochess
// reference engine's slidingPieces ray-cast helper.
func slidingDestinations(game *models.Game, origin models.Coord, playerID string, directions []models.Coord) []models.Coord {
	var out []models.Coord
	for _, d := range directions {
		cur := origin
		for {
			cur = cur.Add(d.X, d.Z)
			if !passable(game, cur) {
				break
			}
			if occupant, ok := game.Board.HasChessItem(cur); ok {
				if occupant.PlayerID != playerID {
					out = append(out, cur)
				}
				break
			}
			out = append(out, cur)
		}
	}
	return out
}

// oneStepDestinations checks a fixed list of offsets from origin, used by
// the king and knight generators (gochess's oneStepPieces helper).
func oneStepDestinations(game *models.Game, origin models.Coord, playerID string, offsets []models.Coord) []models.Coord {
	var out []models.Coord
	for _, o := range offsets {
		target := origin.Add(o.X, o.Z)
		if !passable(game, target) {
			continue
		}
		if occupant, ok := game.Board.HasChessItem(target); ok && occupant.PlayerID == playerID {
			continue
		}
		out = append(out, target)
	}
	return out
}

func pawnDestinations(game *models.Game, piece *models.ChessPiece) []models.Coord {
	zone, ok := game.HomeZones[piece.PlayerID]
	if !ok {
		return nil
	}
	forward := zone.Forward()
	perp := models.Coord{X: -forward.Z, Z: forward.X}

	var out []models.Coord

	step1 := piece.Position.Add(forward.X, forward.Z)
	if passable(game, step1) {
		if _, occupied := game.Board.HasChessItem(step1); !occupied {
			out = append(out, step1)
		}
	}

	for _, sign := range []int{1, -1} {
		target := piece.Position.Add(forward.X+perp.X*sign, forward.Z+perp.Z*sign)
		if !passable(game, target) {
			continue
		}
		if occupant, occupied := game.Board.HasChessItem(target); occupied && occupant.PlayerID != piece.PlayerID {
			out = append(out, target)
		}
	}
	return out
}

// LegalDestinations enumerates every cell a piece may move to right now,
// dispatching by piece kind the way the gochess reference engine's
// movesForPiece switches on piece type (section 4.C).
func LegalDestinations(game *models.Game, piece *models.ChessPiece) []models.Coord {
	switch piece.Type {
	case models.King:
		return oneStepDestinations(game, piece.Position, piece.PlayerID, kingOffsets)
	case models.Knight:
		return oneStepDestinations(game, piece.Position, piece.PlayerID, knightOffsets)
	case models.Rook:
		return slidingDestinations(game, piece.Position, piece.PlayerID, rookDirections)
	case models.Bishop:
		return slidingDestinations(game, piece.Position, piece.PlayerID, bishopDirections)
	case models.Queen:
		return slidingDestinations(game, piece.Position, piece.PlayerID, kingOffsets)
	case models.Pawn:
		return pawnDestinations(game, piece)
	default:
		return nil
	}
}

func containsCoord(cs []models.Coord, target models.Coord) bool {
	for _, c := range cs {
		if c == target {
			return true
		}
	}
	return false
}

// HasValidChessMoves reports whether playerID has at least one legal move
// across all of their surviving pieces, used by the Turn State Machine to
// decide whether to emit skipChess (section 4.C "Turn management").
func HasValidChessMoves(game *models.Game, playerID string) bool {
	for _, p := range game.PiecesOf(playerID) {
		if len(LegalDestinations(game, p)) > 0 {
			return true
		}
	}
	return false
}

// ValidateMove checks that pieceID belongs to playerID and that target is
// among its legal destinations, returning the piece on success.
func ValidateMove(game *models.Game, playerID, pieceID string, target models.Coord) (*models.ChessPiece, error) {
	piece, ok := game.PieceByID(pieceID)
	if !ok {
		return nil, gameerr.New(gameerr.CodeNotYourPiece, "no such chess piece")
	}
	if piece.PlayerID != playerID {
		return nil, gameerr.ErrNotYourPiece
	}
	if !containsCoord(LegalDestinations(game, piece), target) {
		return nil, gameerr.ErrIllegalChessMove
	}
	return piece, nil
}

// MoveResult reports the effect of a successfully applied chess move.
type MoveResult struct {
	Captured     *models.ChessPiece
	Promoted     bool
	KingCaptured bool
}

// ApplyMove commits a validated chess move per section 4.C's "Application":
// atomically relocate the chess item, capture any opposing occupant,
// set hasMoved, promote pawns reaching the opposing home zone, and end the
// game on a king capture.
func ApplyMove(game *models.Game, piece *models.ChessPiece, target models.Coord, now time.Time) MoveResult {
	var result MoveResult

	if occupant, ok := game.Board.HasChessItem(target); ok {
		if captured, found := game.PieceByID(occupant.PieceID); found {
			result.Captured = captured
			game.Board.RemoveChessItem(target)
			game.RemovePiece(captured.ID)
			if captured.Type == models.King {
				result.KingCaptured = true
				game.Status = models.StatusEnded
				game.Winner = piece.PlayerID
				game.EndReason = models.EndReasonKingCaptured
			}
		}
	}

	game.Board.RemoveChessItem(piece.Position)
	piece.Position = target
	piece.HasMoved = true

	if piece.Type == models.Pawn && reachedOpposingHomeZone(game, piece) {
		piece.Type = models.Queen
		result.Promoted = true
	}

	game.Board.Append(target, models.Item{Kind: models.ItemChess, Chess: &models.ChessItem{
		PieceID: piece.ID, Type: piece.Type, PlayerID: piece.PlayerID,
	}})
	_ = now
	return result
}

// reachedOpposingHomeZone resolves Design Note open question 3: a pawn
// promotes on landing on a cell inside any opposing player's home zone.
func reachedOpposingHomeZone(game *models.Game, piece *models.ChessPiece) bool {
	for playerID, zone := range game.HomeZones {
		if playerID == piece.PlayerID {
			continue
		}
		if zone.Contains(piece.Position) {
			return true
		}
	}
	return false
}
