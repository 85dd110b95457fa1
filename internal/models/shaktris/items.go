package shaktris

import "time"

// ItemKind tags the variant held by an Item, replacing the source's
// duck-typed "item.type" JSON dispatch with a fixed matcher, per the
// rearchitecting notes.
type ItemKind string

const (
	ItemTetromino ItemKind = "tetromino"
	ItemChess     ItemKind = "chess"
	ItemHome      ItemKind = "home"
)

// Item is one entry of a cell's item list. Exactly one of the payload
// fields is populated, selected by Kind; multiple Items may occupy the same
// Coord (a chess piece standing on a tetromino inside a home zone).
type Item struct {
	Kind ItemKind

	Tetromino *TetrominoItem `json:"tetromino,omitempty"`
	Chess     *ChessItem     `json:"chess,omitempty"`
	Home      *HomeItem      `json:"home,omitempty"`
}

// TetrominoItem is the board-resident remnant of a placed tetromino cell.
// Tetrominoes have no lingering mutable instance once placed: only these
// per-cell items exist, per the Tetromino lifecycle note in section 3.
type TetrominoItem struct {
	PlayerID  string    `json:"playerId"`
	PieceType PieceType `json:"pieceType"`
	PlacedAt  time.Time `json:"placedAt"`
}

// ChessItem mirrors a ChessPiece's presence at a cell; kept in sync with
// the authoritative ChessPiece record per invariant 1.
type ChessItem struct {
	PieceID  string        `json:"pieceId"`
	Type     ChessPieceKnd `json:"type"`
	PlayerID string        `json:"playerId"`
}

// HomeItem marks a cell as belonging to a player's home zone.
type HomeItem struct {
	PlayerID string `json:"playerId"`
}
