package shaktris

// Status is a Game's lifecycle stage. status=ended is monotone: once set,
// nothing transitions a Game back out of it (invariant 6).
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusEnded   Status = "ended"
)

// EndReason records why a Game ended, used for the Fatal-error diagnostic
// path in section 7 (endReason=internalError) alongside normal king capture.
type EndReason string

const (
	EndReasonNone          EndReason = ""
	EndReasonKingCaptured  EndReason = "kingCaptured"
	EndReasonAllDisconnect EndReason = "allPlayersDisconnected"
	EndReasonInternalError EndReason = "internalError"
)

// Game is the authoritative state owned by exactly one Game Instance
// worker (section 4.F). Nothing outside that worker goroutine is permitted
// to read or mutate these fields directly; the teacher's window-attached
// globals / module-level gameState singleton is replaced by this
// single Go value reached only through the worker's message queue.
type Game struct {
	ID     string
	Board  *Board
	Pieces []*ChessPiece

	Players   map[string]*Player
	HomeZones map[string]HomeZone

	// JoinOrder preserves the order players joined, used for deterministic
	// home-zone allocation and snapshot serialization.
	JoinOrder []string

	TetrominoBag  []PieceType
	NextTetromino PieceType

	Status    Status
	Winner    string
	EndReason EndReason

	// ClearingMode resolves Design Note open question 1 (the "row full"
	// predicate is not fully defined on a sparse unbounded board): default
	// BoundingBox compares a row/column against the bounding extent of
	// tetromino items already seen on that row/column; FixedWindow instead
	// requires a constant-width span of FixedWindowSize to be full,
	// anchored at coordinate 0 (indices 0..FixedWindowSize-1). Exposed so it can be covered by
	// tests under both policies.
	ClearingMode     ClearingMode
	FixedWindowSize  int
}

// ClearingMode selects the row/column "full" predicate used by row
// clearing (section 4.B step 2, Design Note open question 1).
type ClearingMode string

const (
	ClearingBoundingBox ClearingMode = "bounding_box"
	ClearingFixedWindow ClearingMode = "fixed_window"
)

// DefaultFixedWindowSize is used when ClearingMode is ClearingFixedWindow.
const DefaultFixedWindowSize = 10

// NewGame constructs an empty Game in the waiting state.
func NewGame(id string) *Game {
	return &Game{
		ID:              id,
		Board:           NewBoard(),
		Players:         make(map[string]*Player),
		HomeZones:       make(map[string]HomeZone),
		Status:          StatusWaiting,
		ClearingMode:    ClearingBoundingBox,
		FixedWindowSize: DefaultFixedWindowSize,
	}
}

// PieceByID finds a chess piece by id.
func (g *Game) PieceByID(id string) (*ChessPiece, bool) {
	for _, p := range g.Pieces {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// PiecesOf returns every live chess piece belonging to playerID.
func (g *Game) PiecesOf(playerID string) []*ChessPiece {
	var out []*ChessPiece
	for _, p := range g.Pieces {
		if p.PlayerID == playerID {
			out = append(out, p)
		}
	}
	return out
}

// KingOf returns playerID's king, if it is still alive.
func (g *Game) KingOf(playerID string) (*ChessPiece, bool) {
	for _, p := range g.Pieces {
		if p.PlayerID == playerID && p.Type == King {
			return p, true
		}
	}
	return nil, false
}

// RemovePiece deletes a captured/destroyed chess piece from the roster.
func (g *Game) RemovePiece(id string) {
	for i, p := range g.Pieces {
		if p.ID == id {
			g.Pieces = append(g.Pieces[:i], g.Pieces[i+1:]...)
			return
		}
	}
}
