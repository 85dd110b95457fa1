package shaktris

import "sort"

// Board is the sparse coordinate-to-items map described in 4.A, generalized
// from the teacher's fixed [20][10]BlockType array (internal/models/tetris
// board.go) to an unbounded map keyed by Coord, with extremes tracked as
// hints rather than invariants of minimality (delete never shrinks them).
type Board struct {
	cells map[Coord][]Item

	hasBounds          bool
	minX, maxX         int
	minZ, maxZ         int
}

// NewBoard returns an empty board, mirroring the teacher's NewBoard
// constructor.
func NewBoard() *Board {
	return &Board{cells: make(map[Coord][]Item)}
}

// Get returns the item list at c, or nil, false if the cell is empty.
func (b *Board) Get(c Coord) ([]Item, bool) {
	items, ok := b.cells[c]
	return items, ok
}

// Set replaces the item list at c. Setting an empty list is equivalent to
// Delete, since a cell in the map must hold a non-empty list.
func (b *Board) Set(c Coord, items []Item) {
	if len(items) == 0 {
		b.Delete(c)
		return
	}
	b.cells[c] = items
	b.growBounds(c)
}

// Append adds a single item to whatever is already at c.
func (b *Board) Append(c Coord, item Item) {
	b.cells[c] = append(b.cells[c], item)
	b.growBounds(c)
}

// Delete removes the cell entirely. Extremes are left untouched: they are
// hints for fast iteration, not an invariant of minimality, exactly as
// section 4.A specifies.
func (b *Board) Delete(c Coord) {
	delete(b.cells, c)
}

func (b *Board) growBounds(c Coord) {
	if !b.hasBounds {
		b.minX, b.maxX, b.minZ, b.maxZ = c.X, c.X, c.Z, c.Z
		b.hasBounds = true
		return
	}
	if c.X < b.minX {
		b.minX = c.X
	}
	if c.X > b.maxX {
		b.maxX = c.X
	}
	if c.Z < b.minZ {
		b.minZ = c.Z
	}
	if c.Z > b.maxZ {
		b.maxZ = c.Z
	}
}

// Bounds reports the tracked extremes and whether the board has ever held
// an occupied cell.
func (b *Board) Bounds() (minX, maxX, minZ, maxZ int, ok bool) {
	return b.minX, b.maxX, b.minZ, b.maxZ, b.hasBounds
}

// IterateOccupied calls fn for every occupied cell in a deterministic
// (z-then-x) order, so callers like the snapshot serializer and the row
// clearing pass get stable output.
func (b *Board) IterateOccupied(fn func(c Coord, items []Item)) {
	coords := make([]Coord, 0, len(b.cells))
	for c := range b.cells {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Z != coords[j].Z {
			return coords[i].Z < coords[j].Z
		}
		return coords[i].X < coords[j].X
	})
	for _, c := range coords {
		fn(c, b.cells[c])
	}
}

// Occupied reports whether c holds any item at all.
func (b *Board) Occupied(c Coord) bool {
	_, ok := b.cells[c]
	return ok
}

// Len returns the number of occupied cells.
func (b *Board) Len() int { return len(b.cells) }

// HasChessItem reports whether c holds a chess item, and returns it.
func (b *Board) HasChessItem(c Coord) (*ChessItem, bool) {
	for _, it := range b.cells[c] {
		if it.Kind == ItemChess {
			return it.Chess, true
		}
	}
	return nil, false
}

// HasTetrominoItem reports whether c holds a tetromino item, and returns it.
func (b *Board) HasTetrominoItem(c Coord) (*TetrominoItem, bool) {
	for _, it := range b.cells[c] {
		if it.Kind == ItemTetromino {
			return it.Tetromino, true
		}
	}
	return nil, false
}

// HasHomeItem reports whether c is marked as belonging to a player's home
// zone, and for whom.
func (b *Board) HasHomeItem(c Coord) (string, bool) {
	for _, it := range b.cells[c] {
		if it.Kind == ItemHome {
			return it.Home.PlayerID, true
		}
	}
	return "", false
}

// Clone deep-copies the board, used by the Tetromino Rule Engine to
// simulate a placement before committing it (section 4.B step 2).
func (b *Board) Clone() *Board {
	clone := &Board{
		cells:     make(map[Coord][]Item, len(b.cells)),
		hasBounds: b.hasBounds,
		minX:      b.minX, maxX: b.maxX,
		minZ: b.minZ, maxZ: b.maxZ,
	}
	for c, items := range b.cells {
		cp := make([]Item, len(items))
		copy(cp, items)
		clone.cells[c] = cp
	}
	return clone
}

// RemoveTetrominoItem deletes every tetromino item at c, whoever owns it,
// if present, leaving any chess/home items at that cell untouched. It
// reports whether anything was removed.
func (b *Board) RemoveTetrominoItem(c Coord) bool {
	items, ok := b.cells[c]
	if !ok {
		return false
	}
	kept := items[:0]
	removed := false
	for _, it := range items {
		if it.Kind == ItemTetromino {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	if removed {
		b.Set(c, kept)
	}
	return removed
}

// RemoveChessItem deletes the chess item at c, leaving tetromino/home items.
func (b *Board) RemoveChessItem(c Coord) {
	items, ok := b.cells[c]
	if !ok {
		return
	}
	kept := items[:0]
	for _, it := range items {
		if it.Kind != ItemChess {
			kept = append(kept, it)
		}
	}
	b.Set(c, kept)
}
