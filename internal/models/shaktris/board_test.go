package shaktris

import "testing"

func TestBoardSetGetDelete(t *testing.T) {
	b := NewBoard()
	c := Coord{X: 2, Z: 3}

	if _, ok := b.Get(c); ok {
		t.Fatal("expected empty board to have no items at c")
	}

	b.Set(c, []Item{{Kind: ItemHome, Home: &HomeItem{PlayerID: "p1"}}})
	items, ok := b.Get(c)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one item at c, got %v, ok=%v", items, ok)
	}

	b.Delete(c)
	if _, ok := b.Get(c); ok {
		t.Fatal("expected cell to be empty after Delete")
	}
}

func TestBoardSetEmptyListActsAsDelete(t *testing.T) {
	b := NewBoard()
	c := Coord{X: 1, Z: 1}
	b.Append(c, Item{Kind: ItemHome, Home: &HomeItem{PlayerID: "p1"}})
	b.Set(c, nil)
	if _, ok := b.Get(c); ok {
		t.Fatal("Set with an empty list should behave like Delete")
	}
}

func TestBoardBoundsGrowMonotonically(t *testing.T) {
	b := NewBoard()
	if _, _, _, _, ok := b.Bounds(); ok {
		t.Fatal("expected no bounds on an empty board")
	}

	b.Append(Coord{X: 0, Z: 0}, Item{Kind: ItemHome, Home: &HomeItem{PlayerID: "p1"}})
	b.Append(Coord{X: 5, Z: -3}, Item{Kind: ItemHome, Home: &HomeItem{PlayerID: "p1"}})
	b.Append(Coord{X: -2, Z: 9}, Item{Kind: ItemHome, Home: &HomeItem{PlayerID: "p1"}})

	minX, maxX, minZ, maxZ, ok := b.Bounds()
	if !ok || minX != -2 || maxX != 5 || minZ != -3 || maxZ != 9 {
		t.Fatalf("unexpected bounds: minX=%d maxX=%d minZ=%d maxZ=%d ok=%v", minX, maxX, minZ, maxZ, ok)
	}

	// Delete never shrinks the tracked extremes; they are hints, not an
	// invariant of minimality (section 4.A).
	b.Delete(Coord{X: 5, Z: -3})
	minX, maxX, minZ, maxZ, ok = b.Bounds()
	if !ok || maxX != 5 || minZ != -3 {
		t.Fatalf("expected bounds to remain unshrunk after delete, got minX=%d maxX=%d minZ=%d maxZ=%d", minX, maxX, minZ, maxZ)
	}
}

func TestBoardCloneIsIndependent(t *testing.T) {
	b := NewBoard()
	c := Coord{X: 0, Z: 0}
	b.Append(c, Item{Kind: ItemTetromino, Tetromino: &TetrominoItem{PlayerID: "p1", PieceType: PieceI}})

	clone := b.Clone()
	clone.Append(c, Item{Kind: ItemChess, Chess: &ChessItem{PieceID: "k1", Type: King, PlayerID: "p1"}})

	original, _ := b.Get(c)
	if len(original) != 1 {
		t.Fatalf("mutating the clone must not affect the original board, got %d items", len(original))
	}
	cloned, _ := clone.Get(c)
	if len(cloned) != 2 {
		t.Fatalf("expected clone to carry the appended item, got %d items", len(cloned))
	}
}

func TestBoardRemoveTetrominoItemLeavesOtherItems(t *testing.T) {
	b := NewBoard()
	c := Coord{X: 0, Z: 0}
	b.Append(c, Item{Kind: ItemHome, Home: &HomeItem{PlayerID: "p1"}})
	b.Append(c, Item{Kind: ItemTetromino, Tetromino: &TetrominoItem{PlayerID: "p1", PieceType: PieceO}})
	b.Append(c, Item{Kind: ItemChess, Chess: &ChessItem{PieceID: "k1", Type: King, PlayerID: "p1"}})

	if !b.RemoveTetrominoItem(c) {
		t.Fatal("expected RemoveTetrominoItem to report removal")
	}
	items, _ := b.Get(c)
	if len(items) != 2 {
		t.Fatalf("expected home and chess items to survive, got %d items", len(items))
	}
	if _, ok := b.HasTetrominoItem(c); ok {
		t.Fatal("tetromino item should be gone")
	}
	if _, ok := b.HasHomeItem(c); !ok {
		t.Fatal("home item should remain")
	}
}

func TestBoardIterateOccupiedIsOrderedByZThenX(t *testing.T) {
	b := NewBoard()
	coords := []Coord{{3, 1}, {1, 1}, {2, 0}, {0, 0}}
	for _, c := range coords {
		b.Append(c, Item{Kind: ItemHome, Home: &HomeItem{PlayerID: "p1"}})
	}

	var seen []Coord
	b.IterateOccupied(func(c Coord, items []Item) {
		seen = append(seen, c)
	})

	want := []Coord{{0, 0}, {2, 0}, {1, 1}, {3, 1}}
	if len(seen) != len(want) {
		t.Fatalf("expected %d cells, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("at index %d: expected %v, got %v", i, want[i], seen[i])
		}
	}
}
