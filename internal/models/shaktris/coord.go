// Package shaktris holds the authoritative data model for a Shaktris game:
// the sparse board, tetromino shapes, chess pieces, home zones, players and
// turns. It plays the role the teacher's internal/models/tetris package
// played for GITRIS — plain structs and the low-level operations that act
// directly on them — generalized from a fixed 20x10 grid to the spec's
// unbounded sparse board.
package shaktris

// Coord is a board coordinate. It is used directly as a map key, the same
// way the teacher keyed its contribution-score lookups by a composite
// string ("y_x"); a comparable struct key is the idiomatic Go equivalent.
type Coord struct {
	X, Z int
}

// eightNeighbours lists the eight-neighbourhood offsets in a fixed
// lexicographic order of (dx, dz) so BFS tie-breaks stay deterministic,
// per the Island/Connectivity Service's determinism requirement.
var eightNeighbours = [8]Coord{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Neighbours returns c's eight neighbouring coordinates in lexicographic
// (dx, dz) order.
func (c Coord) Neighbours() [8]Coord {
	var out [8]Coord
	for i, d := range eightNeighbours {
		out[i] = Coord{c.X + d.X, c.Z + d.Z}
	}
	return out
}

func (c Coord) Add(dx, dz int) Coord {
	return Coord{c.X + dx, c.Z + dz}
}
