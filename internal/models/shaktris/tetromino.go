package shaktris

// PieceType is one of the seven canonical tetromino shapes.
type PieceType string

const (
	PieceI PieceType = "I"
	PieceJ PieceType = "J"
	PieceL PieceType = "L"
	PieceO PieceType = "O"
	PieceS PieceType = "S"
	PieceT PieceType = "T"
	PieceZ PieceType = "Z"
)

// AllPieceTypes lists the seven kinds in a fixed order, used to seed a bag
// and to build the 7-bag histogram assertions in tests.
func AllPieceTypes() []PieceType {
	return []PieceType{PieceI, PieceJ, PieceL, PieceO, PieceS, PieceT, PieceZ}
}

// Rotation is one of the four cardinal rotations of a tetromino.
type Rotation int

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// shapeTable replaces the teacher's simplified, non-SRS pieceShapes map in
// internal/models/tetris/tetrimino.go with the canonical four-rotation
// layout for each of the seven kinds, still shaped as the same kind of
// static per-rotation coordinate table the teacher used, just correctly
// populated. Offsets are (dx, dz) within a 4x4 bounding box.
var shapeTable = map[PieceType][4][]Coord{
	PieceI: {
		{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
		{{2, 0}, {2, 1}, {2, 2}, {2, 3}},
		{{0, 2}, {1, 2}, {2, 2}, {3, 2}},
		{{1, 0}, {1, 1}, {1, 2}, {1, 3}},
	},
	PieceO: {
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
	},
	PieceT: {
		{{0, 1}, {1, 1}, {2, 1}, {1, 0}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 1}},
		{{0, 1}, {1, 1}, {2, 1}, {1, 2}},
		{{1, 0}, {1, 1}, {1, 2}, {0, 1}},
	},
	PieceS: {
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{1, 0}, {1, 1}, {2, 1}, {2, 2}},
		{{1, 1}, {2, 1}, {0, 2}, {1, 2}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	PieceZ: {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{2, 0}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	},
	PieceJ: {
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {2, 2}},
		{{1, 0}, {1, 1}, {0, 2}, {1, 2}},
	},
	PieceL: {
		{{2, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
}

// ShapeCells returns the four relative cell offsets of type pt at the given
// rotation, within its 4x4 bounding box.
func ShapeCells(pt PieceType, rot Rotation) []Coord {
	offsets := shapeTable[pt][int(rot)%4]
	out := make([]Coord, len(offsets))
	copy(out, offsets)
	return out
}

// Tetromino is a client-visible falling piece. It exists only up to the
// point of a valid placement, per the lifecycle note in section 3: there is
// no lingering mutable tetromino instance once its cells become board
// items.
type Tetromino struct {
	Type             PieceType
	Rotation         Rotation
	Position         Coord
	HeightAboveBoard int
}

// TetrominoStartHeight bounds the heightAboveBoard field from section 3.
const TetrominoStartHeight = 20

// Cells returns the absolute board coordinates this tetromino would occupy
// if placed, anchoring ShapeCells at t.Position.
func (t Tetromino) Cells() []Coord {
	offsets := ShapeCells(t.Type, t.Rotation)
	cells := make([]Coord, len(offsets))
	for i, o := range offsets {
		cells[i] = Coord{t.Position.X + o.X, t.Position.Z + o.Z}
	}
	return cells
}
