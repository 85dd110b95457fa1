// Package shaktris implements the Shaktris rule engines, turn state
// machine, game instance worker, session coordinator, AI scheduler and
// event bus (components B through I of the component design). It plays the
// role the teacher's internal/services/tetris package played for GITRIS,
// generalized from a two-player passcode room to an arbitrary-size
// tetris/chess hybrid game.
package shaktris

import (
	"math/rand"

	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

// Bag draws an infinite sequence of tetromino types such that every
// consecutive window of 7 draws is a permutation of the seven kinds
// (invariant 4, testable property 1). It is grounded directly on the
// teacher's generatePieceQueue/GetNextPieceFromQueue in game_state.go: a
// shuffled 7-element slice per bag, refilled on exhaustion, with a swap at
// the seam so the bag boundary never repeats the previous bag's last piece.
type Bag struct {
	rng     *rand.Rand
	pending []models.PieceType
	lastOut models.PieceType
	hasLast bool
}

// NewBag builds a Bag seeded from the given source, so each Game can own an
// independent per-Game RNG per section 5's "the piece-bag RNG is per-Game".
func NewBag(seed int64) *Bag {
	return &Bag{rng: rand.New(rand.NewSource(seed))}
}

func (b *Bag) refill() {
	next := append([]models.PieceType(nil), models.AllPieceTypes()...)
	b.rng.Shuffle(len(next), func(i, j int) { next[i], next[j] = next[j], next[i] })

	if b.hasLast && next[0] == b.lastOut {
		// Anti-repeat-at-the-seam adjustment: swap the first element of the
		// new bag with another so the bag boundary is never a visible
		// back-to-back repeat, matching the teacher's swap-adjust logic.
		swapWith := 1 + b.rng.Intn(len(next)-1)
		next[0], next[swapWith] = next[swapWith], next[0]
	}
	b.pending = next
}

// Next draws the next tetromino type from the bag, refilling as needed.
func (b *Bag) Next() models.PieceType {
	if len(b.pending) == 0 {
		b.refill()
	}
	pt := b.pending[0]
	b.pending = b.pending[1:]
	b.lastOut = pt
	b.hasLast = true
	return pt
}

// Peek returns what Next would currently produce without consuming it,
// used to populate Game.NextTetromino without disturbing the bag.
func (b *Bag) Peek() models.PieceType {
	if len(b.pending) == 0 {
		b.refill()
	}
	return b.pending[0]
}
