package shaktris

import (
	"time"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/gameerr"
	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

// CheckPacing enforces the minDurationMs floor from section 4.E: a player
// attempting a second action before their current turn's minDurationMs has
// elapsed receives TooSoonError. This is a server-side floor, never a
// client hint.
func CheckPacing(player *models.Player, now time.Time) error {
	elapsed := now.Sub(player.CurrentTurn.StartedAt)
	floor := time.Duration(player.CurrentTurn.MinDurationMs) * time.Millisecond
	if elapsed < floor {
		return gameerr.ErrTooSoon.WithRetryAfter(floor - elapsed)
	}
	return nil
}

// CheckPhase rejects a move submitted while the player's own turn is in a
// different phase. It compares the phase only; there is no turn order
// between players to check.
func CheckPhase(player *models.Player, want models.Phase) error {
	if player.CurrentTurn.Phase != want {
		return gameerr.ErrWrongPhase
	}
	return nil
}

// AdvanceAfterPlacement transitions a player from tetris to chess
// (section 4.E), unless the player now has no legal chess moves at all, in
// which case the chess phase is skipped and the player returns directly to
// tetris (skipped=true), per the "no legal moves" row of the transition
// table.
func AdvanceAfterPlacement(game *models.Game, playerID string, now time.Time, minDurationMs int64) (skipped bool) {
	player := game.Players[playerID]
	if !HasValidChessMoves(game, playerID) {
		player.CurrentTurn = models.Turn{Phase: models.PhaseTetris, StartedAt: now, MinDurationMs: minDurationMs}
		return true
	}
	player.CurrentTurn = models.Turn{Phase: models.PhaseChess, StartedAt: now, MinDurationMs: minDurationMs}
	return false
}

// AdvanceAfterChessMove returns a player to the tetris phase after a legal
// chess move.
func AdvanceAfterChessMove(game *models.Game, playerID string, now time.Time, minDurationMs int64) {
	game.Players[playerID].CurrentTurn = models.Turn{Phase: models.PhaseTetris, StartedAt: now, MinDurationMs: minDurationMs}
}

// StartInitialTurn seeds a freshly joined player's first turn in the
// tetris phase.
func StartInitialTurn(player *models.Player, now time.Time, minDurationMs int64) {
	player.CurrentTurn = models.Turn{Phase: models.PhaseTetris, StartedAt: now, MinDurationMs: minDurationMs}
}
