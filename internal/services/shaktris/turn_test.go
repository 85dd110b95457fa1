package shaktris

import (
	"errors"
	"testing"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/gameerr"
	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

func TestCheckPacingRejectsBeforeMinDurationElapses(t *testing.T) {
	start := time.Now()
	player := &models.Player{CurrentTurn: models.Turn{StartedAt: start, MinDurationMs: 10_000}}

	err := CheckPacing(player, start.Add(5*time.Second))
	var ge *gameerr.Error
	if !errors.As(err, &ge) || ge.Code != gameerr.CodeTooSoon {
		t.Fatalf("expected CodeTooSoon, got %v", err)
	}
	if ge.RetryAfter != 5*time.Second {
		t.Fatalf("expected a 5s retry hint, got %v", ge.RetryAfter)
	}
}

func TestCheckPacingAllowsAfterMinDurationElapses(t *testing.T) {
	start := time.Now()
	player := &models.Player{CurrentTurn: models.Turn{StartedAt: start, MinDurationMs: 10_000}}

	if err := CheckPacing(player, start.Add(10*time.Second)); err != nil {
		t.Fatalf("expected no error once minDurationMs has elapsed, got %v", err)
	}
}

func TestCheckPhaseRejectsMismatch(t *testing.T) {
	player := &models.Player{CurrentTurn: models.Turn{Phase: models.PhaseTetris}}
	if err := CheckPhase(player, models.PhaseChess); !errors.Is(err, gameerr.ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
	if err := CheckPhase(player, models.PhaseTetris); err != nil {
		t.Fatalf("expected no error on a matching phase, got %v", err)
	}
}

func TestAdvanceAfterPlacementEntersChessWhenMovesExist(t *testing.T) {
	g := models.NewGame("g1")
	g.Players["p1"] = &models.Player{ID: "p1"}
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0}, models.Coord{X: 1, Z: 0})
	g.Pieces = append(g.Pieces, &models.ChessPiece{ID: "r1", Type: models.Rook, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}})

	now := time.Now()
	skipped := AdvanceAfterPlacement(g, "p1", now, 10_000)
	if skipped {
		t.Fatal("expected chess phase not to be skipped when a legal move exists")
	}
	if g.Players["p1"].CurrentTurn.Phase != models.PhaseChess {
		t.Fatalf("expected phase=chess, got %s", g.Players["p1"].CurrentTurn.Phase)
	}
}

func TestAdvanceAfterPlacementSkipsChessWhenNoMovesExist(t *testing.T) {
	g := models.NewGame("g1")
	g.Players["p1"] = &models.Player{ID: "p1"}
	tetrominoFloor(g.Board, "p1", models.Coord{X: 0, Z: 0})
	g.Pieces = append(g.Pieces, &models.ChessPiece{ID: "k1", Type: models.King, PlayerID: "p1", Position: models.Coord{X: 0, Z: 0}})

	now := time.Now()
	skipped := AdvanceAfterPlacement(g, "p1", now, 10_000)
	if !skipped {
		t.Fatal("expected chess phase to be skipped when no legal move exists")
	}
	if g.Players["p1"].CurrentTurn.Phase != models.PhaseTetris {
		t.Fatalf("expected phase to remain tetris, got %s", g.Players["p1"].CurrentTurn.Phase)
	}
}

func TestAdvanceAfterChessMoveReturnsToTetris(t *testing.T) {
	g := models.NewGame("g1")
	g.Players["p1"] = &models.Player{ID: "p1", CurrentTurn: models.Turn{Phase: models.PhaseChess}}

	AdvanceAfterChessMove(g, "p1", time.Now(), 10_000)
	if g.Players["p1"].CurrentTurn.Phase != models.PhaseTetris {
		t.Fatalf("expected phase=tetris after a chess move, got %s", g.Players["p1"].CurrentTurn.Phase)
	}
}
