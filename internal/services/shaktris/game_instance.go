package shaktris

import (
	"context"
	"math/rand"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/gameerr"
	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

// inboxCapacity bounds the Game Instance's command queue. A full queue
// rejects new submissions with gameerr.ErrBackpressure rather than blocking
// the caller, per section 5's backpressure suspension point (a).
const inboxCapacity = 256

// snapshotThrottle mirrors the teacher's lastBroadcast throttle map in
// session_manager.go, generalized from "one map entry per room" to "one
// field per Instance" since an Instance already is a single game.
const snapshotThrottle = 150 * time.Millisecond

type command struct {
	run   func(now time.Time) (interface{}, error)
	reply chan commandResult
}

type commandResult struct {
	value interface{}
	err   error
}

// Instance is the single-consumer Game Instance worker described in section
// 4.F: every read or mutation of Game, Board, Pieces, Players or the bag
// happens inside run's goroutine, reached only by enqueuing a command. This
// replaces the teacher's SessionManager.Run() select loop (one loop for
// every room at once) with one loop per game.
type Instance struct {
	Game *models.Game
	Bus  *EventBus
	bag  *Bag

	inbox chan command
	done  chan struct{}

	lastSnapshotAt time.Time
	aiRand         *rand.Rand

	// resultSink, if set, is invoked from inside the worker goroutine the
	// instant Game.Status transitions to ended, with direct (and therefore
	// safe, since we're still on the worker) access to the final roster.
	// It lets an optional persistence layer record a best-effort completed-
	// game ledger entry (section 6's Persistence note) without Game state
	// itself ever being read from outside the worker.
	resultSink func(game *models.Game)
}

// SetResultSink installs a best-effort completed-game persistence hook. Not
// calling this leaves the instance purely in-memory.
func (inst *Instance) SetResultSink(sink func(game *models.Game)) { inst.resultSink = sink }

func (inst *Instance) notifyIfEnded() {
	if inst.resultSink != nil && inst.Game.Status == models.StatusEnded {
		inst.resultSink(inst.Game)
	}
}

// NewInstance constructs a waiting Game Instance. seed lets each game's
// piece bag be independently seeded (section 5).
func NewInstance(id string, seed int64) *Instance {
	inst := &Instance{
		Game:  models.NewGame(id),
		Bus:   NewEventBus(id),
		bag:   NewBag(seed),
		inbox: make(chan command, inboxCapacity),
		done:  make(chan struct{}),
		aiRand: rand.New(rand.NewSource(seed ^ 0x5bd1e995)),
	}
	inst.Game.NextTetromino = inst.bag.Peek()
	return inst
}

// Start runs the worker goroutine. Callers must call Stop when the game is
// torn down.
func (inst *Instance) Start() { go inst.run() }

// Stop terminates the worker goroutine. Pending commands are abandoned.
func (inst *Instance) Stop() { close(inst.done) }

func (inst *Instance) run() {
	for {
		select {
		case cmd := <-inst.inbox:
			value, err := cmd.run(time.Now())
			cmd.reply <- commandResult{value: value, err: err}
		case <-inst.done:
			return
		}
	}
}

// submit enqueues fn onto the worker and waits for its result, or for ctx to
// be cancelled. A full inbox fails fast with ErrBackpressure instead of
// blocking the caller goroutine.
func (inst *Instance) submit(ctx context.Context, fn func(now time.Time) (interface{}, error)) (interface{}, error) {
	cmd := command{run: fn, reply: make(chan commandResult, 1)}
	select {
	case inst.inbox <- cmd:
	default:
		return nil, gameerr.ErrBackpressure
	}
	select {
	case r := <-cmd.reply:
		return r.value, r.err
	case <-ctx.Done():
		return nil, gameerr.ErrTimeout
	}
}

// minDurationFor returns the server-side pacing floor for player: built-in
// AIs scale it from their difficulty tuple, everyone else gets the default
// (section 4.H / Design Note open question 4's unified rate limiting).
func (inst *Instance) minDurationFor(player *models.Player) int64 {
	if player.IsComputer && player.Difficulty != nil {
		return models.MinDurationMsForDifficulty(*player.Difficulty)
	}
	return models.DefaultMinDurationMs
}

// dealIfNeeded deals the next tetromino from the game's shared bag to player
// the moment their turn enters the tetris phase without one already in
// hand, and refreshes the Game's NextTetromino preview.
func (inst *Instance) dealIfNeeded(player *models.Player, now time.Time) {
	if player.CurrentTurn.Phase != models.PhaseTetris || player.CurrentTurn.ActiveTetromino != nil {
		return
	}
	pt := inst.bag.Next()
	player.CurrentTurn.ActiveTetromino = &models.Tetromino{Type: pt, HeightAboveBoard: models.TetrominoStartHeight}
	inst.Game.NextTetromino = inst.bag.Peek()
	_ = now
}

// Subscribe and Unsubscribe bypass the command queue: the EventBus has its
// own locking and Publish only ever runs from the worker goroutine, so
// concurrent Subscribe/Unsubscribe from transport goroutines is safe.
func (inst *Instance) Subscribe(id string) *Subscriber { return inst.Bus.Subscribe(id) }
func (inst *Instance) Unsubscribe(id string)           { inst.Bus.Unsubscribe(id) }

// publishSnapshot emits a stateSnapshot event, throttled to at most one per
// snapshotThrottle window so a burst of moves doesn't flood subscribers with
// a full-board payload per move (section 4.I's snapshot coalescing,
// implemented here as production throttling rather than per-subscriber
// channel content replacement, which Go channels don't support).
func (inst *Instance) publishSnapshot(now time.Time) {
	if !inst.lastSnapshotAt.IsZero() && now.Sub(inst.lastSnapshotAt) < snapshotThrottle {
		return
	}
	inst.lastSnapshotAt = now
	inst.Bus.Publish(Event{Type: EventStateSnapshot, Payload: inst.buildSnapshot()})
}

// Snapshot is the full, client-facing view of a Game at one instant.
type Snapshot struct {
	GameID        string
	Status        models.Status
	Winner        string
	EndReason     models.EndReason
	NextTetromino models.PieceType
	Players       []PlayerSnapshot
	Cells         []CellSnapshot
}

// PlayerSnapshot is one player's client-facing state within a Snapshot.
type PlayerSnapshot struct {
	ID              string
	DisplayName     string
	IsComputer      bool
	IsExternal      bool
	IsActive        bool
	Phase           models.Phase
	ActiveTetromino *models.Tetromino
	HomeZone        models.HomeZone
}

// CellSnapshot is one occupied board cell within a Snapshot.
type CellSnapshot struct {
	X, Z  int
	Items []models.Item
}

func (inst *Instance) buildSnapshot() Snapshot {
	snap := Snapshot{
		GameID:        inst.Game.ID,
		Status:        inst.Game.Status,
		Winner:        inst.Game.Winner,
		EndReason:     inst.Game.EndReason,
		NextTetromino: inst.Game.NextTetromino,
	}
	for _, id := range inst.Game.JoinOrder {
		p, ok := inst.Game.Players[id]
		if !ok {
			continue
		}
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID: p.ID, DisplayName: p.DisplayName, IsComputer: p.IsComputer, IsExternal: p.IsExternal,
			IsActive: p.IsActive, Phase: p.CurrentTurn.Phase, ActiveTetromino: p.CurrentTurn.ActiveTetromino,
			HomeZone: p.HomeZone,
		})
	}
	inst.Game.Board.IterateOccupied(func(c models.Coord, items []models.Item) {
		snap.Cells = append(snap.Cells, CellSnapshot{X: c.X, Z: c.Z, Items: items})
	})
	return snap
}

// allDisconnected reports whether every joined player's transport has gone
// away (section 4.F's "all players disconnect" end condition).
func (inst *Instance) allDisconnected() bool {
	if len(inst.Game.Players) == 0 {
		return false
	}
	for _, p := range inst.Game.Players {
		if p.IsActive {
			return false
		}
	}
	return true
}

func (inst *Instance) addPlayerLocked(playerID, displayName string, isComputer, isExternal bool, difficulty *models.Difficulty, now time.Time) *models.Player {
	index := len(inst.Game.JoinOrder)
	zone := allocateHomeZone(playerID, index)
	markHomeZone(inst.Game.Board, zone)
	pieces := spawnInitialPieces(inst.Game.Board, zone)
	inst.Game.Pieces = append(inst.Game.Pieces, pieces...)
	inst.Game.HomeZones[playerID] = zone
	inst.Game.JoinOrder = append(inst.Game.JoinOrder, playerID)

	player := &models.Player{
		ID: playerID, DisplayName: displayName, IsComputer: isComputer, IsExternal: isExternal,
		Difficulty: difficulty, HomeZone: zone, LastMoveAt: now, IsActive: true,
	}
	StartInitialTurn(player, now, inst.minDurationFor(player))
	inst.Game.Players[playerID] = player
	inst.dealIfNeeded(player, now)
	return player
}

// Join adds a new participant (human, built-in AI, or external AI) to the
// game, allocating their home zone and initial chess set (section 4.F step
// 1). Rejoining an existing, still-present player id is an error; use
// Reconnect for that.
func (inst *Instance) Join(ctx context.Context, playerID, displayName string, isComputer, isExternal bool, difficulty *models.Difficulty) (*models.Player, error) {
	v, err := inst.submit(ctx, func(now time.Time) (interface{}, error) {
		if _, exists := inst.Game.Players[playerID]; exists {
			return nil, gameerr.New(gameerr.CodeMissingField, "player already joined this game")
		}
		player := inst.addPlayerLocked(playerID, displayName, isComputer, isExternal, difficulty, now)

		if inst.Game.Status == models.StatusWaiting {
			inst.Game.Status = models.StatusPlaying
			inst.Bus.Publish(Event{Type: EventGameStarted, Payload: map[string]interface{}{"gameId": inst.Game.ID}})
		}
		inst.Bus.Publish(Event{Type: EventPlayerJoined, Payload: map[string]interface{}{"playerId": playerID, "displayName": displayName}})
		inst.publishSnapshot(now)
		return player, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Player), nil
}

// Reconnect reattaches a previously joined, disconnected player's transport
// without rebuilding their pieces or resetting their turn (section 4.G
// reconnection semantics).
func (inst *Instance) Reconnect(ctx context.Context, playerID string) (*models.Player, error) {
	v, err := inst.submit(ctx, func(now time.Time) (interface{}, error) {
		player, ok := inst.Game.Players[playerID]
		if !ok {
			return nil, gameerr.ErrPlayerNotInGame
		}
		player.IsActive = true
		inst.publishSnapshot(now)
		return player, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Player), nil
}

// Leave marks playerID disconnected, ending the game if every participant
// has now left (section 4.F).
func (inst *Instance) Leave(ctx context.Context, playerID string) error {
	_, err := inst.submit(ctx, func(now time.Time) (interface{}, error) {
		player, ok := inst.Game.Players[playerID]
		if !ok {
			return nil, gameerr.ErrPlayerNotInGame
		}
		player.IsActive = false
		inst.Bus.Unsubscribe(playerID)
		inst.Bus.Publish(Event{Type: EventPlayerLeft, Payload: map[string]interface{}{"playerId": playerID}})

		if inst.Game.Status == models.StatusPlaying && inst.allDisconnected() {
			inst.Game.Status = models.StatusEnded
			inst.Game.EndReason = models.EndReasonAllDisconnect
			inst.Bus.Publish(Event{Type: EventGameEnded, Payload: map[string]interface{}{"reason": inst.Game.EndReason}})
			inst.notifyIfEnded()
		}
		inst.publishSnapshot(now)
		return nil, nil
	})
	return err
}

// SubmitTetromino validates and applies a tetromino placement for playerID,
// advancing their turn afterwards (section 4.B/4.E).
func (inst *Instance) SubmitTetromino(ctx context.Context, playerID string, pieceType models.PieceType, rotation models.Rotation, position models.Coord) (*PlacementResult, error) {
	v, err := inst.submit(ctx, func(now time.Time) (interface{}, error) {
		if inst.Game.Status != models.StatusPlaying {
			return nil, gameerr.ErrWrongPhase
		}
		player, ok := inst.Game.Players[playerID]
		if !ok {
			return nil, gameerr.ErrPlayerNotInGame
		}
		if err := CheckPhase(player, models.PhaseTetris); err != nil {
			return nil, err
		}
		if err := CheckPacing(player, now); err != nil {
			return nil, err
		}
		active := player.CurrentTurn.ActiveTetromino
		if active == nil || active.Type != pieceType {
			return nil, gameerr.ErrWrongPiece
		}

		t := models.Tetromino{Type: pieceType, Rotation: rotation, Position: position}
		if err := CanPlace(inst.Game, t, playerID); err != nil {
			return nil, err
		}
		placement := Place(inst.Game, t, playerID, now)
		player.CurrentTurn.ActiveTetromino = nil
		player.LastMoveAt = now

		inst.Bus.Publish(Event{Type: EventTetrominoPlaced, Payload: map[string]interface{}{
			"playerId": playerID, "pieceType": pieceType, "rotation": rotation, "position": position,
		}})
		if len(placement.ClearedRows) > 0 || len(placement.ClearedColumns) > 0 {
			inst.Bus.Publish(Event{Type: EventRowsCleared, Payload: map[string]interface{}{
				"rows": placement.ClearedRows, "columns": placement.ClearedColumns,
			}})
		}
		for _, owner := range placement.DestroyedKingOwners {
			inst.Bus.Publish(Event{Type: EventGameEnded, Payload: map[string]interface{}{
				"reason": inst.Game.EndReason, "destroyedKingOwner": owner,
			}})
		}

		if inst.Game.Status == models.StatusEnded {
			inst.notifyIfEnded()
			inst.publishSnapshot(now)
			return &placement, nil
		}

		minDur := inst.minDurationFor(player)
		if skipped := AdvanceAfterPlacement(inst.Game, playerID, now, minDur); skipped {
			inst.Bus.Publish(Event{Type: EventSkipChess, Payload: map[string]interface{}{"playerId": playerID}})
		}
		inst.dealIfNeeded(player, now)
		inst.publishSnapshot(now)
		return &placement, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PlacementResult), nil
}

// SubmitChessMove validates and applies a chess move for playerID, advancing
// their turn afterwards (section 4.C/4.E).
func (inst *Instance) SubmitChessMove(ctx context.Context, playerID, pieceID string, target models.Coord) (*MoveResult, error) {
	v, err := inst.submit(ctx, func(now time.Time) (interface{}, error) {
		if inst.Game.Status != models.StatusPlaying {
			return nil, gameerr.ErrWrongPhase
		}
		player, ok := inst.Game.Players[playerID]
		if !ok {
			return nil, gameerr.ErrPlayerNotInGame
		}
		if err := CheckPhase(player, models.PhaseChess); err != nil {
			return nil, err
		}
		if err := CheckPacing(player, now); err != nil {
			return nil, err
		}
		piece, err := ValidateMove(inst.Game, playerID, pieceID, target)
		if err != nil {
			return nil, err
		}
		result := ApplyMove(inst.Game, piece, target, now)
		player.LastMoveAt = now

		inst.Bus.Publish(Event{Type: EventChessMoved, Payload: map[string]interface{}{
			"playerId": playerID, "pieceId": pieceID, "target": target,
		}})
		if result.Captured != nil {
			inst.Bus.Publish(Event{Type: EventPieceCaptured, Payload: map[string]interface{}{
				"pieceId": result.Captured.ID, "capturedBy": playerID,
			}})
		}
		if result.KingCaptured {
			inst.Bus.Publish(Event{Type: EventGameEnded, Payload: map[string]interface{}{
				"winner": inst.Game.Winner, "reason": inst.Game.EndReason,
			}})
			inst.notifyIfEnded()
			inst.publishSnapshot(now)
			return &result, nil
		}

		minDur := inst.minDurationFor(player)
		AdvanceAfterChessMove(inst.Game, playerID, now, minDur)
		inst.dealIfNeeded(player, now)
		inst.publishSnapshot(now)
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*MoveResult), nil
}

// TetrominoPreview is the response to a request_tetromino message: the piece
// already dealt to the requesting player plus the game-wide upcoming piece.
type TetrominoPreview struct {
	Active *models.Tetromino
	Next   models.PieceType
}

// RequestTetromino returns playerID's currently dealt piece and the game's
// next-up preview, without drawing (the draw already happened when their
// turn entered the tetris phase).
func (inst *Instance) RequestTetromino(ctx context.Context, playerID string) (*TetrominoPreview, error) {
	v, err := inst.submit(ctx, func(now time.Time) (interface{}, error) {
		player, ok := inst.Game.Players[playerID]
		if !ok {
			return nil, gameerr.ErrPlayerNotInGame
		}
		_ = now
		return &TetrominoPreview{Active: player.CurrentTurn.ActiveTetromino, Next: inst.Game.NextTetromino}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TetrominoPreview), nil
}

// GetSnapshot returns the full current game state, bypassing the snapshot
// throttle since it is a direct request/response rather than a broadcast.
func (inst *Instance) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	v, err := inst.submit(ctx, func(now time.Time) (interface{}, error) {
		_ = now
		snap := inst.buildSnapshot()
		return &snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Restart resets the board and every joined player's pieces and turn state
// while keeping the same roster and subscribers (the restart_game message
// in section 6).
func (inst *Instance) Restart(ctx context.Context) error {
	_, err := inst.submit(ctx, func(now time.Time) (interface{}, error) {
		inst.Game.Board = models.NewBoard()
		inst.Game.Pieces = nil
		inst.Game.HomeZones = make(map[string]models.HomeZone)
		inst.Game.Status = models.StatusPlaying
		inst.Game.Winner = ""
		inst.Game.EndReason = models.EndReasonNone

		for i, id := range inst.Game.JoinOrder {
			player, ok := inst.Game.Players[id]
			if !ok {
				continue
			}
			zone := allocateHomeZone(id, i)
			markHomeZone(inst.Game.Board, zone)
			pieces := spawnInitialPieces(inst.Game.Board, zone)
			inst.Game.Pieces = append(inst.Game.Pieces, pieces...)
			inst.Game.HomeZones[id] = zone
			player.HomeZone = zone
			player.CurrentTurn = models.Turn{}
			StartInitialTurn(player, now, inst.minDurationFor(player))
			inst.dealIfNeeded(player, now)
		}

		inst.Bus.Publish(Event{Type: EventGameStarted, Payload: map[string]interface{}{"gameId": inst.Game.ID, "restarted": true}})
		inst.publishSnapshot(now)
		return nil, nil
	})
	return err
}

// aiScanMargin bounds how far past the current board extent the built-in
// AI's placement search looks for a legal spot.
const aiScanMargin = 6

// ComputeAIMove decides playerID's next move without applying it, for the
// AI Scheduler to then run back through Coordinator.SubmitMove (section
// 4.H). It returns a nil request, nil error when the player isn't ready to
// move yet (wrong owner, pacing floor not elapsed, no legal candidate) —
// that's a normal "skip this tick" outcome, not a failure.
func (inst *Instance) ComputeAIMove(ctx context.Context, playerID string) (*MoveRequest, error) {
	v, err := inst.submit(ctx, func(now time.Time) (interface{}, error) {
		player, ok := inst.Game.Players[playerID]
		if !ok || !player.IsComputer || !player.IsActive {
			return (*MoveRequest)(nil), nil
		}
		if CheckPacing(player, now) != nil {
			return (*MoveRequest)(nil), nil
		}
		switch player.CurrentTurn.Phase {
		case models.PhaseTetris:
			return inst.decideTetrisMove(player), nil
		case models.PhaseChess:
			return inst.decideChessMove(player), nil
		default:
			return (*MoveRequest)(nil), nil
		}
	})
	if err != nil {
		return nil, err
	}
	return v.(*MoveRequest), nil
}

// decideTetrisMove scans every rotation and a margin around the board's
// current extent for a legal placement, then picks among the legal
// candidates — uniformly at random whenever the player's explorationRate is
// above zero, otherwise the first candidate found (lowest rotation, then
// lowest x, then lowest z), which tends to build compactly near the
// existing structure.
func (inst *Instance) decideTetrisMove(player *models.Player) *MoveRequest {
	active := player.CurrentTurn.ActiveTetromino
	if active == nil {
		return nil
	}
	minX, maxX, minZ, maxZ, ok := inst.Game.Board.Bounds()
	if !ok {
		minX, maxX, minZ, maxZ = -aiScanMargin, aiScanMargin, -aiScanMargin, aiScanMargin
	}

	var candidates []models.Tetromino
	for rot := models.Rotation0; rot <= models.Rotation270; rot++ {
		for x := minX - aiScanMargin; x <= maxX+aiScanMargin; x++ {
			for z := minZ - aiScanMargin; z <= maxZ+aiScanMargin; z++ {
				t := models.Tetromino{Type: active.Type, Rotation: rot, Position: models.Coord{X: x, Z: z}}
				if CanPlace(inst.Game, t, player.ID) == nil {
					candidates = append(candidates, t)
				}
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	idx := 0
	if player.Difficulty != nil && player.Difficulty.ExplorationRate > 0 {
		idx = inst.aiRand.Intn(len(candidates))
	}
	chosen := candidates[idx]
	return &MoveRequest{Kind: MoveTetromino, PieceType: chosen.Type, Rotation: chosen.Rotation, Position: chosen.Position}
}

// decideChessMove prefers a capturing move over any other legal move,
// approximating the aggressiveness axis of the difficulty tuple without a
// full search; kingProtection/defensiveness are left for a future, deeper
// evaluation (section 4.H leaves AI strength itself out of scope).
func (inst *Instance) decideChessMove(player *models.Player) *MoveRequest {
	var capture, any *MoveRequest
	for _, p := range inst.Game.PiecesOf(player.ID) {
		for _, dest := range LegalDestinations(inst.Game, p) {
			move := &MoveRequest{Kind: MoveChess, PieceID: p.ID, Target: dest}
			if any == nil {
				any = move
			}
			if occupant, ok := inst.Game.Board.HasChessItem(dest); ok && occupant.PlayerID != player.ID && capture == nil {
				capture = move
			}
		}
	}
	if capture != nil {
		return capture
	}
	return any
}
