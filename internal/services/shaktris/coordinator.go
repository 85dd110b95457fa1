package shaktris

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/gameerr"
	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
)

// GlobalGameID names the always-present lobby game that unknown or omitted
// gameIds route to, per section 4.G.
const GlobalGameID = "global"

// MoveKind distinguishes the two action kinds the Coordinator funnels
// through one submitMove entry point (Design Note open question 4: built-in
// AI, external AI and humans all share one rate-limited path).
type MoveKind string

const (
	MoveTetromino MoveKind = "tetromino"
	MoveChess     MoveKind = "chess"
)

// MoveRequest is the Coordinator-level envelope for submitMove, carrying
// whichever of the tetromino/chess fields MoveKind selects.
type MoveRequest struct {
	Kind MoveKind

	PieceType models.PieceType
	Rotation  models.Rotation
	Position  models.Coord

	PieceID string
	Target  models.Coord
}

// Coordinator is the Session Coordinator of section 4.G: it owns only the
// routing tables (which game a player or spectator belongs to), never game
// state itself, which stays behind each Instance's own worker. This
// replaces the teacher's single global SessionManager (one map of rooms,
// one select loop) with one Instance-per-game worker plus a thin,
// short-held-lock routing layer in front of it.
type Coordinator struct {
	mu         sync.RWMutex
	games      map[string]*Instance
	players    map[string]string // playerID -> gameID
	spectators map[string]string // spectatorID -> target playerID

	// computerPlayers tracks built-in AI ids across every game so the AI
	// Scheduler can tick them without scanning every Instance's snapshot.
	computerPlayers map[string]bool

	seedSource func() int64

	// resultSink, if set via SetResultSink, is attached to every Instance
	// this Coordinator creates (including the initial global game), so a
	// caller need only wire persistence once.
	resultSink func(game *models.Game)
}

// NewCoordinator creates a Coordinator with the always-on global game
// already running.
func NewCoordinator() *Coordinator {
	c := &Coordinator{
		games:           make(map[string]*Instance),
		players:         make(map[string]string),
		spectators:      make(map[string]string),
		computerPlayers: make(map[string]bool),
		seedSource:      func() int64 { return time.Now().UnixNano() },
	}
	global := NewInstance(GlobalGameID, c.seedSource())
	global.Start()
	c.games[GlobalGameID] = global
	return c
}

// SetResultSink installs the completed-game persistence hook (section 6's
// Persistence note) on every Instance the Coordinator manages, present and
// future. Call it once, right after NewCoordinator, before any game is
// joined.
func (c *Coordinator) SetResultSink(sink func(game *models.Game)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resultSink = sink
	for _, inst := range c.games {
		inst.SetResultSink(sink)
	}
}

// resolveGameID maps "" or an unrecognised id to the global game, per
// section 4.G's "unknown gameId routes to global game".
func (c *Coordinator) resolveGameID(gameID string) string {
	if gameID == "" {
		return GlobalGameID
	}
	c.mu.RLock()
	_, ok := c.games[gameID]
	c.mu.RUnlock()
	if !ok {
		return GlobalGameID
	}
	return gameID
}

func (c *Coordinator) lookupInstance(gameID string) (*Instance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.games[gameID]
	return inst, ok
}

// CreateGame starts a new Instance and registers it under a fresh id.
func (c *Coordinator) CreateGame() *Instance {
	id := uuid.New().String()
	inst := NewInstance(id, c.seedSource())

	c.mu.Lock()
	if c.resultSink != nil {
		inst.SetResultSink(c.resultSink)
	}
	c.games[id] = inst
	c.mu.Unlock()

	inst.Start()
	return inst
}

// JoinGame adds playerID to gameID (or the global game, if gameID is
// unknown), recording the routing entry used by every subsequent
// submitMove/spectate call. A playerID that already has a routing entry is
// reconnected to the game it was routed to instead, keeping its pieces and
// turn state.
func (c *Coordinator) JoinGame(ctx context.Context, gameID, playerID, displayName string, isComputer, isExternal bool, difficulty *models.Difficulty) (*Instance, *models.Player, error) {
	c.mu.RLock()
	_, known := c.players[playerID]
	c.mu.RUnlock()
	if known {
		return c.Reconnect(ctx, playerID)
	}
	resolved := c.resolveGameID(gameID)
	inst, ok := c.lookupInstance(resolved)
	if !ok {
		return nil, nil, gameerr.New(gameerr.CodePlayerNotInGame, "no such game")
	}
	player, err := inst.Join(ctx, playerID, displayName, isComputer, isExternal, difficulty)
	if err != nil {
		return nil, nil, err
	}
	c.mu.Lock()
	c.players[playerID] = resolved
	if isComputer {
		c.computerPlayers[playerID] = true
	}
	c.mu.Unlock()
	return inst, player, nil
}

// ComputerPlayerIDs lists every built-in AI player id across all games, for
// the AI Scheduler's periodic tick.
func (c *Coordinator) ComputerPlayerIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.computerPlayers))
	for id := range c.computerPlayers {
		out = append(out, id)
	}
	return out
}

// Reconnect reattaches playerID's transport to whatever game they were
// routed to, without touching their pieces or turn state.
func (c *Coordinator) Reconnect(ctx context.Context, playerID string) (*Instance, *models.Player, error) {
	inst, err := c.instanceForPlayer(playerID)
	if err != nil {
		return nil, nil, err
	}
	player, err := inst.Reconnect(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	return inst, player, nil
}

// HandleDisconnect marks playerID's transport as gone while preserving the
// routing entry, so a later Reconnect can find their game again.
func (c *Coordinator) HandleDisconnect(ctx context.Context, playerID string) error {
	inst, err := c.instanceForPlayer(playerID)
	if err != nil {
		return err
	}
	return inst.Leave(ctx, playerID)
}

// LeaveGame is an explicit, permanent departure: it marks the player gone
// and forgets the routing entry entirely.
func (c *Coordinator) LeaveGame(ctx context.Context, playerID string) error {
	inst, err := c.instanceForPlayer(playerID)
	if err != nil {
		return err
	}
	if err := inst.Leave(ctx, playerID); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.players, playerID)
	delete(c.computerPlayers, playerID)
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) instanceForPlayer(playerID string) (*Instance, error) {
	c.mu.RLock()
	gameID, ok := c.players[playerID]
	c.mu.RUnlock()
	if !ok {
		return nil, gameerr.ErrPlayerNotInGame
	}
	inst, ok := c.lookupInstance(gameID)
	if !ok {
		return nil, gameerr.ErrPlayerNotInGame
	}
	return inst, nil
}

// SubmitMove is the single entry point for tetromino placements and chess
// moves alike, for humans, built-in AI and external AI (Design Note open
// question 4).
func (c *Coordinator) SubmitMove(ctx context.Context, playerID string, req MoveRequest) (interface{}, error) {
	inst, err := c.instanceForPlayer(playerID)
	if err != nil {
		return nil, err
	}
	switch req.Kind {
	case MoveTetromino:
		return inst.SubmitTetromino(ctx, playerID, req.PieceType, req.Rotation, req.Position)
	case MoveChess:
		return inst.SubmitChessMove(ctx, playerID, req.PieceID, req.Target)
	default:
		return nil, gameerr.New(gameerr.CodeMalformedPayload, "unknown move kind")
	}
}

// RequestTetromino proxies to the player's Instance.
func (c *Coordinator) RequestTetromino(ctx context.Context, playerID string) (*TetrominoPreview, error) {
	inst, err := c.instanceForPlayer(playerID)
	if err != nil {
		return nil, err
	}
	return inst.RequestTetromino(ctx, playerID)
}

// RequestSpectate subscribes spectatorID to targetPlayerID's game event
// stream without granting it any move authority.
func (c *Coordinator) RequestSpectate(spectatorID, targetPlayerID string) (*Subscriber, error) {
	inst, err := c.instanceForPlayer(targetPlayerID)
	if err != nil {
		return nil, err
	}
	sub := inst.Subscribe(spectatorID)
	c.mu.Lock()
	c.spectators[spectatorID] = targetPlayerID
	c.mu.Unlock()
	return sub, nil
}

// StopSpectating removes a spectator's subscription.
func (c *Coordinator) StopSpectating(spectatorID string) error {
	c.mu.Lock()
	targetPlayerID, ok := c.spectators[spectatorID]
	delete(c.spectators, spectatorID)
	c.mu.Unlock()
	if !ok {
		return gameerr.New(gameerr.CodePlayerNotInGame, "not currently spectating")
	}
	inst, err := c.instanceForPlayer(targetPlayerID)
	if err != nil {
		return err
	}
	inst.Unsubscribe(spectatorID)
	return nil
}

// GetGameState returns gameID's (or the global game's, if unknown) current
// snapshot.
func (c *Coordinator) GetGameState(ctx context.Context, gameID string) (*Snapshot, error) {
	inst, ok := c.lookupInstance(c.resolveGameID(gameID))
	if !ok {
		return nil, gameerr.New(gameerr.CodePlayerNotInGame, "no such game")
	}
	return inst.GetSnapshot(ctx)
}

// RestartGame resets gameID's board and rosters in place.
func (c *Coordinator) RestartGame(ctx context.Context, gameID string) error {
	inst, ok := c.lookupInstance(c.resolveGameID(gameID))
	if !ok {
		return gameerr.New(gameerr.CodePlayerNotInGame, "no such game")
	}
	return inst.Restart(ctx)
}

// GameByID exposes a game's Instance for subscription wiring at connection
// time (e.g. when a WebSocket handler needs to Subscribe before any
// submitMove has happened).
func (c *Coordinator) GameByID(gameID string) (*Instance, bool) {
	return c.lookupInstance(c.resolveGameID(gameID))
}
