package shaktris

import "sync"

// EventType names one of the per-game event kinds listed in section 4.I.
type EventType string

const (
	EventPlayerJoined    EventType = "playerJoined"
	EventPlayerLeft      EventType = "playerLeft"
	EventTetrominoPlaced EventType = "tetrominoPlaced"
	EventRowsCleared     EventType = "rowsCleared"
	EventChessMoved      EventType = "chessMoved"
	EventPieceCaptured   EventType = "pieceCaptured"
	EventSkipChess       EventType = "skipChess"
	EventGameStarted     EventType = "gameStarted"
	EventGameEnded       EventType = "gameEnded"
	EventStateSnapshot   EventType = "stateSnapshot"
)

// Event is one entry of a Game's totally ordered event stream.
type Event struct {
	Type    EventType
	GameID  string
	Seq     uint64
	Payload interface{}
}

// maxDroppedBeforeDisconnect mirrors the teacher's writePump
// consecutive-error counter (max 3 before disconnect) in session_manager.go,
// generalized from "ping write failures" to "event channel backpressure".
const maxDroppedBeforeDisconnect = 3

// subscriberBufferSize bounds how many discrete events a slow subscriber
// may lag behind before events start being dropped.
const subscriberBufferSize = 64

// Subscriber is a player or spectator's inbound event channel. Events is
// consumed by that subscriber's own transport goroutine (the relay
// goroutine the WebSocket handler's pipeSubscriber starts), never by the
// Game worker directly — the worker only ever
// performs non-blocking sends into it.
type Subscriber struct {
	ID     string
	Events chan Event

	mu      sync.Mutex
	dropped int
	closed  bool
}

// EventBus fans out one Game's event stream to its subscribers, in
// publication order, per section 4.I. It is owned by exactly one Game
// Instance worker: Publish is only ever called from that worker's
// goroutine, so no internal locking of the subscriber set is required
// beyond what Subscribe/Unsubscribe themselves need.
type EventBus struct {
	gameID  string
	mu      sync.Mutex
	subs    map[string]*Subscriber
	nextSeq uint64
}

// NewEventBus creates an event bus scoped to one game.
func NewEventBus(gameID string) *EventBus {
	return &EventBus{gameID: gameID, subs: make(map[string]*Subscriber)}
}

// Subscribe registers a new subscriber (player or spectator) and returns
// its event channel handle.
func (b *EventBus) Subscribe(id string) *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &Subscriber{ID: id, Events: make(chan Event, subscriberBufferSize)}
	b.subs[id] = sub
	return sub
}

// Unsubscribe removes a subscriber, e.g. on disconnect or stop_spectating.
func (b *EventBus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		sub.mu.Lock()
		sub.closed = true
		sub.mu.Unlock()
		delete(b.subs, id)
	}
}

// Disconnected reports subscriber ids that crossed the drop threshold since
// the last call and removes them, so the coordinator can close their
// transport (section 5's "disconnected after a threshold").
func (b *EventBus) Disconnected() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var ids []string
	for id, sub := range b.subs {
		sub.mu.Lock()
		over := sub.dropped >= maxDroppedBeforeDisconnect
		sub.mu.Unlock()
		if over {
			ids = append(ids, id)
			delete(b.subs, id)
		}
	}
	return ids
}

// Publish assigns the next sequence number and fans ev out to every
// subscriber with a non-blocking send. A full subscriber channel drops the
// event and increments that subscriber's drop counter rather than blocking
// the Game worker (section 5's backpressure suspension point (b)).
func (b *EventBus) Publish(ev Event) Event {
	b.mu.Lock()
	b.nextSeq++
	ev.Seq = b.nextSeq
	ev.GameID = b.gameID
	subs := make([]*Subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.Events <- ev:
			sub.mu.Lock()
			sub.dropped = 0
			sub.mu.Unlock()
		default:
			sub.mu.Lock()
			sub.dropped++
			sub.mu.Unlock()
		}
	}
	return ev
}
