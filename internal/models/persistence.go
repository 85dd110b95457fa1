// Package models holds the record types the optional Postgres layer
// persists: the two concerns section 6's Persistence note carries over
// from the teacher's domain (decks/results) into Shaktris's (external-AI
// registrations and a completed-game ledger), now that core Game state
// itself is never written here.
package models

import "time"

// AIRegistration is a durable record of an external AI client's
// registration (its playerId, name and creation time). The capability
// token is not stored here; it is verified from its own signature
// (stateless JWT). Grounded on the teacher's Deck record in the old deck.go.
type AIRegistration struct {
	PlayerID  string    `json:"playerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// GameResult is a best-effort record of one completed game, grounded on
// the teacher's Result record in the old result.go.
type GameResult struct {
	ID        int64     `json:"id"`
	GameID    string    `json:"gameId"`
	Winner    string    `json:"winner"`
	EndReason string    `json:"endReason"`
	PlayerIDs []string  `json:"playerIds"`
	CreatedAt time.Time `json:"createdAt"`
}
