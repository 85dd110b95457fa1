package database

import (
	"database/sql"
	"fmt"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models"
)

// AIRegistrationRepository persists the external-AI registrations issued by
// POST /computer-players/register. Token checks on the request path do not
// read it; a capability token is accepted after a restart on the strength
// of its signature alone. Grounded on the teacher's
// DeckRepository interface-plus-impl shape in deck_repository.go.
type AIRegistrationRepository interface {
	Create(reg models.AIRegistration) error
	GetByPlayerID(playerID string) (*models.AIRegistration, error)
}

type aiRegistrationRepositoryImpl struct {
	db *sql.DB
}

// NewAIRegistrationRepository builds an AIRegistrationRepository backed by db.
func NewAIRegistrationRepository(db *sql.DB) AIRegistrationRepository {
	return &aiRegistrationRepositoryImpl{db: db}
}

func (r *aiRegistrationRepositoryImpl) Create(reg models.AIRegistration) error {
	_, err := r.db.Exec(
		"INSERT INTO ai_registrations (player_id, name, created_at) VALUES ($1, $2, $3)",
		reg.PlayerID, reg.Name, reg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting ai registration: %w", err)
	}
	return nil
}

func (r *aiRegistrationRepositoryImpl) GetByPlayerID(playerID string) (*models.AIRegistration, error) {
	var reg models.AIRegistration
	row := r.db.QueryRow("SELECT player_id, name, created_at FROM ai_registrations WHERE player_id = $1", playerID)
	err := row.Scan(&reg.PlayerID, &reg.Name, &reg.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying ai registration: %w", err)
	}
	return &reg, nil
}
