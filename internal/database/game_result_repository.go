package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models"
)

// GameResultRepository persists a best-effort ledger of completed games
// (winner, end reason, participants), grounded on the teacher's
// ResultRepository in result_repository.go.
type GameResultRepository interface {
	CreateResult(gameID, winner, endReason string, playerIDs []string) (*models.GameResult, error)
	GetResultsForPlayer(playerID string, limit int) ([]models.GameResult, error)
}

type gameResultRepositoryImpl struct {
	db *sql.DB
}

// NewGameResultRepository builds a GameResultRepository backed by db.
func NewGameResultRepository(db *sql.DB) GameResultRepository {
	return &gameResultRepositoryImpl{db: db}
}

func (r *gameResultRepositoryImpl) CreateResult(gameID, winner, endReason string, playerIDs []string) (*models.GameResult, error) {
	now := time.Now()
	var id int64
	row := r.db.QueryRow(
		"INSERT INTO game_results (game_id, winner, end_reason, player_ids, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		gameID, winner, endReason, pq.Array(playerIDs), now,
	)
	if err := row.Scan(&id); err != nil {
		return nil, fmt.Errorf("inserting game result: %w", err)
	}
	return &models.GameResult{
		ID: id, GameID: gameID, Winner: winner, EndReason: endReason, PlayerIDs: playerIDs, CreatedAt: now,
	}, nil
}

func (r *gameResultRepositoryImpl) GetResultsForPlayer(playerID string, limit int) ([]models.GameResult, error) {
	rows, err := r.db.Query(
		`SELECT id, game_id, winner, end_reason, player_ids, created_at FROM game_results
		 WHERE $1 = ANY(player_ids) ORDER BY created_at DESC LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying game results: %w", err)
	}
	defer rows.Close()

	var results []models.GameResult
	for rows.Next() {
		var res models.GameResult
		var players pq.StringArray
		if err := rows.Scan(&res.ID, &res.GameID, &res.Winner, &res.EndReason, &players, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning game result: %w", err)
		}
		res.PlayerIDs = players
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating game results: %w", err)
	}
	return results, nil
}
