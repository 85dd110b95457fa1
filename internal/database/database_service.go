package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq" // postgres driver, registered for database/sql
)

// DatabaseService owns the process-wide *sql.DB connection pool. It no
// longer carries any domain-specific queries of its own (those live in
// AIRegistrationRepository/GameResultRepository); this mirrors the
// teacher's DatabaseService in structure while narrowing its
// responsibility down to the connect-and-Ping lifecycle section 6's
// Persistence note calls out as the reusable part.
type DatabaseService struct {
	DB *sql.DB
}

// NewDatabaseService opens databaseURL and verifies it with a Ping,
// exactly as the teacher's NewDatabaseService does.
func NewDatabaseService(databaseURL string) (*DatabaseService, error) {
	log.Printf("connecting to database: %s...", databaseURL[:min(len(databaseURL), 50)])
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Println("database connection established.")
	return &DatabaseService{DB: db}, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
