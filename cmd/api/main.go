package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	api "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/api/handlers"
	auth "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/database"
	models "github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/models/shaktris"
	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/services/shaktris"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("warning: could not load .env file (fine in production): %v", err)
		}
	}

	jwtSecret := os.Getenv("SHAKTRIS_JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("error: SHAKTRIS_JWT_SECRET environment variable is not set.")
	}

	coordinator := shaktris.NewCoordinator()
	registrationRepo := wirePersistence(coordinator)

	scheduler := shaktris.NewAIScheduler(coordinator, jwtSecret)
	scheduler.Start()

	gameHandler := api.NewGameHandler(coordinator)
	computerHandler := api.NewComputerPlayerHandler(coordinator, scheduler, registrationRepo)

	r := mux.NewRouter()
	r.Use(auth.CORSHandler())

	r.HandleFunc("/healthz", healthzHandler).Methods("GET")

	r.HandleFunc("/ws", gameHandler.HandleWebSocketConnection)

	aiRouter := r.PathPrefix("/computer-players").Subrouter()
	aiRouter.HandleFunc("/register", computerHandler.Register).Methods("POST", "OPTIONS")

	gameRouter := r.PathPrefix("/games/{gameId}").Subrouter()
	gameRouter.Use(auth.AIAuthMiddleware(scheduler))
	gameRouter.HandleFunc("/add-computer-player", computerHandler.AddToGame).Methods("POST", "OPTIONS")
	gameRouter.HandleFunc("/computer-move", computerHandler.ComputerMove).Methods("POST", "OPTIONS")
	gameRouter.HandleFunc("/available-tetrominos", computerHandler.AvailableTetrominos).Methods("GET", "OPTIONS")
	gameRouter.HandleFunc("/chess-pieces", computerHandler.ChessPieces).Methods("GET", "OPTIONS")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	bindAddress := os.Getenv("BIND_ADDRESS")

	srv := &http.Server{
		Addr:              bindAddress + ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("shaktris server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	log.Println("shutdown complete.")
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// wirePersistence attaches the optional completed-game ledger and durable
// AI-registration store if DATABASE_URL is set, mirroring the teacher's
// connect-or-warn startup in database_service.go (section 6's Persistence
// note: the server is fully functional in-memory-only with no database). It
// returns nil when persistence is unavailable; callers treat a nil
// repository as "don't bother persisting".
func wirePersistence(coordinator *shaktris.Coordinator) database.AIRegistrationRepository {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Println("warning: DATABASE_URL not set, running without a completed-game ledger or durable AI registrations.")
		return nil
	}

	dbService, err := database.NewDatabaseService(databaseURL)
	if err != nil {
		log.Printf("warning: database connection failed, running without persistence: %v", err)
		return nil
	}

	resultRepo := database.NewGameResultRepository(dbService.DB)
	coordinator.SetResultSink(func(game *models.Game) {
		if _, err := resultRepo.CreateResult(game.ID, game.Winner, string(game.EndReason), game.JoinOrder); err != nil {
			log.Printf("warning: failed to persist game result for %s: %v", game.ID, err)
		}
	})

	return database.NewAIRegistrationRepository(dbService.DB)
}
