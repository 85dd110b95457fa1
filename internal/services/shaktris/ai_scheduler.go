package shaktris

import (
	"context"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/gameerr"
)

// aiTickInterval is the Scheduler's own wake-up cadence; section 4.H caps
// each AI player's actual move rate at <=1Hz via its own minDurationMs
// floor (CheckPacing), so ticking the scheduler itself at 1Hz is enough to
// never miss a player's turn by more than a second.
const aiTickInterval = 1 * time.Second

// AIScheduler drives every built-in AI player's periodic tick and issues/
// validates the capability tokens external AI clients authenticate with
// (section 4.H). It is grounded on the teacher's AutoFall goroutine in
// session_manager.go (a single time.NewTicker(time.Second) loop), repointed
// from "drop every falling piece one row" to "let every ready AI player
// act once".
type AIScheduler struct {
	coordinator *Coordinator
	jwtSecret   []byte

	stop chan struct{}
}

// NewAIScheduler builds a scheduler bound to coordinator. jwtSecret signs
// and verifies external AI capability tokens (SHAKTRIS_JWT_SECRET).
func NewAIScheduler(coordinator *Coordinator, jwtSecret string) *AIScheduler {
	return &AIScheduler{coordinator: coordinator, jwtSecret: []byte(jwtSecret)}
}

// Start begins the periodic tick in its own goroutine.
func (s *AIScheduler) Start() {
	s.stop = make(chan struct{})
	go s.run()
}

// Stop ends the periodic tick.
func (s *AIScheduler) Stop() {
	close(s.stop)
}

func (s *AIScheduler) run() {
	ticker := time.NewTicker(aiTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stop:
			return
		}
	}
}

// tick gives every built-in AI player one opportunity to act. A player
// whose pacing floor hasn't elapsed, or who has no legal candidate this
// instant, is silently skipped until the next tick.
func (s *AIScheduler) tick() {
	for _, playerID := range s.coordinator.ComputerPlayerIDs() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		s.tickOne(ctx, playerID)
		cancel()
	}
}

func (s *AIScheduler) tickOne(ctx context.Context, playerID string) {
	inst, err := s.coordinator.instanceForPlayer(playerID)
	if err != nil {
		return
	}
	move, err := inst.ComputeAIMove(ctx, playerID)
	if err != nil {
		log.Printf("[AIScheduler] compute move for %s: %v", playerID, err)
		return
	}
	if move == nil {
		return
	}
	if _, err := s.coordinator.SubmitMove(ctx, playerID, *move); err != nil {
		log.Printf("[AIScheduler] submit move for %s: %v", playerID, err)
	}
}

// externalAIClaims is the JWT payload issued to a registered external AI
// client, generalized from the teacher's Supabase session claims
// (auth_middleware.go's sub-based lookup) to a game-capability token scoped
// to one playerId.
type externalAIClaims struct {
	jwt.RegisteredClaims
}

// externalAITokenTTL bounds how long an issued capability token is valid
// before the external AI must re-register.
const externalAITokenTTL = 24 * time.Hour

// IssueCapabilityToken signs a JWT asserting playerID as its subject, for
// an external AI's /computer-players/register response (section 6).
func (s *AIScheduler) IssueCapabilityToken(playerID string) (string, error) {
	now := time.Now()
	claims := externalAIClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(externalAITokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateCapabilityToken verifies tokenString and returns the playerId it
// asserts, mirroring the teacher's auth_middleware.go Bearer-token
// validation (jwt.ParseWithClaims against a shared secret).
func (s *AIScheduler) ValidateCapabilityToken(tokenString string) (string, error) {
	claims := &externalAIClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", gameerr.ErrInvalidAPIToken
	}
	return claims.Subject, nil
}
