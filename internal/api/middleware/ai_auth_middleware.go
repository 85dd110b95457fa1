package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/progate-hackathon-strawberry-flavor/shaktris-backend/internal/services/shaktris"
)

// PlayerIDKey is the context key AIAuthMiddleware stores the verified
// external AI's playerId under, mirroring the teacher's UserIDKey pattern
// for human auth.
type PlayerIDKey struct{}

// writeJSONError writes a JSON error response, grounded on the teacher's
// helper of the same name and signature.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetPlayerIDFromContext retrieves the playerId AIAuthMiddleware verified.
func GetPlayerIDFromContext(ctx context.Context) (string, bool) {
	playerID, ok := ctx.Value(PlayerIDKey{}).(string)
	return playerID, ok
}

// AIAuthMiddleware verifies the Bearer capability token every external AI
// HTTP route but /computer-players/register requires (section 6),
// generalized from the teacher's Supabase Bearer-token check in
// auth_middleware.go to the AIScheduler's own HMAC-signed tokens.
func AIAuthMiddleware(scheduler *shaktris.AIScheduler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "invalid Authorization header format. Must be 'Bearer <token>'")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			playerID, err := scheduler.ValidateCapabilityToken(tokenString)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid api token")
				return
			}

			ctx := context.WithValue(r.Context(), PlayerIDKey{}, playerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
