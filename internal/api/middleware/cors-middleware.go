package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
)

// defaultAllowedOrigins covers local development against the WebSocket/HTTP
// surface in section 6; a deployed frontend origin is added via
// ALLOWED_ORIGINS (comma-separated) without code changes.
var defaultAllowedOrigins = []string{"http://localhost:3000"}

// CORSHandler returns the middleware applied to the external AI HTTP surface
// and the WebSocket upgrade route, grounded on the teacher's cors-middleware.go
// rs/cors wiring, generalized from a single hardcoded frontend origin to an
// env-configurable allowlist.
func CORSHandler() func(http.Handler) http.Handler {
	origins := defaultAllowedOrigins
	if extra := os.Getenv("ALLOWED_ORIGINS"); extra != "" {
		origins = append(append([]string{}, origins...), strings.Split(extra, ",")...)
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler
}
