package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/config"
)

const (
	RequestIDHeader    = "X-Request-ID"
	RefreshTokenHeader = "X-Refresh-Token"
	ReplayedHeader     = "X-Idempotency-Replayed"
)

// the till cannot work without these, whatever CORS_ALLOWED_HEADERS says
var tillRequestHeaders = []string{
	"Accept",
	"Authorization",
	"Content-Type",
	"Origin",
	RequestIDHeader,
	RefreshTokenHeader,
	IdempotencyKeyHeader,
}

// read by the web client: bill downloads, replays and retry hints
var tillResponseHeaders = []string{
	"Content-Length",
	"Content-Type",
	"Content-Disposition",
	"Retry-After",
	RequestIDHeader,
	ReplayedHeader,
}

var defaultOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

var defaultMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// CORSMiddleware lets the POS web client call the API with its session cookies
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsConfig(cfg))
}

func corsConfig(cfg *config.CORSConfig) cors.Config {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = defaultMethods
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     mergeHeaders(cfg.AllowedHeaders, tillRequestHeaders),
		ExposeHeaders:    tillResponseHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// mergeHeaders appends the required headers missing from configured,
// comparing case-insensitively
func mergeHeaders(configured, required []string) []string {
	seen := make(map[string]bool, len(configured)+len(required))
	out := make([]string, 0, len(configured)+len(required))
	for _, list := range [][]string{configured, required} {
		for _, h := range list {
			key := strings.ToLower(strings.TrimSpace(h))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, strings.TrimSpace(h))
		}
	}
	return out
}
