package middleware

import (
	"time"

	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/pkg/utils"
)

func newJWTManager() *utils.JWTManager {
	return utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
}

func configRateLimit(requests, seconds int) config.RateLimitConfig {
	return config.RateLimitConfig{Requests: requests, Duration: seconds}
}
