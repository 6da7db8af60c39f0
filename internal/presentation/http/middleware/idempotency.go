package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// IdempotencyPendingTTL frees a reservation left behind by a crashed request
	IdempotencyPendingTTL = 2 * time.Minute
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// Required rejects mutating requests that carry no key.
	Required bool
}

// bodyRecorder captures the response body so it can be replayed
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency makes cart and checkout requests safe to retry. The key is
// reserved before the handler runs, so a concurrent retry is refused instead
// of moving stock twice. Only 2xx responses are kept; anything else releases
// the key.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if cfg.Required {
				response.BadRequest(c, "Idempotency-Key header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		userID, ok := c.Get("user_id")
		uid, isUUID := userID.(uuid.UUID)
		if !ok || !isUUID {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		hash, err := requestHash(c)
		if err != nil {
			response.BadRequest(c, "Invalid request body")
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		pending := &entity.IdempotencyKey{
			Key:         key,
			UserID:      uid,
			Endpoint:    c.Request.Method + " " + c.FullPath(),
			RequestHash: hash,
			ExpiresAt:   time.Now().Add(IdempotencyPendingTTL),
		}
		reserved, err := cfg.Repo.Reserve(ctx, pending)
		if err != nil {
			zap.S().Warnw("idempotency reserve failed", "key", key, "error", err)
			c.Next()
			return
		}
		if !reserved {
			replay(c, cfg.Repo, key, uid, hash)
			return
		}

		// The reservation outlives a cancelled request context.
		bg := context.WithoutCancel(ctx)
		completed := false
		defer func() {
			if completed {
				return
			}
			if err := cfg.Repo.Release(bg, key, uid); err != nil {
				zap.S().Warnw("idempotency release failed", "key", key, "error", err)
			}
		}()

		rec := &bodyRecorder{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		pending.ResponseCode = status
		pending.ResponseBody = rec.body.String()
		pending.ExpiresAt = time.Now().Add(IdempotencyKeyTTL)
		if err := cfg.Repo.Complete(bg, pending); err != nil {
			zap.S().Warnw("idempotency store failed", "key", key, "error", err)
			return
		}
		completed = true
	}
}

// replay answers a request whose key is already held: the stored response
// when the first attempt finished, 409 while it runs or when the body differs.
func replay(c *gin.Context, repo repository.IdempotencyRepository, key string, uid uuid.UUID, hash string) {
	existing, err := repo.GetByKey(c.Request.Context(), key, uid)
	if err != nil {
		zap.S().Warnw("idempotency lookup failed", "key", key, "error", err)
		response.InternalServerError(c, "Could not check Idempotency-Key")
		c.Abort()
		return
	}

	switch {
	case existing == nil || existing.IsPending():
		c.Header("Retry-After", "1")
		response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is still in progress")
	case existing.RequestHash != "" && existing.RequestHash != hash:
		response.ErrorWithCode(c, http.StatusConflict, "Idempotency-Key was already used for a different request")
	default:
		c.Header(ReplayedHeader, "true")
		c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
	}
	c.Abort()
}

// requestHash fingerprints method, path and body, restoring the body for the handler.
func requestHash(c *gin.Context) (string, error) {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	sum := sha256.New()
	sum.Write([]byte(c.Request.Method + " " + c.Request.URL.Path + "\n"))
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil)), nil
}
