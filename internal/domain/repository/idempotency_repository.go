package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
)

// IdempotencyRepository keeps the cart and checkout responses keyed by the
// client's Idempotency-Key, scoped per user.
type IdempotencyRepository interface {
	// GetByKey returns the unexpired record for key, pending or completed.
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Reserve claims key for a request in flight, replacing an expired record.
	// It reports false when another unexpired record holds the key.
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// Complete stores the response of a reserved key.
	Complete(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Release drops a pending reservation so the request can be retried.
	Release(ctx context.Context, key string, userID uuid.UUID) error
	// DeleteExpired removes expired records and reports how many went.
	DeleteExpired(ctx context.Context) (int64, error)
}
