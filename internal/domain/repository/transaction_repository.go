package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/daterange"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// TransactionRepository defines the interface for ledger rows
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *TransactionFilterParams) ([]entity.Transaction, int64, error)
	Sum(ctx context.Context, params *TransactionFilterParams) (int64, error)
}

// TransactionFilterParams contains filtering parameters for ledger queries
type TransactionFilterParams struct {
	Pagination *pagination.PaginationParams
	Type       enum.TransactionType
	Range      *daterange.Range
	// WithCreator preloads the user who recorded each row.
	WithCreator bool
}
