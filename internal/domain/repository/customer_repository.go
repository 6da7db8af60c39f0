package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	// Update saves contact details; the udhar balance only moves through AdjustUdhar.
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *CustomerFilterParams) ([]entity.Customer, int64, error)
	// AdjustUdhar adds delta (may be negative) to the balance unless it would go below zero.
	// Returns (false, nil) when the guard refused the change.
	AdjustUdhar(ctx context.Context, id uuid.UUID, delta int64) (bool, error)
	TotalUdhar(ctx context.Context) (int64, error)
}

// CustomerFilterParams contains filtering parameters for customer queries
type CustomerFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	WithUdhar  bool
}
