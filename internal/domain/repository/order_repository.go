package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/daterange"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// GetWithCart loads the order with its customer and cart lines in cart order.
	GetWithCart(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// GetForUpdate loads the order row locked for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	FindOpenCart(ctx context.Context, customerID uuid.UUID) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	IDsByCustomer(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error)
	ProductInOpenCart(ctx context.Context, productID uuid.UUID) (bool, error)
	ListAbandonedCarts(ctx context.Context, idleSince time.Time) ([]entity.Order, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.OrderStatus
	CustomerID *uuid.UUID
	Range      *daterange.Range
}

// OrderItemRepository defines the interface for cart line operations
type OrderItemRepository interface {
	Create(ctx context.Context, item *entity.OrderItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error
}
