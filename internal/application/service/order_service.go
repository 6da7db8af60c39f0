package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sangkips/pos-api/pkg/money"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/sangkips/pos-api/pkg/utils"
	"go.uber.org/zap"
)

// OrderService runs the cart -> order -> bill lifecycle
type OrderService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	bills     *BillService
	printer   *PrinterService
	loc       *time.Location
	now       Clock
}

// NewOrderService creates a new order service. printer may be nil.
func NewOrderService(
	txManager repository.TransactionManager,
	orderRepo repository.OrderRepository,
	bills *BillService,
	printer *PrinterService,
	loc *time.Location,
) *OrderService {
	return &OrderService{
		txManager: txManager,
		orderRepo: orderRepo,
		bills:     bills,
		printer:   printer,
		loc:       loc,
		now:       time.Now,
	}
}

// FillCartInput adds qty units of a product to a customer's open cart
type FillCartInput struct {
	UserID     uuid.UUID
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Qty        int
}

// FillCart adds a line to the customer's open cart, opening one when needed.
// Stock is taken at this point so two tills cannot sell the same units.
func (s *OrderService) FillCart(ctx context.Context, input *FillCartInput) (*entity.Order, error) {
	if input.Qty <= 0 {
		return nil, apperror.NewBadRequestError("Quantity must be greater than zero")
	}

	var orderID uuid.UUID
	err := s.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		customer, err := repos.Customers().GetByID(ctx, input.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return apperror.NewNotFoundError("Customer")
		}

		product, err := repos.Products().GetByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return apperror.NewNotFoundError("Product")
		}

		cart, err := repos.Orders().FindOpenCart(ctx, customer.ID)
		if err != nil {
			return err
		}
		if cart == nil {
			cart = &entity.Order{
				InvoiceNo:  utils.GenerateInvoiceNo(s.now().In(s.loc)),
				CustomerID: customer.ID,
				CreatedBy:  input.UserID,
				Status:     enum.OrderStatusCart,
			}
			if err := repos.Orders().Create(ctx, cart); err != nil {
				return err
			}
		} else {
			// Lock the cart row so concurrent adds see each other's lines.
			cart, err = repos.Orders().GetForUpdate(ctx, cart.ID)
			if err != nil {
				return err
			}
			if cart == nil || !cart.IsCart() {
				return apperror.ErrCartNotOpen
			}
		}

		ok, err := repos.Products().AtomicDecrementQuantity(ctx, product.ID, input.Qty)
		if err != nil {
			return err
		}
		if !ok {
			metrics.StockRejected()
			return apperror.NewInsufficientStockError(product.Name)
		}

		unitPrice := money.ApplyDiscount(product.Price, product.Discount)
		item := &entity.OrderItem{
			OrderID:   cart.ID,
			ProductID: product.ID,
			Position:  nextPosition(cart.Cart),
			Qty:       input.Qty,
			UnitPrice: unitPrice,
			Total:     unitPrice * int64(input.Qty),
		}
		if err := repos.OrderItems().Create(ctx, item); err != nil {
			return err
		}

		cart.Cart = append(cart.Cart, *item)
		cart.Total = cart.CartTotal()
		if err := repos.Orders().Update(ctx, cart); err != nil {
			return err
		}

		orderID = cart.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, orderID)
}

// GetOrder returns an order with its cart lines and products
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithCart(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// DeleteCartItem removes the line at index from an open cart and puts its stock back
func (s *OrderService) DeleteCartItem(ctx context.Context, orderID uuid.UUID, index int) (*entity.Order, error) {
	err := s.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		order, err := repos.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}
		if !order.IsCart() {
			return apperror.ErrCartNotOpen
		}
		if index < 0 || index >= len(order.Cart) {
			return apperror.ErrCartItem
		}

		item := order.Cart[index]
		if err := repos.OrderItems().Delete(ctx, item.ID); err != nil {
			return err
		}
		if err := repos.Products().AtomicIncrementQuantity(ctx, item.ProductID, item.Qty); err != nil {
			return err
		}

		order.Cart = append(order.Cart[:index], order.Cart[index+1:]...)
		order.Total = order.CartTotal()
		return repos.Orders().Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, orderID)
}

// CheckoutInput finalises a cart with the cash handed over
type CheckoutInput struct {
	UserID     uuid.UUID
	OrderID    uuid.UUID
	CustomerID *uuid.UUID
	Payment    float64
}

// CheckoutOutput is the billed order and the change to hand back
type CheckoutOutput struct {
	Order  *entity.Order
	Change float64
}

// Checkout bills an open cart. Payment first settles the cart and then any
// older udhar; whatever the cart leaves unpaid is added to the customer's udhar.
func (s *OrderService) Checkout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
	payment := money.ToCents(input.Payment)
	if payment < 0 {
		return nil, apperror.NewBadRequestError("Bill payment cannot be negative")
	}

	var (
		billKey string
		settled int64
		change  int64
	)
	err := s.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		order, err := repos.Orders().GetForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}
		if !order.IsCart() {
			return apperror.ErrCartNotOpen
		}
		if len(order.Cart) == 0 {
			return apperror.ErrEmptyCart
		}
		if input.CustomerID != nil && *input.CustomerID != order.CustomerID {
			return apperror.NewBadRequestError("Customer does not own this cart")
		}

		customer, err := repos.Customers().GetByID(ctx, order.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return apperror.NewNotFoundError("Customer")
		}

		total := order.CartTotal()
		settled = money.Min(payment, total+customer.Udhar)
		change = payment - settled

		if delta := total - settled; delta != 0 {
			ok, err := repos.Customers().AdjustUdhar(ctx, customer.ID, delta)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.NewConflictError("Udhar changed while billing; reload and try again")
			}
			customer.Udhar += delta
		}

		billedAt := s.now()
		order.Status = enum.OrderStatusBilled
		order.Total = total
		order.Paid = settled
		order.Due = money.Max(total-settled, 0)
		order.BilledAt = &billedAt
		order.Customer = customer

		if settled > 0 {
			if err := repos.Transactions().Create(ctx, &entity.Transaction{
				Type:        enum.TransactionSale,
				Description: "Bill " + order.InvoiceNo + " for " + customer.Name,
				Amount:      settled,
				OrderID:     &order.ID,
				CustomerID:  &customer.ID,
				CreatedBy:   input.UserID,
			}); err != nil {
				return err
			}
		}

		cashier, err := s.attachBillDetails(ctx, repos, order, input.UserID)
		if err != nil {
			return err
		}

		key := s.bills.Key(order)
		if err := s.bills.Publish(ctx, key, s.bills.Compose(order, cashier, customer.Udhar)); err != nil {
			return err
		}
		billKey = key
		order.Bill = &key

		return repos.Orders().Update(ctx, order)
	})
	if err != nil {
		if billKey != "" {
			if rmErr := s.bills.Remove(context.Background(), billKey); rmErr != nil {
				zap.S().Warnw("failed to remove orphaned bill", "key", billKey, "error", rmErr)
			}
		}
		return nil, err
	}

	metrics.OrderBilled()
	if settled > 0 {
		metrics.LedgerRecorded(string(enum.TransactionSale), settled)
	}

	order, err := s.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if s.printer != nil {
		s.printer.AutoPrint(order)
	}

	return &CheckoutOutput{
		Order:  order,
		Change: money.FromCents(change),
	}, nil
}

// attachBillDetails loads the products of the cart lines and returns the cashier's name.
func (s *OrderService) attachBillDetails(ctx context.Context, repos repository.RepositoryFactory, order *entity.Order, userID uuid.UUID) (string, error) {
	ids := make([]uuid.UUID, 0, len(order.Cart))
	for _, item := range order.Cart {
		ids = append(ids, item.ProductID)
	}
	products, err := repos.Products().GetByIDs(ctx, ids)
	if err != nil {
		return "", err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range order.Cart {
		order.Cart[i].Product = byID[order.Cart[i].ProductID]
	}

	user, err := repos.Users().GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return user.Name, nil
}

// ListOrdersInput filters the order history
type ListOrdersInput struct {
	Pagination *pagination.PaginationParams
	Status     string
	CustomerID *uuid.UUID
	Range      RangeInput
}

// ListOrders lists orders newest first
func (s *OrderService) ListOrders(ctx context.Context, input *ListOrdersInput) ([]entity.Order, int64, error) {
	params := &repository.OrderFilterParams{
		Pagination: input.Pagination,
		CustomerID: input.CustomerID,
	}

	if input.Status != "" {
		status, ok := enum.ParseOrderStatus(input.Status)
		if !ok {
			return nil, 0, apperror.NewBadRequestError("Unknown order status " + input.Status)
		}
		params.Status = &status
	}

	rng, err := resolveRange(input.Range, s.loc, s.now())
	if err != nil {
		return nil, 0, err
	}
	params.Range = rng

	return s.orderRepo.List(ctx, params)
}

// DeleteOrder removes an order. An open cart gives its stock back first; a
// billed order keeps its ledger rows and only loses the stored bill.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	var billKey string
	err := s.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		order, err := repos.Orders().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}

		if order.IsCart() {
			if err := restoreStock(ctx, repos, order); err != nil {
				return err
			}
			if err := repos.OrderItems().DeleteByOrderID(ctx, order.ID); err != nil {
				return err
			}
		}
		if order.Bill != nil {
			billKey = *order.Bill
		}
		return repos.Orders().Delete(ctx, order.ID)
	})
	if err != nil {
		return err
	}

	if billKey != "" {
		if err := s.bills.Remove(ctx, billKey); err != nil {
			zap.S().Warnw("failed to remove bill", "order_id", id, "key", billKey, "error", err)
		}
	}
	return nil
}

// ReleaseAbandonedCarts cancels carts untouched for longer than idle and returns their stock.
func (s *OrderService) ReleaseAbandonedCarts(ctx context.Context, idle time.Duration) (int, error) {
	carts, err := s.orderRepo.ListAbandonedCarts(ctx, s.now().Add(-idle))
	if err != nil {
		return 0, err
	}

	released := 0
	for _, c := range carts {
		cancelled := false
		err := s.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
			order, err := repos.Orders().GetForUpdate(ctx, c.ID)
			if err != nil {
				return err
			}
			// Touched or billed since it was listed.
			if order == nil || !order.IsCart() || !order.UpdatedAt.Equal(c.UpdatedAt) {
				return nil
			}
			if err := restoreStock(ctx, repos, order); err != nil {
				return err
			}
			order.Status = enum.OrderStatusCancelled
			if err := repos.Orders().Update(ctx, order); err != nil {
				return err
			}
			cancelled = true
			return nil
		})
		if err != nil {
			return released, err
		}
		if cancelled {
			released++
		}
	}
	return released, nil
}

func restoreStock(ctx context.Context, repos repository.RepositoryFactory, order *entity.Order) error {
	if len(order.Cart) == 0 {
		return nil
	}
	increments := make(map[uuid.UUID]int, len(order.Cart))
	for _, item := range order.Cart {
		increments[item.ProductID] += item.Qty
	}
	return repos.Products().AtomicIncrementBatch(ctx, increments)
}

func nextPosition(items []entity.OrderItem) int {
	next := 0
	for _, item := range items {
		if item.Position >= next {
			next = item.Position + 1
		}
	}
	return next
}
