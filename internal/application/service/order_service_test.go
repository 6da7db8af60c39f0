package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var billedAt = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

type orderFixture struct {
	svc   *OrderService
	repos *repos
	tm    *fakeTxManager
	store *memStore
}

func newOrderFixture() *orderFixture {
	r := newRepos()
	tm := &fakeTxManager{repos: r}
	store := newMemStore()
	bills := NewBillService(store, config.StoreConfig{Name: "Corner Store", Currency: "PKR", Timezone: "UTC"}, "")
	svc := NewOrderService(tm, r.orders, bills, nil, time.UTC)
	svc.now = fixedClock(billedAt)
	return &orderFixture{svc: svc, repos: r, tm: tm, store: store}
}

func openCart(customerID uuid.UUID, lines ...entity.OrderItem) *entity.Order {
	order := &entity.Order{
		ID:         uuid.New(),
		InvoiceNo:  "INV-20260314-ABCDEF12",
		CustomerID: customerID,
		Status:     enum.OrderStatusCart,
		Cart:       lines,
	}
	order.Total = order.CartTotal()
	return order
}

func line(productID uuid.UUID, qty int, unit int64, pos int) entity.OrderItem {
	return entity.OrderItem{
		ID:        uuid.New(),
		ProductID: productID,
		Position:  pos,
		Qty:       qty,
		UnitPrice: unit,
		Total:     unit * int64(qty),
	}
}

func TestFillCart_OpensCartAndTakesStock(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	userID, customerID, productID := uuid.New(), uuid.New(), uuid.New()

	fx.repos.customers.On("GetByID", ctx, customerID).Return(&entity.Customer{ID: customerID, Name: "Ali"}, nil)
	fx.repos.products.On("GetByID", ctx, productID).Return(&entity.Product{ID: productID, Name: "Sugar", Price: 20000, Discount: 2000, StockQty: 5}, nil)
	fx.repos.orders.On("FindOpenCart", ctx, customerID).Return(nil, nil)

	var created *entity.Order
	fx.repos.orders.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*entity.Order)
		created.ID = uuid.New()
	}).Return(nil)
	fx.repos.products.On("AtomicDecrementQuantity", ctx, productID, 2).Return(true, nil)
	fx.repos.items.On("Create", ctx, mock.MatchedBy(func(i *entity.OrderItem) bool {
		return i.UnitPrice == 18000 && i.Total == 36000 && i.Position == 0
	})).Return(nil)
	fx.repos.orders.On("Update", ctx, mock.MatchedBy(func(o *entity.Order) bool {
		return o.Total == 36000
	})).Return(nil)
	fx.repos.orders.On("GetWithCart", ctx, mock.AnythingOfType("uuid.UUID")).Return(&entity.Order{Total: 36000}, nil)

	order, err := fx.svc.FillCart(ctx, &FillCartInput{UserID: userID, CustomerID: customerID, ProductID: productID, Qty: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(36000), order.Total)
	require.NotNil(t, created)
	assert.Equal(t, enum.OrderStatusCart, created.Status)
	assert.Equal(t, userID, created.CreatedBy)
	assert.Equal(t, 1, fx.tm.commits)
	fx.repos.assertExpectations(t)
}

func TestFillCart_AppendsAfterLastPosition(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	customerID, productID := uuid.New(), uuid.New()
	cart := openCart(customerID, line(uuid.New(), 1, 100, 0), line(uuid.New(), 1, 100, 3))

	fx.repos.customers.On("GetByID", ctx, customerID).Return(&entity.Customer{ID: customerID}, nil)
	fx.repos.products.On("GetByID", ctx, productID).Return(&entity.Product{ID: productID, Name: "Tea", Price: 500, StockQty: 9}, nil)
	fx.repos.orders.On("FindOpenCart", ctx, customerID).Return(&entity.Order{ID: cart.ID}, nil)
	fx.repos.orders.On("GetForUpdate", ctx, cart.ID).Return(cart, nil)
	fx.repos.products.On("AtomicDecrementQuantity", ctx, productID, 1).Return(true, nil)
	fx.repos.items.On("Create", ctx, mock.MatchedBy(func(i *entity.OrderItem) bool {
		return i.Position == 4 && i.OrderID == cart.ID
	})).Return(nil)
	fx.repos.orders.On("Update", ctx, mock.MatchedBy(func(o *entity.Order) bool {
		return o.Total == 700
	})).Return(nil)
	fx.repos.orders.On("GetWithCart", ctx, cart.ID).Return(cart, nil)

	_, err := fx.svc.FillCart(ctx, &FillCartInput{CustomerID: customerID, ProductID: productID, Qty: 1})
	require.NoError(t, err)
	fx.repos.assertExpectations(t)
}

func TestFillCart_InsufficientStockRollsBack(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	customerID, productID := uuid.New(), uuid.New()
	cart := openCart(customerID)

	fx.repos.customers.On("GetByID", ctx, customerID).Return(&entity.Customer{ID: customerID}, nil)
	fx.repos.products.On("GetByID", ctx, productID).Return(&entity.Product{ID: productID, Name: "Rice", Price: 100, StockQty: 1}, nil)
	fx.repos.orders.On("FindOpenCart", ctx, customerID).Return(cart, nil)
	fx.repos.orders.On("GetForUpdate", ctx, cart.ID).Return(cart, nil)
	fx.repos.products.On("AtomicDecrementQuantity", ctx, productID, 3).Return(false, nil)

	_, err := fx.svc.FillCart(ctx, &FillCartInput{CustomerID: customerID, ProductID: productID, Qty: 3})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, 400, appErr.Code)
	assert.Contains(t, appErr.Message, "Rice")
	assert.Equal(t, 1, fx.tm.rollbacks)
	fx.repos.items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFillCart_RejectsNonPositiveQty(t *testing.T) {
	fx := newOrderFixture()

	_, err := fx.svc.FillCart(context.Background(), &FillCartInput{CustomerID: uuid.New(), ProductID: uuid.New(), Qty: 0})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
	assert.Zero(t, fx.tm.commits+fx.tm.rollbacks)
}

func TestFillCart_UnknownCustomer(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	customerID := uuid.New()

	fx.repos.customers.On("GetByID", ctx, customerID).Return(nil, nil)

	_, err := fx.svc.FillCart(ctx, &FillCartInput{CustomerID: customerID, ProductID: uuid.New(), Qty: 1})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestDeleteCartItem_RestoresStock(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	keep, drop := line(uuid.New(), 1, 300, 0), line(uuid.New(), 4, 250, 1)
	cart := openCart(uuid.New(), keep, drop)

	fx.repos.orders.On("GetForUpdate", ctx, cart.ID).Return(cart, nil)
	fx.repos.items.On("Delete", ctx, drop.ID).Return(nil)
	fx.repos.products.On("AtomicIncrementQuantity", ctx, drop.ProductID, 4).Return(nil)
	fx.repos.orders.On("Update", ctx, mock.MatchedBy(func(o *entity.Order) bool {
		return o.Total == 300 && len(o.Cart) == 1
	})).Return(nil)
	fx.repos.orders.On("GetWithCart", ctx, cart.ID).Return(cart, nil)

	_, err := fx.svc.DeleteCartItem(ctx, cart.ID, 1)
	require.NoError(t, err)
	fx.repos.assertExpectations(t)
}

func TestDeleteCartItem_IndexOutOfRange(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	cart := openCart(uuid.New(), line(uuid.New(), 1, 300, 0))

	fx.repos.orders.On("GetForUpdate", ctx, cart.ID).Return(cart, nil)

	for _, idx := range []int{-1, 1, 7} {
		_, err := fx.svc.DeleteCartItem(ctx, cart.ID, idx)
		assert.ErrorIs(t, err, apperror.ErrCartItem, "index %d", idx)
	}
	fx.repos.products.AssertNotCalled(t, "AtomicIncrementQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteCartItem_BilledOrder(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	order := openCart(uuid.New(), line(uuid.New(), 1, 300, 0))
	order.Status = enum.OrderStatusBilled

	fx.repos.orders.On("GetForUpdate", ctx, order.ID).Return(order, nil)

	_, err := fx.svc.DeleteCartItem(ctx, order.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrCartNotOpen)
}

// expectCheckout wires the calls shared by successful checkouts.
func expectCheckout(fx *orderFixture, ctx context.Context, cart *entity.Order, customer *entity.Customer, userID uuid.UUID) {
	fx.repos.orders.On("GetForUpdate", ctx, cart.ID).Return(cart, nil)
	fx.repos.customers.On("GetByID", ctx, customer.ID).Return(customer, nil)
	products := make([]entity.Product, 0, len(cart.Cart))
	for _, item := range cart.Cart {
		products = append(products, entity.Product{ID: item.ProductID, Name: "Item"})
	}
	fx.repos.products.On("GetByIDs", ctx, mock.Anything).Return(products, nil)
	fx.repos.users.On("GetByID", ctx, userID).Return(&entity.User{ID: userID, Name: "Cashier"}, nil)
	fx.repos.orders.On("GetWithCart", ctx, cart.ID).Return(cart, nil)
}

func TestCheckout_PartialPaymentAddsUdhar(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	customer := &entity.Customer{ID: uuid.New(), Name: "Bilal", Udhar: 300}
	cart := openCart(customer.ID, line(uuid.New(), 2, 500, 0), line(uuid.New(), 1, 250, 1))

	expectCheckout(fx, ctx, cart, customer, userID)
	fx.repos.customers.On("AdjustUdhar", ctx, customer.ID, int64(250)).Return(true, nil)
	fx.repos.transactions.On("Create", ctx, mock.MatchedBy(func(tx *entity.Transaction) bool {
		return tx.Type == enum.TransactionSale && tx.Amount == 1000 && *tx.OrderID == cart.ID
	})).Return(nil)
	fx.repos.orders.On("Update", ctx, mock.MatchedBy(func(o *entity.Order) bool {
		return o.Status == enum.OrderStatusBilled && o.Total == 1250 && o.Paid == 1000 && o.Due == 250 && o.Bill != nil
	})).Return(nil)

	out, err := fx.svc.Checkout(ctx, &CheckoutInput{UserID: userID, OrderID: cart.ID, CustomerID: &customer.ID, Payment: 10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.Change)
	assert.Equal(t, int64(550), customer.Udhar)
	assert.True(t, fx.store.has("bills/bill-INV-20260314-ABCDEF12-2026-03-14.pdf"))
	fx.repos.assertExpectations(t)
}

func TestCheckout_OverpaymentSettlesOldUdharAndGivesChange(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	customer := &entity.Customer{ID: uuid.New(), Name: "Sana", Udhar: 300}
	cart := openCart(customer.ID, line(uuid.New(), 2, 500, 0), line(uuid.New(), 1, 250, 1))

	expectCheckout(fx, ctx, cart, customer, userID)
	fx.repos.customers.On("AdjustUdhar", ctx, customer.ID, int64(-300)).Return(true, nil)
	fx.repos.transactions.On("Create", ctx, mock.MatchedBy(func(tx *entity.Transaction) bool {
		return tx.Amount == 1550
	})).Return(nil)
	fx.repos.orders.On("Update", ctx, mock.MatchedBy(func(o *entity.Order) bool {
		return o.Paid == 1550 && o.Due == 0
	})).Return(nil)

	out, err := fx.svc.Checkout(ctx, &CheckoutInput{UserID: userID, OrderID: cart.ID, Payment: 20})
	require.NoError(t, err)
	assert.InDelta(t, 4.50, out.Change, 0.001)
	assert.Equal(t, int64(0), customer.Udhar)
	fx.repos.assertExpectations(t)
}

func TestCheckout_ZeroPaymentRecordsNoSale(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	customer := &entity.Customer{ID: uuid.New(), Name: "Hina"}
	cart := openCart(customer.ID, line(uuid.New(), 1, 800, 0))

	expectCheckout(fx, ctx, cart, customer, userID)
	fx.repos.customers.On("AdjustUdhar", ctx, customer.ID, int64(800)).Return(true, nil)
	fx.repos.orders.On("Update", ctx, mock.Anything).Return(nil)

	_, err := fx.svc.Checkout(ctx, &CheckoutInput{UserID: userID, OrderID: cart.ID, Payment: 0})
	require.NoError(t, err)
	fx.repos.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("negative payment", func(t *testing.T) {
		fx := newOrderFixture()
		_, err := fx.svc.Checkout(ctx, &CheckoutInput{OrderID: uuid.New(), Payment: -1})
		assert.Equal(t, 400, apperror.GetAppError(err).Code)
	})

	t.Run("already billed", func(t *testing.T) {
		fx := newOrderFixture()
		order := openCart(uuid.New(), line(uuid.New(), 1, 100, 0))
		order.Status = enum.OrderStatusBilled
		fx.repos.orders.On("GetForUpdate", ctx, order.ID).Return(order, nil)

		_, err := fx.svc.Checkout(ctx, &CheckoutInput{OrderID: order.ID, Payment: 1})
		assert.ErrorIs(t, err, apperror.ErrCartNotOpen)
	})

	t.Run("empty cart", func(t *testing.T) {
		fx := newOrderFixture()
		order := openCart(uuid.New())
		fx.repos.orders.On("GetForUpdate", ctx, order.ID).Return(order, nil)

		_, err := fx.svc.Checkout(ctx, &CheckoutInput{OrderID: order.ID, Payment: 1})
		assert.ErrorIs(t, err, apperror.ErrEmptyCart)
	})

	t.Run("wrong customer", func(t *testing.T) {
		fx := newOrderFixture()
		order := openCart(uuid.New(), line(uuid.New(), 1, 100, 0))
		other := uuid.New()
		fx.repos.orders.On("GetForUpdate", ctx, order.ID).Return(order, nil)

		_, err := fx.svc.Checkout(ctx, &CheckoutInput{OrderID: order.ID, CustomerID: &other, Payment: 1})
		assert.Equal(t, 400, apperror.GetAppError(err).Code)
	})
}

func TestCheckout_FailureRemovesStoredBill(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	customer := &entity.Customer{ID: uuid.New(), Name: "Omar"}
	cart := openCart(customer.ID, line(uuid.New(), 1, 800, 0))

	expectCheckout(fx, ctx, cart, customer, userID)
	fx.repos.customers.On("AdjustUdhar", ctx, customer.ID, int64(300)).Return(true, nil)
	fx.repos.transactions.On("Create", ctx, mock.Anything).Return(nil)
	fx.repos.orders.On("Update", ctx, mock.Anything).Return(errors.New("connection reset"))

	_, err := fx.svc.Checkout(ctx, &CheckoutInput{UserID: userID, OrderID: cart.ID, Payment: 5})
	require.Error(t, err)
	assert.Equal(t, 1, fx.tm.rollbacks)
	assert.Zero(t, fx.store.len())
}

func TestDeleteOrder_CartRestoresStock(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	productID := uuid.New()
	cart := openCart(uuid.New(), line(productID, 2, 100, 0), line(productID, 3, 100, 1))

	fx.repos.orders.On("GetForUpdate", ctx, cart.ID).Return(cart, nil)
	fx.repos.products.On("AtomicIncrementBatch", ctx, map[uuid.UUID]int{productID: 5}).Return(nil)
	fx.repos.items.On("DeleteByOrderID", ctx, cart.ID).Return(nil)
	fx.repos.orders.On("Delete", ctx, cart.ID).Return(nil)

	require.NoError(t, fx.svc.DeleteOrder(ctx, cart.ID))
	fx.repos.assertExpectations(t)
}

func TestDeleteOrder_BilledRemovesBillOnly(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	key := "bill-INV-1-2026-03-14.pdf"
	require.NoError(t, fx.store.Put(ctx, "bills/", key, []byte("%PDF"), "application/pdf"))

	order := openCart(uuid.New(), line(uuid.New(), 1, 100, 0))
	order.Status = enum.OrderStatusBilled
	order.Bill = &key

	fx.repos.orders.On("GetForUpdate", ctx, order.ID).Return(order, nil)
	fx.repos.orders.On("Delete", ctx, order.ID).Return(nil)

	require.NoError(t, fx.svc.DeleteOrder(ctx, order.ID))
	assert.False(t, fx.store.has("bills/"+key))
	fx.repos.products.AssertNotCalled(t, "AtomicIncrementBatch", mock.Anything, mock.Anything)
	fx.repos.transactions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestReleaseAbandonedCarts(t *testing.T) {
	fx := newOrderFixture()
	ctx := context.Background()
	productID := uuid.New()
	stale := openCart(uuid.New(), line(productID, 2, 100, 0))
	stale.UpdatedAt = billedAt.Add(-48 * time.Hour)
	touched := openCart(uuid.New(), line(productID, 1, 100, 0))
	touched.UpdatedAt = billedAt.Add(-30 * time.Hour)
	fresh := *touched
	fresh.UpdatedAt = billedAt.Add(-time.Minute)

	fx.repos.orders.On("ListAbandonedCarts", ctx, billedAt.Add(-24*time.Hour)).
		Return([]entity.Order{*stale, *touched}, nil)
	fx.repos.orders.On("GetForUpdate", ctx, stale.ID).Return(stale, nil)
	fx.repos.orders.On("GetForUpdate", ctx, touched.ID).Return(&fresh, nil)
	fx.repos.products.On("AtomicIncrementBatch", ctx, map[uuid.UUID]int{productID: 2}).Return(nil)
	fx.repos.orders.On("Update", ctx, mock.MatchedBy(func(o *entity.Order) bool {
		return o.ID == stale.ID && o.Status == enum.OrderStatusCancelled
	})).Return(nil)

	n, err := fx.svc.ReleaseAbandonedCarts(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	fx.repos.assertExpectations(t)
}

func TestListOrders_RejectsUnknownStatus(t *testing.T) {
	fx := newOrderFixture()

	_, _, err := fx.svc.ListOrders(context.Background(), &ListOrdersInput{Status: "shipped"})
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}
