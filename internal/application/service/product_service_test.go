package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductFixture() (*ProductService, *repos, *fakeTxManager) {
	r := newRepos()
	tm := &fakeTxManager{repos: r}
	svc := NewProductService(tm, r.products, r.orders, r.reports, time.UTC)
	svc.now = fixedClock(time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC))
	return svc, r, tm
}

func TestCreateProduct_RecordsInvestment(t *testing.T) {
	svc, r, _ := newProductFixture()
	ctx := context.Background()

	r.products.On("Create", ctx, mock.MatchedBy(func(p *entity.Product) bool {
		return p.Price == 15050 && p.PurchasePrice == 12000 && p.StockQty == 10
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Product).ID = uuid.New()
	}).Return(nil)
	r.transactions.On("Create", ctx, mock.MatchedBy(func(tx *entity.Transaction) bool {
		return tx.Type == enum.TransactionInvestment && tx.Amount == 120000 && tx.ProductID != nil
	})).Return(nil)

	_, err := svc.CreateProduct(ctx, &CreateProductInput{Name: "Flour 10kg", Price: 150.5, PurchasePrice: 120, StockQty: 10})
	require.NoError(t, err)
	r.assertExpectations(t)
}

func TestCreateProduct_TotalBillOverridesAndZeroSkips(t *testing.T) {
	svc, r, _ := newProductFixture()
	ctx := context.Background()
	bill := 999.99

	r.products.On("Create", ctx, mock.Anything).Return(nil)
	r.transactions.On("Create", ctx, mock.MatchedBy(func(tx *entity.Transaction) bool {
		return tx.Amount == 99999
	})).Return(nil).Once()

	_, err := svc.CreateProduct(ctx, &CreateProductInput{Name: "Oil", Price: 10, PurchasePrice: 8, StockQty: 200, TotalBill: &bill})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, &CreateProductInput{Name: "Salt", Price: 1})
	require.NoError(t, err)
	r.transactions.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateProduct_Validation(t *testing.T) {
	svc, _, tm := newProductFixture()

	_, err := svc.CreateProduct(context.Background(), &CreateProductInput{Name: "X", Price: 1, Discount: 120})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, 422, appErr.Code)
	assert.Equal(t, "discount", appErr.Errors[0].Field)
	assert.Zero(t, tm.commits+tm.rollbacks)
}

func TestCreateProduct_FlatDiscount(t *testing.T) {
	svc, r, _ := newProductFixture()
	ctx := context.Background()

	r.products.On("Create", ctx, mock.MatchedBy(func(p *entity.Product) bool {
		return p.Price == 200000 && p.Discount == 15000 && p.SalePrice() == 185000
	})).Return(nil)

	_, err := svc.CreateProduct(ctx, &CreateProductInput{Name: "Kettle", Price: 2000, Discount: 150})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, &CreateProductInput{Name: "Cup", Price: 100, Discount: 100.01})
	require.Error(t, err)
	assert.Equal(t, "discount", apperror.GetAppError(err).Errors[0].Field)
	r.products.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateProduct_BlankName(t *testing.T) {
	svc, r, tm := newProductFixture()

	_, err := svc.CreateProduct(context.Background(), &CreateProductInput{Name: "   ", Price: 10})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
	r.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Zero(t, tm.commits+tm.rollbacks)
}

func TestDeleteProduct_InOpenCart(t *testing.T) {
	svc, r, _ := newProductFixture()
	ctx := context.Background()
	id := uuid.New()

	r.products.On("GetByID", ctx, id).Return(&entity.Product{ID: id}, nil)
	r.orders.On("ProductInOpenCart", ctx, id).Return(true, nil)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, id), apperror.ErrProductInUse)
	r.products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRestockProduct(t *testing.T) {
	svc, r, tm := newProductFixture()
	ctx := context.Background()
	id := uuid.New()
	newCost := 55.0

	r.products.On("GetByID", ctx, id).Return(&entity.Product{ID: id, Name: "Ghee", Price: 7000, PurchasePrice: 5000, StockQty: 3}, nil)
	r.products.On("Update", ctx, mock.MatchedBy(func(p *entity.Product) bool {
		return p.PurchasePrice == 5500
	})).Return(nil)
	r.products.On("AtomicIncrementQuantity", ctx, id, 12).Return(nil)
	r.transactions.On("Create", ctx, mock.MatchedBy(func(tx *entity.Transaction) bool {
		return tx.Type == enum.TransactionInvestment && tx.Amount == 66000
	})).Return(nil)

	product, err := svc.RestockProduct(ctx, &RestockInput{ProductID: id, StockQty: 12, PurchasePrice: &newCost})
	require.NoError(t, err)
	assert.Equal(t, 15, product.StockQty)
	assert.Equal(t, 1, tm.commits)
	r.assertExpectations(t)
}

func TestRestockProduct_RejectsZero(t *testing.T) {
	svc, _, _ := newProductFixture()

	_, err := svc.RestockProduct(context.Background(), &RestockInput{ProductID: uuid.New()})
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestProductSales(t *testing.T) {
	svc, r, _ := newProductFixture()
	ctx := context.Background()
	id := uuid.New()

	r.products.On("GetByID", ctx, id).Return(&entity.Product{ID: id, StockQty: 7}, nil)
	r.reports.On("ProductSales", ctx, id, mock.Anything).Return(int64(4), int64(2400), nil)

	sales, err := svc.ProductSales(ctx, id, RangeInput{Name: "thisMonth"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), sales.Sold)
	assert.Equal(t, int64(2400), sales.Revenue)
	assert.Equal(t, 7, sales.StockQtyLeft)
}

func TestProductSales_BadRange(t *testing.T) {
	svc, r, _ := newProductFixture()
	ctx := context.Background()
	id := uuid.New()
	r.products.On("GetByID", ctx, id).Return(&entity.Product{ID: id}, nil)

	_, err := svc.ProductSales(ctx, id, RangeInput{Name: "custom", Start: "2026-01-01"})
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}
