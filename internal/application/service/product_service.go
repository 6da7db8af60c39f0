package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sangkips/pos-api/pkg/money"
)

// ProductService handles catalogue and stock operations
type ProductService struct {
	txManager   repository.TransactionManager
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	reportRepo  repository.ReportRepository
	loc         *time.Location
	now         Clock
}

// NewProductService creates a new product service
func NewProductService(
	txManager repository.TransactionManager,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	reportRepo repository.ReportRepository,
	loc *time.Location,
) *ProductService {
	return &ProductService{
		txManager:   txManager,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		reportRepo:  reportRepo,
		loc:         loc,
		now:         time.Now,
	}
}

// CreateProductInput represents the create product input. Amounts are decimals.
type CreateProductInput struct {
	UserID        uuid.UUID
	Name          string
	Category      string
	Price         float64
	PurchasePrice float64
	Discount      float64 // flat amount off each unit
	StockQty      int
	LowStockAlert int
	// TotalBill overrides PurchasePrice*StockQty as the investment recorded for the opening stock.
	TotalBill *float64
}

// CreateProduct adds a product and books the opening stock as an investment
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Name cannot be empty")
	}
	if err := validateProductAmounts(money.ToCents(input.Price), money.ToCents(input.PurchasePrice), money.ToCents(input.Discount)); err != nil {
		return nil, err
	}
	if input.StockQty < 0 {
		return nil, apperror.NewBadRequestError("Stock quantity cannot be negative")
	}

	product := &entity.Product{
		Name:          name,
		Category:      strings.TrimSpace(input.Category),
		Price:         money.ToCents(input.Price),
		PurchasePrice: money.ToCents(input.PurchasePrice),
		Discount:      money.ToCents(input.Discount),
		StockQty:      input.StockQty,
		LowStockAlert: input.LowStockAlert,
		CreatedBy:     input.UserID,
	}

	investment := stockInvestment(product.PurchasePrice, input.StockQty, input.TotalBill)

	err := s.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		if err := repos.Products().Create(ctx, product); err != nil {
			return err
		}
		if investment <= 0 {
			return nil
		}
		return repos.Transactions().Create(ctx, &entity.Transaction{
			Type:        enum.TransactionInvestment,
			Description: fmt.Sprintf("Stock purchase: %s x%d", product.Name, input.StockQty),
			Amount:      investment,
			ProductID:   &product.ID,
			CreatedBy:   input.UserID,
		})
	})
	if err != nil {
		return nil, err
	}

	if investment > 0 {
		metrics.LedgerRecorded(string(enum.TransactionInvestment), investment)
	}
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	return s.productRepo.List(ctx, params)
}

// ListCategories returns the distinct product categories
func (s *ProductService) ListCategories(ctx context.Context) ([]string, error) {
	return s.productRepo.Categories(ctx)
}

// UpdateProductInput represents a partial catalogue update. Nil fields are left unchanged.
type UpdateProductInput struct {
	ID            uuid.UUID
	Name          *string
	Category      *string
	Price         *float64
	PurchasePrice *float64
	Discount      *float64
	LowStockAlert *int
}

// UpdateProduct edits the catalogue fields of a product. Stock moves only through carts and restocks.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewBadRequestError("Name cannot be empty")
		}
		product.Name = name
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		product.Price = money.ToCents(*input.Price)
	}
	if input.PurchasePrice != nil {
		product.PurchasePrice = money.ToCents(*input.PurchasePrice)
	}
	if input.Discount != nil {
		product.Discount = money.ToCents(*input.Discount)
	}
	if input.LowStockAlert != nil {
		product.LowStockAlert = *input.LowStockAlert
	}

	if err := validateProductAmounts(product.Price, product.PurchasePrice, product.Discount); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft deletes a product that is not sitting in an open cart
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}

	inCart, err := s.orderRepo.ProductInOpenCart(ctx, id)
	if err != nil {
		return err
	}
	if inCart {
		return apperror.ErrProductInUse
	}
	return s.productRepo.Delete(ctx, id)
}

// RestockInput represents a stock purchase
type RestockInput struct {
	UserID        uuid.UUID
	ProductID     uuid.UUID
	StockQty      int
	PurchasePrice *float64
	Price         *float64
	TotalBill     *float64
}

// RestockProduct adds stock and records the purchase as an investment
func (s *ProductService) RestockProduct(ctx context.Context, input *RestockInput) (*entity.Product, error) {
	if input.StockQty <= 0 {
		return nil, apperror.NewBadRequestError("Stock quantity must be greater than zero")
	}

	var restocked *entity.Product
	var investment int64

	err := s.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		product, err := repos.Products().GetByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return apperror.NewNotFoundError("Product")
		}

		if input.PurchasePrice != nil || input.Price != nil {
			if input.PurchasePrice != nil {
				product.PurchasePrice = money.ToCents(*input.PurchasePrice)
			}
			if input.Price != nil {
				product.Price = money.ToCents(*input.Price)
			}
			if err := validateProductAmounts(product.Price, product.PurchasePrice, product.Discount); err != nil {
				return err
			}
			if err := repos.Products().Update(ctx, product); err != nil {
				return err
			}
		}

		if err := repos.Products().AtomicIncrementQuantity(ctx, product.ID, input.StockQty); err != nil {
			return err
		}
		product.StockQty += input.StockQty

		investment = stockInvestment(product.PurchasePrice, input.StockQty, input.TotalBill)
		if investment > 0 {
			if err := repos.Transactions().Create(ctx, &entity.Transaction{
				Type:        enum.TransactionInvestment,
				Description: fmt.Sprintf("Restock: %s x%d", product.Name, input.StockQty),
				Amount:      investment,
				ProductID:   &product.ID,
				CreatedBy:   input.UserID,
			}); err != nil {
				return err
			}
		}

		restocked = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	if investment > 0 {
		metrics.LedgerRecorded(string(enum.TransactionInvestment), investment)
	}
	return restocked, nil
}

// ProductSales counts units sold and revenue of a product over billed orders in a range
func (s *ProductService) ProductSales(ctx context.Context, productID uuid.UUID, in RangeInput) (*entity.ProductSales, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	rng, err := resolveRange(in, s.loc, s.now())
	if err != nil {
		return nil, err
	}

	sold, revenue, err := s.reportRepo.ProductSales(ctx, productID, rng)
	if err != nil {
		return nil, err
	}

	return &entity.ProductSales{
		ProductID:    product.ID.String(),
		Sold:         sold,
		Revenue:      revenue,
		StockQtyLeft: product.StockQty,
	}, nil
}

// LowStock returns products at or below their alert level
func (s *ProductService) LowStock(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}

func stockInvestment(purchasePrice int64, qty int, totalBill *float64) int64 {
	if totalBill != nil {
		return money.ToCents(*totalBill)
	}
	return purchasePrice * int64(qty)
}

// validateProductAmounts checks cent amounts; the discount may not exceed the price.
func validateProductAmounts(price, purchasePrice, discount int64) error {
	var fields []apperror.FieldError
	if price < 0 {
		fields = append(fields, apperror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if purchasePrice < 0 {
		fields = append(fields, apperror.FieldError{Field: "purchasePrice", Message: "must not be negative"})
	}
	if discount < 0 || discount > price {
		fields = append(fields, apperror.FieldError{Field: "discount", Message: "must be between 0 and the price"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}
