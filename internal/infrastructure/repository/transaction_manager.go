package repository

import (
	"context"
	"fmt"

	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type gormTransactionManager struct {
	db *gorm.DB
}

// gormRepositoryFactory hands out repositories bound to one open transaction.
type gormRepositoryFactory struct {
	tx *gorm.DB
}

func (f *gormRepositoryFactory) Products() domainRepo.ProductRepository {
	return NewProductRepository(f.tx)
}

func (f *gormRepositoryFactory) Customers() domainRepo.CustomerRepository {
	return NewCustomerRepository(f.tx)
}

func (f *gormRepositoryFactory) Orders() domainRepo.OrderRepository {
	return NewOrderRepository(f.tx)
}

func (f *gormRepositoryFactory) OrderItems() domainRepo.OrderItemRepository {
	return NewOrderItemRepository(f.tx)
}

func (f *gormRepositoryFactory) Transactions() domainRepo.TransactionRepository {
	return NewTransactionRepository(f.tx)
}

func (f *gormRepositoryFactory) Users() domainRepo.UserRepository {
	return NewUserRepository(f.tx)
}

// NewTransactionManager creates a transaction manager over db
func NewTransactionManager(db *gorm.DB) domainRepo.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute runs fn inside a single database transaction.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repos domainRepo.RepositoryFactory) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&gormRepositoryFactory{tx: tx}); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("transaction rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
