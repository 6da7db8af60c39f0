package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new ledger repository
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	return r.db.WithContext(ctx).Omit("Creator").Create(tx).Error
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Transaction{}, "id = ?", id).Error
}

func (r *transactionRepository) filtered(ctx context.Context, params *domainRepo.TransactionFilterParams) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.Transaction{})
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	return query.Scopes(InRange("created_at", params.Range))
}

func (r *transactionRepository) List(ctx context.Context, params *domainRepo.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	var txs []entity.Transaction
	var total int64

	query := r.filtered(ctx, params)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Scopes(Paginate(params.Pagination))
	if params.WithCreator {
		query = query.Preload("Creator", unscoped)
	}
	err := query.Order("created_at DESC, id DESC").Find(&txs).Error
	return txs, total, err
}

func (r *transactionRepository) Sum(ctx context.Context, params *domainRepo.TransactionFilterParams) (int64, error) {
	var total int64
	err := r.filtered(ctx, params).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
