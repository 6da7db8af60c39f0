package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/daterange"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domainRepo.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) ProductSales(ctx context.Context, productID uuid.UUID, rng *daterange.Range) (int64, int64, error) {
	var row struct {
		Sold    int64
		Revenue int64
	}
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("COALESCE(SUM(order_items.qty), 0) AS sold, COALESCE(SUM(order_items.total), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Where("order_items.product_id = ? AND orders.status = ?", productID, enum.OrderStatusBilled).
		Scopes(InRange("orders.billed_at", rng)).
		Scan(&row).Error
	return row.Sold, row.Revenue, err
}

func (r *reportRepository) SalesSummary(ctx context.Context, granularity string, rng *daterange.Range, tz string) ([]entity.SalesBucket, error) {
	switch granularity {
	case domainRepo.GranularityHour, domainRepo.GranularityDay, domainRepo.GranularityWeek, domainRepo.GranularityMonth:
	default:
		return nil, fmt.Errorf("unsupported granularity %q", granularity)
	}

	var buckets []entity.SalesBucket
	err := r.db.WithContext(ctx).
		Model(&entity.Transaction{}).
		Select("date_trunc(?, created_at AT TIME ZONE ?) AS period, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count", granularity, tz).
		Where("type = ?", enum.TransactionSale).
		Scopes(InRange("created_at", rng)).
		Group("period").
		Order("period ASC").
		Scan(&buckets).Error
	return buckets, err
}

func (r *reportRepository) LedgerTotals(ctx context.Context, rng *daterange.Range) (*entity.LedgerTotals, error) {
	var rows []struct {
		Type  enum.TransactionType
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Scopes(InRange("created_at", rng)).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := &entity.LedgerTotals{}
	for _, row := range rows {
		switch row.Type {
		case enum.TransactionSale:
			totals.Sales = row.Total
		case enum.TransactionExpense:
			totals.Expenses = row.Total
		case enum.TransactionInvestment:
			totals.Investments = row.Total
		}
	}
	return totals, nil
}

func (r *reportRepository) BilledOrderCount(ctx context.Context, rng *daterange.Range) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("status = ?", enum.OrderStatusBilled).
		Scopes(InRange("billed_at", rng)).
		Count(&count).Error
	return count, err
}
