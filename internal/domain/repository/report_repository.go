package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/pkg/daterange"
)

// Sales summary granularities
const (
	GranularityHour  = "hour"
	GranularityDay   = "day"
	GranularityWeek  = "week"
	GranularityMonth = "month"
)

// ReportRepository defines aggregation queries over orders and the ledger
type ReportRepository interface {
	// ProductSales sums quantity and revenue of a product over billed orders.
	ProductSales(ctx context.Context, productID uuid.UUID, rng *daterange.Range) (sold int64, revenue int64, err error)
	// SalesSummary buckets sale transactions by granularity in timezone tz.
	SalesSummary(ctx context.Context, granularity string, rng *daterange.Range, tz string) ([]entity.SalesBucket, error)
	LedgerTotals(ctx context.Context, rng *daterange.Range) (*entity.LedgerTotals, error)
	BilledOrderCount(ctx context.Context, rng *daterange.Range) (int64, error)
}
