package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/daterange"
	"github.com/sangkips/pos-api/pkg/email"
	"github.com/sangkips/pos-api/pkg/export"
	"github.com/sangkips/pos-api/pkg/money"
)

// ReportMailer delivers the end-of-day email; email.EmailService satisfies it.
type ReportMailer interface {
	SendDailyReport(to []string, report email.DailyReport, attachment *email.Attachment) error
}

// ReportService builds the dashboard figures and the daily report
type ReportService struct {
	reportRepo   repository.ReportRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	transactions *TransactionService
	mailer       ReportMailer
	recipients   []string
	shop         config.StoreConfig
	loc          *time.Location
	now          Clock
}

// NewReportService creates a new report service. mailer may be nil when SMTP is not configured.
func NewReportService(
	reportRepo repository.ReportRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	transactions *TransactionService,
	mailer ReportMailer,
	recipients []string,
	shop config.StoreConfig,
) *ReportService {
	return &ReportService{
		reportRepo:   reportRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		transactions: transactions,
		mailer:       mailer,
		recipients:   recipients,
		shop:         shop,
		loc:          shop.Location(),
		now:          time.Now,
	}
}

// Summary is the dashboard view of a period
type Summary struct {
	Sales        float64          `json:"sales"`
	Expenses     float64          `json:"expenses"`
	Investments  float64          `json:"investments"`
	Net          float64          `json:"net"`
	BilledOrders int64            `json:"billedOrders"`
	UdharTotal   float64          `json:"udharTotal"`
	LowStock     []entity.Product `json:"lowStock"`
}

// GetSummary totals the ledger over a range and lists outstanding credit and low stock
func (s *ReportService) GetSummary(ctx context.Context, in RangeInput) (*Summary, error) {
	rng, err := resolveRange(in, s.loc, s.now())
	if err != nil {
		return nil, err
	}
	return s.summary(ctx, rng)
}

func (s *ReportService) summary(ctx context.Context, rng *daterange.Range) (*Summary, error) {
	totals, err := s.reportRepo.LedgerTotals(ctx, rng)
	if err != nil {
		return nil, err
	}
	orders, err := s.reportRepo.BilledOrderCount(ctx, rng)
	if err != nil {
		return nil, err
	}
	udhar, err := s.customerRepo.TotalUdhar(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.productRepo.GetLowStock(ctx)
	if err != nil {
		return nil, err
	}
	if lowStock == nil {
		lowStock = []entity.Product{}
	}

	return &Summary{
		Sales:        money.FromCents(totals.Sales),
		Expenses:     money.FromCents(totals.Expenses),
		Investments:  money.FromCents(totals.Investments),
		Net:          money.FromCents(totals.Sales - totals.Expenses - totals.Investments),
		BilledOrders: orders,
		UdharTotal:   money.FromCents(udhar),
		LowStock:     lowStock,
	}, nil
}

// SendDailyReport emails today's summary with the day's ledger attached as xlsx.
// It is a no-op without a mailer or recipients.
func (s *ReportService) SendDailyReport(ctx context.Context) error {
	if s.mailer == nil || len(s.recipients) == 0 {
		return nil
	}

	now := s.now().In(s.loc)
	rng, err := daterange.Resolve(daterange.Today, "", "", s.loc, now)
	if err != nil {
		return err
	}

	sum, err := s.summary(ctx, rng)
	if err != nil {
		return err
	}

	attachment, err := s.transactions.Export(ctx, export.FormatXLSX, &LedgerFilter{Range: RangeInput{Name: daterange.Today}})
	if err != nil {
		return err
	}

	report := email.DailyReport{
		StoreName:   s.shop.Name,
		Date:        now.Format("2006-01-02"),
		Currency:    s.shop.Currency,
		Sales:       fmt.Sprintf("%.2f", sum.Sales),
		Expenses:    fmt.Sprintf("%.2f", sum.Expenses),
		Investments: fmt.Sprintf("%.2f", sum.Investments),
		Orders:      int(sum.BilledOrders),
		UdharTotal:  fmt.Sprintf("%.2f", sum.UdharTotal),
	}
	for _, p := range sum.LowStock {
		report.LowStock = append(report.LowStock, fmt.Sprintf("%s (%d left)", p.Name, p.StockQty))
	}

	return s.mailer.SendDailyReport(s.recipients, report, &email.Attachment{
		Name: attachment.Filename,
		Data: attachment.Data,
	})
}
