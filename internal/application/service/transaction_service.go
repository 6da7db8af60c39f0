package service

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/infrastructure/storage"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/export"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sangkips/pos-api/pkg/money"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/sangkips/pos-api/pkg/utils"
	"go.uber.org/zap"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// TransactionService handles the sales, expense and investment ledger
type TransactionService struct {
	txRepo        repository.TransactionRepository
	reportRepo    repository.ReportRepository
	store         ObjectStore
	uploadMaxSize int64
	loc           *time.Location
	now           Clock
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	txRepo repository.TransactionRepository,
	reportRepo repository.ReportRepository,
	store ObjectStore,
	uploadMaxSize int64,
	loc *time.Location,
) *TransactionService {
	return &TransactionService{
		txRepo:        txRepo,
		reportRepo:    reportRepo,
		store:         store,
		uploadMaxSize: uploadMaxSize,
		loc:           loc,
		now:           time.Now,
	}
}

// ProofImage is an uploaded receipt photo
type ProofImage struct {
	Filename string
	Data     []byte
}

// CreateTransactionInput represents a manual ledger entry
type CreateTransactionInput struct {
	UserID      uuid.UUID
	Type        string
	Description string
	Amount      float64
	Proof       *ProofImage
}

// CreateTransaction records a ledger row, storing the proof image first when one is attached
func (s *TransactionService) CreateTransaction(ctx context.Context, input *CreateTransactionInput) (*entity.Transaction, error) {
	txType := enum.TransactionType(strings.ToLower(input.Type))
	if !txType.IsValid() {
		return nil, apperror.NewBadRequestError("Type must be sale, expense or investment")
	}
	amount := money.ToCents(input.Amount)
	if amount <= 0 {
		return nil, apperror.NewBadRequestError("Amount must be greater than zero")
	}

	tx := &entity.Transaction{
		Type:        txType,
		Description: strings.TrimSpace(input.Description),
		Amount:      amount,
		CreatedBy:   input.UserID,
	}

	if input.Proof != nil {
		key, err := s.storeProof(ctx, input.Proof)
		if err != nil {
			return nil, err
		}
		tx.ProofImage = &key
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		if tx.ProofImage != nil {
			_ = s.store.Delete(ctx, storage.UploadsPrefix, *tx.ProofImage)
		}
		return nil, err
	}

	metrics.LedgerRecorded(string(txType), amount)
	return tx, nil
}

func (s *TransactionService) storeProof(ctx context.Context, proof *ProofImage) (string, error) {
	if len(proof.Data) == 0 {
		return "", apperror.NewBadRequestError("Proof image is empty")
	}
	if s.uploadMaxSize > 0 && int64(len(proof.Data)) > s.uploadMaxSize {
		return "", apperror.NewBadRequestError("Proof image is too large")
	}

	contentType := http.DetectContentType(proof.Data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", apperror.NewBadRequestError("Proof must be an image")
	}
	if e := strings.ToLower(filepath.Ext(proof.Filename)); e == ".jpeg" || e == ".jpg" {
		ext = e
	}

	key := utils.UploadKey(ext, s.now().In(s.loc))
	if err := s.store.Put(ctx, storage.UploadsPrefix, key, proof.Data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// LedgerFilter selects ledger rows by type and date range
type LedgerFilter struct {
	Pagination *pagination.PaginationParams
	Type       string
	Range      RangeInput
}

func (s *TransactionService) params(f *LedgerFilter) (*repository.TransactionFilterParams, error) {
	params := &repository.TransactionFilterParams{Pagination: f.Pagination}
	if f.Type != "" {
		txType := enum.TransactionType(strings.ToLower(f.Type))
		if !txType.IsValid() {
			return nil, apperror.NewBadRequestError("Type must be sale, expense or investment")
		}
		params.Type = txType
	}
	rng, err := resolveRange(f.Range, s.loc, s.now())
	if err != nil {
		return nil, err
	}
	params.Range = rng
	return params, nil
}

// ListTransactions lists ledger rows newest first
func (s *TransactionService) ListTransactions(ctx context.Context, f *LedgerFilter) ([]entity.Transaction, int64, error) {
	params, err := s.params(f)
	if err != nil {
		return nil, 0, err
	}
	return s.txRepo.List(ctx, params)
}

// SalesOutput carries the matching rows and their sum
type SalesOutput struct {
	Transactions []entity.Transaction
	Total        int64
}

// GetSales returns the rows of one type in a range together with their total
func (s *TransactionService) GetSales(ctx context.Context, f *LedgerFilter) (*SalesOutput, error) {
	params, err := s.params(f)
	if err != nil {
		return nil, err
	}
	txs, _, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	total, err := s.txRepo.Sum(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SalesOutput{Transactions: txs, Total: total}, nil
}

// TodayTransactions returns every ledger row of the current store day
func (s *TransactionService) TodayTransactions(ctx context.Context) ([]entity.Transaction, error) {
	txs, _, err := s.ListTransactions(ctx, &LedgerFilter{Range: RangeInput{Name: "today"}})
	return txs, err
}

// DeleteTransaction removes a ledger row and its proof image
func (s *TransactionService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tx == nil {
		return apperror.NewNotFoundError("Transaction")
	}
	if err := s.txRepo.Delete(ctx, id); err != nil {
		return err
	}
	if tx.ProofImage != nil {
		if err := s.store.Delete(ctx, storage.UploadsPrefix, *tx.ProofImage); err != nil {
			zap.S().Warnw("failed to remove proof image", "transaction_id", id, "key", *tx.ProofImage, "error", err)
		}
	}
	return nil
}

// SalesSummary buckets sales by hour, day, week or month in the store timezone
func (s *TransactionService) SalesSummary(ctx context.Context, granularity string, in RangeInput) ([]entity.SalesBucket, error) {
	if granularity == "" {
		granularity = repository.GranularityDay
	}
	switch granularity {
	case repository.GranularityHour, repository.GranularityDay, repository.GranularityWeek, repository.GranularityMonth:
	default:
		return nil, apperror.NewBadRequestError("Granularity must be hour, day, week or month")
	}

	rng, err := resolveRange(in, s.loc, s.now())
	if err != nil {
		return nil, err
	}

	buckets, err := s.reportRepo.SalesSummary(ctx, granularity, rng, s.loc.String())
	if err != nil {
		return nil, err
	}
	// Postgres hands back store wall-clock times without a zone.
	for i := range buckets {
		p := buckets[i].Period
		buckets[i].Period = time.Date(p.Year(), p.Month(), p.Day(), p.Hour(), p.Minute(), p.Second(), 0, s.loc)
	}
	return buckets, nil
}

// ExportOutput is a rendered download
type ExportOutput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders the filtered ledger as CSV or XLSX
func (s *TransactionService) Export(ctx context.Context, format string, f *LedgerFilter) (*ExportOutput, error) {
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatXLSX {
		return nil, apperror.NewBadRequestError("Format must be csv or xlsx")
	}

	params, err := s.params(&LedgerFilter{Type: f.Type, Range: f.Range})
	if err != nil {
		return nil, err
	}
	params.WithCreator = true

	txs, _, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	rows := s.exportRows(txs)

	var data []byte
	if format == export.FormatXLSX {
		data, err = export.XLSX("Transactions", rows, ledgerSummary(txs))
	} else {
		data, err = export.CSV(rows)
	}
	if err != nil {
		return nil, err
	}

	return &ExportOutput{
		Filename:    "transactions-" + s.now().In(s.loc).Format("2006-01-02") + "." + format,
		ContentType: export.ContentType(format),
		Data:        data,
	}, nil
}

func (s *TransactionService) exportRows(txs []entity.Transaction) []export.Row {
	rows := make([]export.Row, 0, len(txs))
	for _, tx := range txs {
		row := export.Row{
			Date:        tx.CreatedAt.In(s.loc).Format("2006-01-02 15:04"),
			Type:        tx.Type.String(),
			Description: tx.Description,
			Amount:      money.FromCents(tx.Amount),
		}
		if tx.OrderID != nil {
			row.OrderID = tx.OrderID.String()
		}
		if tx.Creator != nil {
			row.CreatedBy = tx.Creator.Name
		}
		if tx.ProofImage != nil {
			row.ProofImage = *tx.ProofImage
		}
		rows = append(rows, row)
	}
	return rows
}

func ledgerSummary(txs []entity.Transaction) []export.Summary {
	var totals entity.LedgerTotals
	for _, tx := range txs {
		switch tx.Type {
		case enum.TransactionSale:
			totals.Sales += tx.Amount
		case enum.TransactionExpense:
			totals.Expenses += tx.Amount
		case enum.TransactionInvestment:
			totals.Investments += tx.Amount
		}
	}
	return []export.Summary{
		{Label: "Sales", Value: money.FromCents(totals.Sales)},
		{Label: "Expenses", Value: money.FromCents(totals.Expenses)},
		{Label: "Investments", Value: money.FromCents(totals.Investments)},
		{Label: "Net", Value: money.FromCents(totals.Sales - totals.Expenses - totals.Investments)},
	}
}
