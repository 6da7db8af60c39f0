package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sangkips/pos-api/pkg/money"
	"github.com/sangkips/pos-api/pkg/printer"
	"go.uber.org/zap"
)

// JobSubmitter queues raw printer jobs; printer.Spooler satisfies it.
type JobSubmitter interface {
	Submit(label string, data []byte) error
}

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	spooler   JobSubmitter
	orderRepo repository.OrderRepository
	bills     *BillService
	shop      config.StoreConfig
	width     int
	autoPrint bool
	loc       *time.Location
}

// NewPrinterService creates a new printer service. A nil spooler disables printing;
// receipts are still composed and returned.
func NewPrinterService(
	spooler JobSubmitter,
	orderRepo repository.OrderRepository,
	bills *BillService,
	shop config.StoreConfig,
	cfg config.PrinterConfig,
) *PrinterService {
	width := cfg.Width
	if width <= 0 {
		width = 32 // 58mm paper
	}
	return &PrinterService{
		spooler:   spooler,
		orderRepo: orderRepo,
		bills:     bills,
		shop:      shop,
		width:     width,
		autoPrint: cfg.AutoPrint,
		loc:       shop.Location(),
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool `json:"configured"`
	AutoPrint  bool `json:"autoPrint"`
	Width      int  `json:"width"`
}

// GetStatus returns the printer configuration.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.spooler != nil,
		AutoPrint:  s.autoPrint,
		Width:      s.width,
	}
}

// PrintOrder queues the receipt of a billed order and returns it.
func (s *PrinterService) PrintOrder(ctx context.Context, orderID uuid.UUID) (*entity.Receipt, error) {
	order, err := s.orderRepo.GetWithCart(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if order.IsCart() {
		return nil, apperror.NewConflictError("Order has not been billed yet")
	}

	receipt := s.BuildReceipt(order)
	if s.spooler == nil {
		return receipt, nil
	}
	if err := s.submit(order.InvoiceNo, receipt); err != nil {
		return receipt, apperror.NewAppError(503, "Printer is busy, try again")
	}
	return receipt, nil
}

// AutoPrint queues the receipt of a freshly billed order when auto printing is on.
// Failures are logged only; checkout has already succeeded.
func (s *PrinterService) AutoPrint(order *entity.Order) {
	if !s.autoPrint || s.spooler == nil {
		return
	}
	if err := s.submit(order.InvoiceNo, s.BuildReceipt(order)); err != nil {
		zap.S().Warnw("auto print skipped", "invoice", order.InvoiceNo, "error", err)
	}
}

func (s *PrinterService) submit(label string, receipt *entity.Receipt) error {
	if err := s.spooler.Submit(label, FormatReceipt(receipt, s.width)); err != nil {
		metrics.PrintJob("rejected")
		return err
	}
	metrics.PrintJob("queued")
	return nil
}

// BuildReceipt composes the printable receipt of an order loaded with its cart.
func (s *PrinterService) BuildReceipt(order *entity.Order) *entity.Receipt {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			StoreName: s.shop.Name,
			Address:   s.shop.Address,
			Phone:     s.shop.Phone,
		},
		InvoiceNo: order.InvoiceNo,
		Currency:  s.shop.Currency,
		Total:     money.FromCents(order.Total),
		Paid:      money.FromCents(order.Paid),
		Due:       money.FromCents(order.Due),
		Items:     make([]entity.ReceiptItem, 0, len(order.Cart)),
	}

	date := order.CreatedAt
	if order.BilledAt != nil {
		date = *order.BilledAt
	}
	receipt.Date = date.In(s.loc).Format("2006-01-02 15:04")

	if order.Customer != nil {
		receipt.Customer = order.Customer.Name
		receipt.Udhar = money.FromCents(order.Customer.Udhar)
	}
	if order.Creator != nil {
		receipt.Cashier = order.Creator.Name
	}
	if order.Bill != nil && s.bills != nil {
		receipt.BillURL = s.bills.URL(*order.Bill)
	}

	for _, item := range order.Cart {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      productName(item.Product),
			Qty:       item.Qty,
			UnitPrice: money.FromCents(item.UnitPrice),
			Total:     money.FromCents(item.Total),
		})
	}
	return receipt
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	t := printer.NewTicket(width)

	t.Align(printer.AlignCenter).
		Bold(true).
		Size(printer.SizeDouble).
		Line(r.Header.StoreName).
		Size(printer.SizeNormal).
		Bold(false)
	if r.Header.Address != "" {
		t.Line(r.Header.Address)
	}
	if r.Header.Phone != "" {
		t.Line(r.Header.Phone)
	}

	t.Align(printer.AlignLeft).
		Rule('-').
		Row("Invoice:", r.InvoiceNo).
		Row("Date:", r.Date)
	if r.Cashier != "" {
		t.Row("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		t.Row("Customer:", r.Customer)
	}
	t.Rule('-')

	for _, item := range r.Items {
		t.Item(item.Name, item.Qty, amountText(item.UnitPrice), amountText(item.Total))
	}

	t.Rule('-').
		Bold(true).
		Row("TOTAL "+r.Currency+":", amountText(r.Total)).
		Bold(false).
		Row("Paid:", amountText(r.Paid))
	if r.Due > 0 {
		t.Row("Due:", amountText(r.Due))
	}
	if r.Udhar > 0 {
		t.Row("Udhar balance:", amountText(r.Udhar))
	}
	t.Rule('-')

	t.Align(printer.AlignCenter)
	if r.BillURL != "" {
		t.QR(r.BillURL, 4)
	}
	t.Line("Thank you for shopping!").
		Align(printer.AlignLeft).
		Cut()

	return t.Bytes()
}

func amountText(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
