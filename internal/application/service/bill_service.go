package service

import (
	"context"
	"strings"
	"time"

	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/infrastructure/storage"
	"github.com/sangkips/pos-api/pkg/bill"
	"github.com/sangkips/pos-api/pkg/utils"
)

// ObjectStore is the subset of the blob store used by services.
type ObjectStore interface {
	Put(ctx context.Context, prefix, name string, data []byte, contentType string) error
	Delete(ctx context.Context, prefix, name string) error
}

// BillService renders bill PDFs and keeps them in storage
type BillService struct {
	store   ObjectStore
	shop    config.StoreConfig
	baseURL string
	loc     *time.Location
}

// NewBillService creates a new bill service. baseURL is the public prefix of
// stored bills; when empty the API's own /bills route is used.
func NewBillService(store ObjectStore, shop config.StoreConfig, baseURL string) *BillService {
	if baseURL == "" {
		baseURL = "/bills"
	}
	return &BillService{
		store:   store,
		shop:    shop,
		baseURL: strings.TrimRight(baseURL, "/"),
		loc:     shop.Location(),
	}
}

// Key returns the object name a billed order is stored under.
func (s *BillService) Key(order *entity.Order) string {
	billedAt := time.Now()
	if order.BilledAt != nil {
		billedAt = *order.BilledAt
	}
	return utils.BillKey(order.InvoiceNo, billedAt.In(s.loc))
}

// URL returns the public address of a stored bill.
func (s *BillService) URL(key string) string {
	return s.baseURL + "/" + key
}

// Compose maps a billed order onto the printable bill. Cart lines must carry their product.
func (s *BillService) Compose(order *entity.Order, cashier string, udhar int64) *bill.Bill {
	b := &bill.Bill{
		Store: bill.Store{
			Name:    s.shop.Name,
			Address: s.shop.Address,
			Phone:   s.shop.Phone,
		},
		Currency:  s.shop.Currency,
		InvoiceNo: order.InvoiceNo,
		Cashier:   cashier,
		Total:     order.Total,
		Paid:      order.Paid,
		Due:       order.Due,
		Udhar:     udhar,
		QRText:    s.URL(s.Key(order)),
	}
	if order.BilledAt != nil {
		b.Date = order.BilledAt.In(s.loc)
	}
	if order.Customer != nil {
		b.Customer = order.Customer.Name
	}
	for _, item := range order.Cart {
		b.Lines = append(b.Lines, bill.Line{
			Name:      productName(item.Product),
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		})
	}
	return b
}

// Publish renders b and stores it under key.
func (s *BillService) Publish(ctx context.Context, key string, b *bill.Bill) error {
	pdf, err := bill.Render(b)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, storage.BillsPrefix, key, pdf, "application/pdf")
}

// Remove deletes a stored bill.
func (s *BillService) Remove(ctx context.Context, key string) error {
	return s.store.Delete(ctx, storage.BillsPrefix, key)
}

func productName(p *entity.Product) string {
	if p == nil || p.Name == "" {
		return "Product"
	}
	return p.Name
}
