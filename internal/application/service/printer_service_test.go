package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeCfg() config.StoreConfig {
	return config.StoreConfig{Name: "Corner Store", Address: "12 Mall Road", Phone: "0300-0000000", Currency: "PKR", Timezone: "UTC"}
}

func billedOrder() *entity.Order {
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	key := "bill-INV-7-2026-02-01.pdf"
	return &entity.Order{
		ID:        uuid.New(),
		InvoiceNo: "INV-7",
		Status:    enum.OrderStatusBilled,
		Total:     2500,
		Paid:      2000,
		Due:       500,
		Bill:      &key,
		BilledAt:  &at,
		Customer:  &entity.Customer{Name: "Nadia", Udhar: 500},
		Creator:   &entity.User{Name: "Kamran"},
		Cart: []entity.OrderItem{
			{Qty: 2, UnitPrice: 1000, Total: 2000, Product: &entity.Product{Name: "Biscuits"}},
			{Qty: 1, UnitPrice: 500, Total: 500},
		},
	}
}

func newPrinterFixture(spooler JobSubmitter, autoPrint bool) (*PrinterService, *repos) {
	r := newRepos()
	bills := NewBillService(newMemStore(), storeCfg(), "https://pos.example.com/bills/")
	svc := NewPrinterService(spooler, r.orders, bills, storeCfg(), config.PrinterConfig{Width: 32, AutoPrint: autoPrint})
	return svc, r
}

func TestBuildReceipt(t *testing.T) {
	svc, _ := newPrinterFixture(nil, false)

	receipt := svc.BuildReceipt(billedOrder())
	assert.Equal(t, "Corner Store", receipt.Header.StoreName)
	assert.Equal(t, "2026-02-01 10:00", receipt.Date)
	assert.Equal(t, "Kamran", receipt.Cashier)
	assert.Equal(t, "Nadia", receipt.Customer)
	assert.Equal(t, 25.0, receipt.Total)
	assert.Equal(t, 5.0, receipt.Udhar)
	assert.Equal(t, "https://pos.example.com/bills/bill-INV-7-2026-02-01.pdf", receipt.BillURL)
	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "Product", receipt.Items[1].Name)
}

func TestFormatReceipt(t *testing.T) {
	svc, _ := newPrinterFixture(nil, false)

	data := FormatReceipt(svc.BuildReceipt(billedOrder()), 32)
	assert.True(t, bytes.HasPrefix(data, []byte{0x1B, '@'}))
	assert.Contains(t, string(data), "Biscuits")
	assert.Contains(t, string(data), "  2 x 10.00")
	assert.Contains(t, string(data), "Udhar balance:")
	assert.True(t, bytes.HasSuffix(data, []byte{0x1D, 'V', 0x01}))
}

func TestPrintOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("queues job", func(t *testing.T) {
		spooler := &fakeSpooler{}
		svc, r := newPrinterFixture(spooler, false)
		order := billedOrder()
		r.orders.On("GetWithCart", ctx, order.ID).Return(order, nil)

		receipt, err := svc.PrintOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-7", receipt.InvoiceNo)
		assert.Len(t, spooler.jobs, 1)
	})

	t.Run("printer disabled returns receipt", func(t *testing.T) {
		svc, r := newPrinterFixture(nil, false)
		order := billedOrder()
		r.orders.On("GetWithCart", ctx, order.ID).Return(order, nil)

		receipt, err := svc.PrintOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.NotNil(t, receipt)
	})

	t.Run("busy printer", func(t *testing.T) {
		svc, r := newPrinterFixture(&fakeSpooler{err: errors.New("too many goroutines blocked on submit or Nonblocking is set")}, false)
		order := billedOrder()
		r.orders.On("GetWithCart", ctx, order.ID).Return(order, nil)

		_, err := svc.PrintOrder(ctx, order.ID)
		assert.Equal(t, 503, apperror.GetAppError(err).Code)
	})

	t.Run("open cart", func(t *testing.T) {
		svc, r := newPrinterFixture(&fakeSpooler{}, false)
		order := billedOrder()
		order.Status = enum.OrderStatusCart
		r.orders.On("GetWithCart", ctx, order.ID).Return(order, nil)

		_, err := svc.PrintOrder(ctx, order.ID)
		assert.Equal(t, 409, apperror.GetAppError(err).Code)
	})
}

func TestAutoPrint(t *testing.T) {
	off := &fakeSpooler{}
	svc, _ := newPrinterFixture(off, false)
	svc.AutoPrint(billedOrder())
	assert.Empty(t, off.jobs)

	on := &fakeSpooler{}
	svc, _ = newPrinterFixture(on, true)
	svc.AutoPrint(billedOrder())
	assert.Len(t, on.jobs, 1)
}
