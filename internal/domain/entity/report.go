package entity

import (
	"encoding/json"
	"time"

	"github.com/sangkips/pos-api/pkg/money"
)

// SalesBucket is one point of the sales-summary series. Amounts are in cents.
type SalesBucket struct {
	Period time.Time `json:"period"`
	Total  int64     `json:"-"`
	Count  int64     `json:"count"`
}

func (b SalesBucket) MarshalJSON() ([]byte, error) {
	type Alias SalesBucket
	return json.Marshal(&struct {
		Alias
		Total float64 `json:"total"`
	}{Alias: Alias(b), Total: money.FromCents(b.Total)})
}

// ProductSales aggregates billed quantities for one product.
type ProductSales struct {
	ProductID    string `json:"productId"`
	Sold         int64  `json:"sold"`
	Revenue      int64  `json:"-"`
	StockQtyLeft int    `json:"stockQtyLeft"`
}

func (p ProductSales) MarshalJSON() ([]byte, error) {
	type Alias ProductSales
	return json.Marshal(&struct {
		Alias
		Revenue float64 `json:"revenue"`
	}{Alias: Alias(p), Revenue: money.FromCents(p.Revenue)})
}

// LedgerTotals sums transactions by type. Amounts are in cents.
type LedgerTotals struct {
	Sales       int64
	Expenses    int64
	Investments int64
}
