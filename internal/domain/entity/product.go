package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/pkg/money"
	"gorm.io/gorm"
)

// Product is a catalogue item with its on-hand stock
type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name          string         `gorm:"size:255;not null;index" json:"name"`
	Category      string         `gorm:"size:255;index" json:"category"`
	Price         int64          `gorm:"default:0" json:"-"` // Stored in cents
	PurchasePrice int64          `gorm:"default:0" json:"-"` // Stored in cents
	Discount      int64          `gorm:"default:0" json:"-"` // Flat amount off each unit, in cents
	StockQty      int            `gorm:"default:0;check:stock_qty >= 0" json:"stockQty"`
	LowStockAlert int            `gorm:"default:0" json:"lowStockAlert"`
	CreatedBy     uuid.UUID      `gorm:"type:uuid;index" json:"createdBy"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// SalePrice is the unit price after the per-unit discount.
func (p *Product) SalePrice() int64 {
	return money.ApplyDiscount(p.Price, p.Discount)
}

// IsLowStock reports whether stock has fallen to the alert level.
func (p *Product) IsLowStock() bool {
	return p.StockQty <= p.LowStockAlert
}

// MarshalJSON converts cents to decimals for API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		LegacyID      uuid.UUID `json:"_id"`
		Price         float64   `json:"price"`
		PurchasePrice float64   `json:"purchasePrice"`
		Discount      float64   `json:"discount"`
		SalePrice     float64   `json:"salePrice"`
		LowStock      bool      `json:"lowStock"`
	}{
		Alias:         Alias(p),
		LegacyID:      p.ID,
		Price:         money.FromCents(p.Price),
		PurchasePrice: money.FromCents(p.PurchasePrice),
		Discount:      money.FromCents(p.Discount),
		SalePrice:     money.FromCents(p.SalePrice()),
		LowStock:      p.IsLowStock(),
	})
}
