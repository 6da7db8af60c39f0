package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/money"
	"gorm.io/gorm"
)

// Order starts life as a customer's open cart and becomes a bill at checkout
type Order struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNo  string           `gorm:"size:100;unique;not null" json:"invoiceNo"`
	CustomerID uuid.UUID        `gorm:"type:uuid;not null;index" json:"customerId"`
	CreatedBy  uuid.UUID        `gorm:"type:uuid;index" json:"createdBy"`
	Status     enum.OrderStatus `gorm:"default:0;index" json:"status"`
	Total      int64            `gorm:"default:0" json:"-"` // Stored in cents
	Paid       int64            `gorm:"default:0" json:"-"` // Stored in cents
	Due        int64            `gorm:"default:0" json:"-"` // Stored in cents
	Bill       *string          `gorm:"size:255" json:"bill"`
	BilledAt   *time.Time       `gorm:"index" json:"billedAt,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Customer *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Creator  *User       `gorm:"foreignKey:CreatedBy" json:"-"`
	Cart     []OrderItem `gorm:"foreignKey:OrderID" json:"cart"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsCart reports whether the order still accepts changes.
func (o *Order) IsCart() bool {
	return o.Status == enum.OrderStatusCart
}

// CartTotal sums the line totals.
func (o *Order) CartTotal() int64 {
	var total int64
	for _, item := range o.Cart {
		total += item.Total
	}
	return total
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	if o.Cart == nil {
		o.Cart = []OrderItem{}
	}
	return json.Marshal(&struct {
		Alias
		LegacyID uuid.UUID `json:"_id"`
		Total    float64   `json:"total"`
		Paid     float64   `json:"paid"`
		Due      float64   `json:"due"`
	}{
		Alias:    Alias(o),
		LegacyID: o.ID,
		Total:    money.FromCents(o.Total),
		Paid:     money.FromCents(o.Paid),
		Due:      money.FromCents(o.Due),
	})
}

// OrderItem is one line of a cart. Position keeps lines in insertion order.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"orderId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	Position  int       `gorm:"not null;default:0" json:"-"`
	Qty       int       `gorm:"not null" json:"qty"`
	UnitPrice int64     `gorm:"not null" json:"-"` // Stored in cents
	Total     int64     `gorm:"not null" json:"-"` // Stored in cents
	CreatedAt time.Time `json:"createdAt"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i OrderItem) MarshalJSON() ([]byte, error) {
	type Alias OrderItem
	return json.Marshal(&struct {
		Alias
		LegacyID  uuid.UUID `json:"_id"`
		UnitPrice float64   `json:"unitPrice"`
		Total     float64   `json:"total"`
	}{
		Alias:     Alias(i),
		LegacyID:  i.ID,
		UnitPrice: money.FromCents(i.UnitPrice),
		Total:     money.FromCents(i.Total),
	})
}

// BeforeCreate generates a UUID before creating a new order item
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
