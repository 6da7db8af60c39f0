package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/pkg/money"
	"gorm.io/gorm"
)

// Customer is a buyer who may carry an udhar (credit) balance
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null;index" json:"name"`
	Address   string         `gorm:"type:text" json:"address"`
	Contact   string         `gorm:"size:50;index" json:"contact"`
	Udhar     int64          `gorm:"default:0;check:udhar >= 0" json:"-"` // Stored in cents
	CreatedBy uuid.UUID      `gorm:"type:uuid;index" json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// OrderIDs is filled on detail reads.
	OrderIDs []uuid.UUID `gorm:"-" json:"orders,omitempty"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// MarshalJSON converts the udhar balance to a decimal
func (c Customer) MarshalJSON() ([]byte, error) {
	type Alias Customer
	return json.Marshal(&struct {
		Alias
		LegacyID uuid.UUID `json:"_id"`
		Udhar    float64   `json:"udhar"`
	}{
		Alias:    Alias(c),
		LegacyID: c.ID,
		Udhar:    money.FromCents(c.Udhar),
	})
}
