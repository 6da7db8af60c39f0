package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/money"
	"gorm.io/gorm"
)

// Transaction is a ledger row: money in from sales, money out as expenses or stock investment
type Transaction struct {
	ID          uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	Type        enum.TransactionType `gorm:"size:20;not null;index" json:"type"`
	Description string               `gorm:"type:text" json:"description"`
	Amount      int64                `gorm:"not null" json:"-"` // Stored in cents
	ProofImage  *string              `gorm:"size:255" json:"proofImage,omitempty"`
	OrderID     *uuid.UUID           `gorm:"type:uuid;index" json:"orderId,omitempty"`
	CustomerID  *uuid.UUID           `gorm:"type:uuid;index" json:"customerId,omitempty"`
	ProductID   *uuid.UUID           `gorm:"type:uuid;index" json:"productId,omitempty"`
	CreatedBy   uuid.UUID            `gorm:"type:uuid;index" json:"createdBy"`
	CreatedAt   time.Time            `gorm:"index" json:"createdAt"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"-"`
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// MarshalJSON converts the amount to a decimal
func (t Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Alias
		LegacyID uuid.UUID `json:"_id"`
		Amount   float64   `json:"amount"`
	}{
		Alias:    Alias(t),
		LegacyID: t.ID,
		Amount:   money.FromCents(t.Amount),
	})
}
