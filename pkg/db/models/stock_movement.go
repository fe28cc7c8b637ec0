package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
)

// StockMovement is one append-only entry in the inventory audit trail.
// Rows are write-once: new_stock must equal previous_stock + quantity_change.
type StockMovement struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	TransactionID  *uuid.UUID         `gorm:"column:transaction_id;type:uuid;index"`
	MovementType   enums.MovementType `gorm:"column:movement_type;type:text;not null"`
	QuantityChange int                `gorm:"column:quantity_change;not null"`
	PreviousStock  int                `gorm:"column:previous_stock;not null"`
	NewStock       int                `gorm:"column:new_stock;not null"`
	MovementDate   time.Time          `gorm:"column:movement_date;autoCreateTime"`
	Notes          string             `gorm:"column:notes"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
