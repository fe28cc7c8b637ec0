package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory holds the live stock count per product. Rows are mutated only by
// the stock ledger's conditional decrement; every change is mirrored by a
// StockMovement entry.
type Inventory struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	CurrentStock int       `gorm:"column:current_stock;not null;default:0"`
	LastUpdated  time.Time `gorm:"column:last_updated;autoUpdateTime"`
}

// TableName keeps the singular-free form used by the schema.
func (Inventory) TableName() string {
	return "inventory"
}
