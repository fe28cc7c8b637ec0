package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerAddress is a shipping address captured at checkout. A fresh row is
// written per online order; there is no address book dedup.
type CustomerAddress struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID   uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`
	AddressLine1 string    `gorm:"column:address_line1;not null"`
	AddressLine2 *string   `gorm:"column:address_line2"`
	City         string    `gorm:"column:city;not null"`
	PostalCode   string    `gorm:"column:postal_code;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (a *CustomerAddress) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
