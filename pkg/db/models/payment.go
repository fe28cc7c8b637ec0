package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
)

// Payment is the local settlement ledger entry for a transaction. Exactly one
// row per transaction; amount_paid equals the header's net_amount.
type Payment struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID   uuid.UUID           `gorm:"column:transaction_id;type:uuid;uniqueIndex;not null"`
	AmountPaid      decimal.Decimal     `gorm:"column:amount_paid;type:numeric(12,2);not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentDate     time.Time           `gorm:"column:payment_date;not null"`
	Status          enums.PaymentStatus `gorm:"column:status;type:text;not null"`
	ReferenceNumber string              `gorm:"column:reference_number;uniqueIndex;not null"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
