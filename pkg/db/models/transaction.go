package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
)

// Transaction is the sale header and the aggregate root for its items and
// payment; all three are written inside one database transaction. Headers are
// immutable after commit apart from status edits, and hold
// net_amount == total_amount + tax_amount - discount_amount at 2 decimals.
type Transaction struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID      *uuid.UUID              `gorm:"column:customer_id;type:uuid;index"`
	Customer        *User                   `gorm:"foreignKey:CustomerID"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null"`
	User            *User                   `gorm:"foreignKey:UserID"`
	BillNumber      string                  `gorm:"column:bill_number;uniqueIndex;not null"`
	TransactionDate time.Time               `gorm:"column:transaction_date;not null"`
	TotalAmount     decimal.Decimal         `gorm:"column:total_amount;type:numeric(12,2);not null"`
	TaxAmount       decimal.Decimal         `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	DiscountAmount  decimal.Decimal         `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	NetAmount       decimal.Decimal         `gorm:"column:net_amount;type:numeric(12,2);not null"`
	TransactionType enums.TransactionType   `gorm:"column:transaction_type;type:text;not null"`
	Status          enums.TransactionStatus `gorm:"column:status;type:text;not null"`
	Source          enums.TransactionSource `gorm:"column:source;type:text;not null;index"`
	Items           []TransactionItem       `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	Payment         *Payment                `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
