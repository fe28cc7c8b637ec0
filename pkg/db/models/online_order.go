package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
)

// OnlineOrder wraps an online_sale transaction with shipping details.
// One-to-one with its transaction.
type OnlineOrder struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID        uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	Customer          *User             `gorm:"foreignKey:CustomerID"`
	TransactionID     uuid.UUID         `gorm:"column:transaction_id;type:uuid;uniqueIndex;not null"`
	Transaction       *Transaction      `gorm:"foreignKey:TransactionID"`
	ShippingAddressID uuid.UUID         `gorm:"column:shipping_address_id;type:uuid;not null"`
	ShippingAddress   *CustomerAddress  `gorm:"foreignKey:ShippingAddressID"`
	ShippingMethod    string            `gorm:"column:shipping_method;not null"`
	OrderStatus       enums.OrderStatus `gorm:"column:order_status;type:text;not null"`
	PlacedAt          time.Time         `gorm:"column:placed_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *OnlineOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
