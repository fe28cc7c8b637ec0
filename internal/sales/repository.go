package sales

import (
	"context"
	"errors"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists the pieces of a sale transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	CreateItems(ctx context.Context, items []models.TransactionItem) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	CreateAddress(ctx context.Context, address *models.CustomerAddress) error
	CreateOrder(ctx context.Context, order *models.OnlineOrder) error
	ListItemsByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.TransactionItem, error)
	FindByID(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sales repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if err := r.db.WithContext(ctx).Omit("Items", "Payment", "Customer", "User").Create(txn).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating transaction")
	}
	return nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.TransactionItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit("Product").Create(&items).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating transaction items")
	}
	return nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	// Unique violations bubble up untouched so the caller can retry the reference.
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) CreateAddress(ctx context.Context, address *models.CustomerAddress) error {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating shipping address")
	}
	return nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.OnlineOrder) error {
	if err := r.db.WithContext(ctx).Omit("Customer", "Transaction", "ShippingAddress").Create(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating online order")
	}
	return nil
}

func (r *repository) ListItemsByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.TransactionItem, error) {
	var items []models.TransactionItem
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing transaction items")
	}
	return items, nil
}

func (r *repository) FindByID(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	if transactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		First(&txn, "id = ?", transactionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading transaction")
	}
	return &txn, nil
}
