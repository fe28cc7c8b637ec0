package receipts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryFilter narrows the POS transaction listing. Zero values mean
// "recent": no fragment, no date range, default limit.
type HistoryFilter struct {
	BillFragment string
	From         *time.Time
	To           *time.Time
	Limit        int
}

// Repository exposes the read paths behind receipts and history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindTransactionWithDetails(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)
	ListBySource(ctx context.Context, source enums.TransactionSource, filter HistoryFilter) ([]models.Transaction, error)
	FindOrderByID(ctx context.Context, orderID uuid.UUID) (*models.OnlineOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a receipts repository backed by the provided DB.
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

func (r *repository) FindTransactionWithDetails(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	if transactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
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

func (r *repository) ListBySource(ctx context.Context, source enums.TransactionSource, filter HistoryFilter) ([]models.Transaction, error) {
	if !source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction source")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := r.db.WithContext(ctx).
		Preload("Payment").
		Where("source = ?", source)

	if fragment := strings.TrimSpace(filter.BillFragment); fragment != "" {
		query = query.Where("bill_number LIKE ?", "%"+fragment+"%")
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transaction_date <= ?", *filter.To)
	}

	var rows []models.Transaction
	err := query.Order("transaction_date DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing transactions")
	}
	return rows, nil
}

func (r *repository) FindOrderByID(ctx context.Context, orderID uuid.UUID) (*models.OnlineOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var order models.OnlineOrder
	err := r.db.WithContext(ctx).
		Preload("Transaction").
		Preload("Transaction.Items").
		Preload("Transaction.Items.Product").
		Preload("Transaction.Payment").
		Preload("ShippingAddress").
		First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return &order, nil
}
