package inventory

import (
	"context"
	"errors"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes read paths over the stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetStock(ctx context.Context, productID uuid.UUID) (*models.Inventory, error)
	ListMovementsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error)
	ListMovementsByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.StockMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository backed by the provided DB.
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

func (r *repository) GetStock(ctx context.Context, productID uuid.UUID) (*models.Inventory, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var row models.Inventory
	err := r.db.WithContext(ctx).First(&row, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no inventory record for product")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading inventory")
	}
	return &row, nil
}

func (r *repository) ListMovementsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if limit <= 0 {
		limit = 50
	}
	var rows []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("movement_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing stock movements")
	}
	return rows, nil
}

func (r *repository) ListMovementsByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.StockMovement, error) {
	if transactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	var rows []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("movement_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing stock movements")
	}
	return rows, nil
}
