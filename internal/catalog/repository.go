package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductWithStock joins a catalog row with its live stock count.
type ProductWithStock struct {
	models.Product
	CurrentStock int `gorm:"column:current_stock"`
}

// Repository exposes catalog queries for the POS and online surfaces.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActiveWithStock(ctx context.Context, limit int) ([]ProductWithStock, error)
	SearchActiveWithStock(ctx context.Context, term string, limit int) ([]ProductWithStock, error)
	FindActiveByBarcode(ctx context.Context, barcode string) (*ProductWithStock, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindAvailableOnlineByProductID(ctx context.Context, productID uuid.UUID) (*models.OnlineProduct, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository backed by the provided DB.
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

func (r *repository) activeWithStock(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products").
		Select("products.*, COALESCE(inventory.current_stock, 0) AS current_stock").
		Joins("LEFT JOIN inventory ON inventory.product_id = products.id").
		Where("products.is_active = ?", true)
}

func (r *repository) ListActiveWithStock(ctx context.Context, limit int) ([]ProductWithStock, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []ProductWithStock
	err := r.activeWithStock(ctx).
		Order("products.product_name ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return rows, nil
}

func (r *repository) SearchActiveWithStock(ctx context.Context, term string, limit int) ([]ProductWithStock, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term is required")
	}
	if limit <= 0 {
		limit = 100
	}
	pattern := "%" + strings.ToLower(term) + "%"
	var rows []ProductWithStock
	err := r.activeWithStock(ctx).
		Where("LOWER(products.product_name) LIKE ? OR LOWER(products.product_code) LIKE ? OR products.barcode = ?",
			pattern, pattern, term).
		Order("products.product_name ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching products")
	}
	return rows, nil
}

func (r *repository) FindActiveByBarcode(ctx context.Context, barcode string) (*ProductWithStock, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	var row ProductWithStock
	err := r.activeWithStock(ctx).
		Where("products.barcode = ?", barcode).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no product with barcode")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up barcode")
	}
	return &row, nil
}

func (r *repository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var row models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"product_id": id})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return &row, nil
}

func (r *repository) FindAvailableOnlineByProductID(ctx context.Context, productID uuid.UUID) (*models.OnlineProduct, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var row models.OnlineProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("product_id = ? AND is_available = ?", productID, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not available online").
			WithDetails(map[string]any{"product_id": productID})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading online listing")
	}
	return &row, nil
}
