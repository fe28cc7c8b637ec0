package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDecrementDeductsStockAndAppendsMovement(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := uuid.New()
	txID := uuid.New()

	seedStock(t, db, productID, 10)

	err := db.Transaction(func(tx *gorm.DB) error {
		result, err := Decrement(ctx, tx, DecrementInput{
			ProductID:     productID,
			Quantity:      3,
			TransactionID: &txID,
			Note:          "POS sale",
		})
		if err != nil {
			return err
		}
		if result.PreviousStock != 10 || result.NewStock != 7 {
			t.Fatalf("unexpected result: %+v", result)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("decrement transaction: %v", err)
	}

	var inv models.Inventory
	if err := db.First(&inv, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.CurrentStock != 7 {
		t.Fatalf("expected stock 7, got %d", inv.CurrentStock)
	}

	var movements []models.StockMovement
	if err := db.Where("product_id = ?", productID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	m := movements[0]
	if m.QuantityChange != -3 || m.PreviousStock != 10 || m.NewStock != 7 {
		t.Fatalf("unexpected movement: %+v", m)
	}
	if m.TransactionID == nil || *m.TransactionID != txID {
		t.Fatalf("movement not linked to transaction: %+v", m)
	}
	if m.NewStock != m.PreviousStock+m.QuantityChange {
		t.Fatalf("movement arithmetic broken: %+v", m)
	}
}

func TestDecrementInsufficientStockLeavesNothingBehind(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := uuid.New()
	seedStock(t, db, productID, 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, derr := Decrement(ctx, tx, DecrementInput{ProductID: productID, Quantity: 5})
		return derr
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	var inv models.Inventory
	if err := db.First(&inv, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.CurrentStock != 2 {
		t.Fatalf("stock mutated despite rejection: %d", inv.CurrentStock)
	}

	var count int64
	if err := db.Model(&models.StockMovement{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no movements, got %d", count)
	}
}

func TestDecrementUnknownProductIsNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		_, derr := Decrement(context.Background(), tx, DecrementInput{ProductID: uuid.New(), Quantity: 1})
		return derr
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDecrementRejectsInvalidQuantity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	_, err := Decrement(context.Background(), db, DecrementInput{ProductID: uuid.New(), Quantity: 0})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// Two buyers race for the last units; exactly one may win.
func TestDecrementConcurrentSalesNeverOversell(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := uuid.New()
	seedStock(t, db, productID, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			errs[slot] = db.Transaction(func(tx *gorm.DB) error {
				_, err := Decrement(ctx, tx, DecrementInput{ProductID: productID, Quantity: 4})
				return err
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}

	var inv models.Inventory
	if err := db.First(&inv, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.CurrentStock != 1 {
		t.Fatalf("expected stock 1 after race, got %d", inv.CurrentStock)
	}
}

func TestRepositoryReadPaths(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := uuid.New()
	txID := uuid.New()
	seedStock(t, db, productID, 8)

	repo := NewRepository(db)

	stock, err := repo.GetStock(ctx, productID)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if stock.CurrentStock != 8 {
		t.Fatalf("expected 8, got %d", stock.CurrentStock)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		_, derr := Decrement(ctx, tx, DecrementInput{ProductID: productID, Quantity: 2, TransactionID: &txID})
		return derr
	}); err != nil {
		t.Fatalf("decrement: %v", err)
	}

	byProduct, err := repo.ListMovementsByProduct(ctx, productID, 10)
	if err != nil {
		t.Fatalf("list by product: %v", err)
	}
	if len(byProduct) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(byProduct))
	}

	byTx, err := repo.ListMovementsByTransaction(ctx, txID)
	if err != nil {
		t.Fatalf("list by transaction: %v", err)
	}
	if len(byTx) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(byTx))
	}

	if _, err := repo.GetStock(ctx, uuid.New()); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func seedStock(t *testing.T, db *gorm.DB, productID uuid.UUID, qty int) {
	t.Helper()
	if err := db.Create(&models.Inventory{ProductID: productID, CurrentStock: qty}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Serializes the concurrent cases; SQLite has no row locks.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Inventory{}, &models.StockMovement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
