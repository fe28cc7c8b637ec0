package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DecrementInput describes one stock deduction tied to a sale.
type DecrementInput struct {
	ProductID     uuid.UUID
	Quantity      int
	TransactionID *uuid.UUID
	Note          string
}

// DecrementResult reports the stock level around a deduction.
type DecrementResult struct {
	ProductID     uuid.UUID
	PreviousStock int
	NewStock      int
}

// Decrement deducts stock for a sale line inside the caller's transaction.
// The conditional UPDATE both checks and deducts in one statement, so two
// concurrent sales can never both win the last unit. A matching StockMovement
// row is appended before returning.
func Decrement(ctx context.Context, tx *gorm.DB, input DecrementInput) (*DecrementResult, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := tx.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("product_id = ? AND current_stock >= ?", input.ProductID, input.Quantity).
		Update("current_stock", gorm.Expr("current_stock - ?", input.Quantity))
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "decrementing stock")
	}

	if res.RowsAffected == 0 {
		// Zero rows means either no inventory row or not enough stock;
		// a follow-up read tells the two apart.
		var row models.Inventory
		err := tx.WithContext(ctx).First(&row, "product_id = ?", input.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no inventory record for product").
				WithDetails(map[string]any{"product_id": input.ProductID})
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading inventory after failed decrement")
		}
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for product").
			WithDetails(map[string]any{
				"product_id": input.ProductID,
				"requested":  input.Quantity,
				"available":  row.CurrentStock,
			})
	}

	var row models.Inventory
	if err := tx.WithContext(ctx).First(&row, "product_id = ?", input.ProductID).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading inventory after decrement")
	}

	result := &DecrementResult{
		ProductID:     input.ProductID,
		PreviousStock: row.CurrentStock + input.Quantity,
		NewStock:      row.CurrentStock,
	}

	movement := &models.StockMovement{
		ProductID:      input.ProductID,
		TransactionID:  input.TransactionID,
		MovementType:   enums.MovementTypeSale,
		QuantityChange: -input.Quantity,
		PreviousStock:  result.PreviousStock,
		NewStock:       result.NewStock,
		Notes:          input.Note,
	}
	if err := tx.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording stock movement")
	}

	return result, nil
}
