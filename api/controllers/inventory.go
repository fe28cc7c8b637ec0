package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dvpgiftcenter/giftshop-backend/api/responses"
	"github.com/dvpgiftcenter/giftshop-backend/internal/inventory"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/logger"
)

// ProductStockMovements lists the recent ledger entries for one product.
func ProductStockMovements(repo inventory.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory repository unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, err := repo.ListMovementsByProduct(r.Context(), productID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMovementListResponse(movements))
	}
}

// TransactionStockMovements lists the ledger entries written by one sale.
func TransactionStockMovements(repo inventory.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory repository unavailable"))
			return
		}

		transactionID, err := uuid.Parse(chi.URLParam(r, "transactionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction id"))
			return
		}

		movements, err := repo.ListMovementsByTransaction(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMovementListResponse(movements))
	}
}

type movementResponse struct {
	MovementID     uuid.UUID  `json:"movement_id"`
	ProductID      uuid.UUID  `json:"product_id"`
	TransactionID  *uuid.UUID `json:"transaction_id,omitempty"`
	MovementType   string     `json:"movement_type"`
	QuantityChange int        `json:"quantity_change"`
	PreviousStock  int        `json:"previous_stock"`
	NewStock       int        `json:"new_stock"`
	MovementDate   time.Time  `json:"movement_date"`
	Notes          string     `json:"notes,omitempty"`
}

func newMovementListResponse(movements []models.StockMovement) map[string]any {
	out := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementResponse{
			MovementID:     m.ID,
			ProductID:      m.ProductID,
			TransactionID:  m.TransactionID,
			MovementType:   string(m.MovementType),
			QuantityChange: m.QuantityChange,
			PreviousStock:  m.PreviousStock,
			NewStock:       m.NewStock,
			MovementDate:   m.MovementDate,
			Notes:          m.Notes,
		})
	}
	return map[string]any{"movements": out}
}
