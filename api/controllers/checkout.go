package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dvpgiftcenter/giftshop-backend/api/responses"
	"github.com/dvpgiftcenter/giftshop-backend/api/validators"
	"github.com/dvpgiftcenter/giftshop-backend/internal/sales"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/logger"
)

// Checkout places an online order for the authenticated customer.
func Checkout(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		customerID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmation, err := svc.ProcessOnlineCheckout(r.Context(), customerID, sales.OnlineCheckoutInput{
			Lines:          newLineInputs(body.Items),
			PaymentMethod:  enums.PaymentMethod(body.PaymentMethod),
			ShippingMethod: body.ShippingMethod,
			Address: sales.AddressInput{
				Line1:      body.ShippingAddress.Line1,
				Line2:      body.ShippingAddress.Line2,
				City:       body.ShippingAddress.City,
				PostalCode: body.ShippingAddress.PostalCode,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(confirmation))
	}
}

type checkoutRequest struct {
	Items           []saleLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   string            `json:"payment_method" validate:"required"`
	ShippingMethod  string            `json:"shipping_method" validate:"required"`
	ShippingAddress addressRequest    `json:"shipping_address" validate:"required"`
}

type addressRequest struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
}

type checkoutResponse struct {
	OrderID        uuid.UUID           `json:"order_id"`
	OrderStatus    string              `json:"order_status"`
	ShippingMethod string              `json:"shipping_method"`
	PlacedAt       time.Time           `json:"placed_at"`
	Transaction    transactionResponse `json:"transaction"`
}

func newCheckoutResponse(confirmation *sales.OrderConfirmation) checkoutResponse {
	if confirmation == nil {
		return checkoutResponse{}
	}
	resp := checkoutResponse{
		Transaction: newTransactionResponse(confirmation.Transaction),
	}
	if confirmation.Order != nil {
		resp.OrderID = confirmation.Order.ID
		resp.OrderStatus = string(confirmation.Order.OrderStatus)
		resp.ShippingMethod = confirmation.Order.ShippingMethod
		resp.PlacedAt = confirmation.Order.PlacedAt
	}
	return resp
}
