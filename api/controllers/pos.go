package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvpgiftcenter/giftshop-backend/api/responses"
	"github.com/dvpgiftcenter/giftshop-backend/api/validators"
	"github.com/dvpgiftcenter/giftshop-backend/internal/catalog"
	"github.com/dvpgiftcenter/giftshop-backend/internal/receipts"
	"github.com/dvpgiftcenter/giftshop-backend/internal/sales"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/logger"
)

// POSListProducts returns the sellable catalog with live stock counts.
func POSListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.ListProducts(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductListResponse(products))
	}
}

// POSSearchProducts matches products by name, code, or exact barcode.
func POSSearchProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		term := strings.TrimSpace(r.URL.Query().Get("q"))
		if term == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "search term required"))
			return
		}

		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.SearchProducts(r.Context(), term, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductListResponse(products))
	}
}

// POSLookupBarcode resolves a single product from a scanned barcode.
func POSLookupBarcode(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		barcode := strings.TrimSpace(chi.URLParam(r, "barcode"))
		if barcode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "barcode required"))
			return
		}

		product, err := svc.LookupBarcode(r.Context(), barcode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

// POSCreateTransaction rings up a counter sale for the authenticated cashier.
func POSCreateTransaction(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		staffID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body posSaleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.ProcessPOSSale(r.Context(), staffID, sales.POSSaleInput{
			CustomerID:     body.CustomerID,
			Lines:          newLineInputs(body.Items),
			PaymentMethod:  enums.PaymentMethod(body.PaymentMethod),
			TaxAmount:      body.TaxAmount,
			DiscountAmount: body.DiscountAmount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newTransactionResponse(txn))
	}
}

// POSTransactionHistory lists completed counter sales, newest first.
func POSTransactionHistory(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receipts service unavailable"))
			return
		}

		filter, err := parseHistoryFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summaries, err := svc.ListPOSSummaries(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"transactions": summaries})
	}
}

// POSReceipt renders the printable receipt for a counter sale.
func POSReceipt(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receipts service unavailable"))
			return
		}

		transactionID, err := uuid.Parse(chi.URLParam(r, "transactionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction id"))
			return
		}

		receipt, err := svc.BuildReceipt(r.Context(), transactionID, enums.TransactionSourcePOS)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

type posSaleRequest struct {
	CustomerID     *uuid.UUID        `json:"customer_id,omitempty" validate:"omitempty"`
	Items          []saleLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod  string            `json:"payment_method" validate:"required"`
	TaxAmount      *decimal.Decimal  `json:"tax_amount,omitempty"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
}

type saleLineRequest struct {
	ProductID      uuid.UUID       `json:"product_id" validate:"required"`
	Quantity       int             `json:"quantity" validate:"required,gt=0"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type productResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductCode  string          `json:"product_code"`
	Barcode      *string         `json:"barcode,omitempty"`
	Description  *string         `json:"description,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ImageURL     *string         `json:"image_url,omitempty"`
	CurrentStock int             `json:"current_stock"`
}

type transactionResponse struct {
	TransactionID   uuid.UUID       `json:"transaction_id"`
	BillNumber      string          `json:"bill_number"`
	TransactionDate time.Time       `json:"transaction_date"`
	Source          string          `json:"source"`
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
}

func newLineInputs(items []saleLineRequest) []sales.LineInput {
	lines := make([]sales.LineInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, sales.LineInput{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			DiscountAmount: item.DiscountAmount,
		})
	}
	return lines
}

func newProductResponse(product catalog.ProductWithStock) productResponse {
	return productResponse{
		ProductID:    product.ID,
		ProductName:  product.ProductName,
		ProductCode:  product.ProductCode,
		Barcode:      product.Barcode,
		Description:  product.Description,
		UnitPrice:    product.UnitPrice,
		ImageURL:     product.ImageURL,
		CurrentStock: product.CurrentStock,
	}
}

func newProductListResponse(products []catalog.ProductWithStock) map[string]any {
	out := make([]productResponse, 0, len(products))
	for _, product := range products {
		out = append(out, newProductResponse(product))
	}
	return map[string]any{"products": out}
}

func newTransactionResponse(txn *models.Transaction) transactionResponse {
	if txn == nil {
		return transactionResponse{}
	}
	resp := transactionResponse{
		TransactionID:   txn.ID,
		BillNumber:      txn.BillNumber,
		TransactionDate: txn.TransactionDate,
		Source:          string(txn.Source),
		Status:          string(txn.Status),
		TotalAmount:     txn.TotalAmount,
		TaxAmount:       txn.TaxAmount,
		DiscountAmount:  txn.DiscountAmount,
		NetAmount:       txn.NetAmount,
	}
	if txn.Payment != nil {
		resp.PaymentMethod = string(txn.Payment.PaymentMethod)
		resp.ReferenceNumber = txn.Payment.ReferenceNumber
	}
	return resp
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer")
	}
	return limit, nil
}

func parseHistoryFilter(r *http.Request) (receipts.HistoryFilter, error) {
	query := r.URL.Query()
	filter := receipts.HistoryFilter{
		BillFragment: strings.TrimSpace(query.Get("bill")),
	}

	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		return receipts.HistoryFilter{}, err
	}
	filter.Limit = limit

	from, err := parseTimeParam(query.Get("from"))
	if err != nil {
		return receipts.HistoryFilter{}, err
	}
	filter.From = from

	to, err := parseTimeParam(query.Get("to"))
	if err != nil {
		return receipts.HistoryFilter{}, err
	}
	filter.To = to

	return filter, nil
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return &ts, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "timestamps must be RFC3339 or YYYY-MM-DD")
}
