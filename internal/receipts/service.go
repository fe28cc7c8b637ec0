package receipts

import (
	"context"
	"fmt"
	"time"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLine is one denormalized sale line on a receipt.
type ReceiptLine struct {
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductCode    string          `json:"product_code"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// Receipt is the printable view of a completed transaction.
type Receipt struct {
	TransactionID   uuid.UUID               `json:"transaction_id"`
	BillNumber      string                  `json:"bill_number"`
	TransactionDate time.Time               `json:"transaction_date"`
	Source          enums.TransactionSource `json:"source"`
	Status          enums.TransactionStatus `json:"status"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	TaxAmount       decimal.Decimal         `json:"tax_amount"`
	DiscountAmount  decimal.Decimal         `json:"discount_amount"`
	NetAmount       decimal.Decimal         `json:"net_amount"`
	PaymentMethod   enums.PaymentMethod     `json:"payment_method"`
	ReferenceNumber string                  `json:"reference_number"`
	Items           []ReceiptLine           `json:"items"`
}

// Summary is one row in the POS transaction history.
type Summary struct {
	TransactionID   uuid.UUID           `json:"transaction_id"`
	BillNumber      string              `json:"bill_number"`
	TransactionDate time.Time           `json:"transaction_date"`
	NetAmount       decimal.Decimal     `json:"net_amount"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
}

// OrderView wraps an online order with its receipt for confirmation pages.
type OrderView struct {
	OrderID        uuid.UUID         `json:"order_id"`
	OrderStatus    enums.OrderStatus `json:"order_status"`
	ShippingMethod string            `json:"shipping_method"`
	PlacedAt       time.Time         `json:"placed_at"`
	Address        *models.CustomerAddress `json:"shipping_address,omitempty"`
	Receipt        *Receipt          `json:"receipt"`
}

// Service assembles read-only sale views.
type Service interface {
	BuildReceipt(ctx context.Context, transactionID uuid.UUID, expectedSource enums.TransactionSource) (*Receipt, error)
	ListPOSSummaries(ctx context.Context, filter HistoryFilter) ([]Summary, error)
	GetOrderForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*OrderView, error)
}

type service struct {
	repo Repository
}

// NewService wires a receipts service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receipts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) BuildReceipt(ctx context.Context, transactionID uuid.UUID, expectedSource enums.TransactionSource) (*Receipt, error) {
	txn, err := s.repo.FindTransactionWithDetails(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	// A receipt requested through the wrong channel is indistinguishable
	// from a missing one.
	if expectedSource.IsValid() && txn.Source != expectedSource {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	return assembleReceipt(txn), nil
}

func (s *service) ListPOSSummaries(ctx context.Context, filter HistoryFilter) ([]Summary, error) {
	rows, err := s.repo.ListBySource(ctx, enums.TransactionSourcePOS, filter)
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(rows))
	for _, txn := range rows {
		summary := Summary{
			TransactionID:   txn.ID,
			BillNumber:      txn.BillNumber,
			TransactionDate: txn.TransactionDate,
			NetAmount:       txn.NetAmount,
		}
		if txn.Payment != nil {
			summary.PaymentMethod = txn.Payment.PaymentMethod
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *service) GetOrderForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*OrderView, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Another customer's order stays invisible.
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	view := &OrderView{
		OrderID:        order.ID,
		OrderStatus:    order.OrderStatus,
		ShippingMethod: order.ShippingMethod,
		PlacedAt:       order.PlacedAt,
		Address:        order.ShippingAddress,
	}
	if order.Transaction != nil {
		view.Receipt = assembleReceipt(order.Transaction)
	}
	return view, nil
}

func assembleReceipt(txn *models.Transaction) *Receipt {
	receipt := &Receipt{
		TransactionID:   txn.ID,
		BillNumber:      txn.BillNumber,
		TransactionDate: txn.TransactionDate,
		Source:          txn.Source,
		Status:          txn.Status,
		TotalAmount:     txn.TotalAmount,
		TaxAmount:       txn.TaxAmount,
		DiscountAmount:  txn.DiscountAmount,
		NetAmount:       txn.NetAmount,
		Items:           make([]ReceiptLine, 0, len(txn.Items)),
	}
	if txn.Payment != nil {
		receipt.PaymentMethod = txn.Payment.PaymentMethod
		receipt.ReferenceNumber = txn.Payment.ReferenceNumber
	}
	for _, item := range txn.Items {
		line := ReceiptLine{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			LineTotal:      item.LineTotal,
		}
		if item.Product != nil {
			line.ProductName = item.Product.ProductName
			line.ProductCode = item.Product.ProductCode
		}
		receipt.Items = append(receipt.Items, line)
	}
	return receipt
}
