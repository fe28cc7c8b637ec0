package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/dvpgiftcenter/giftshop-backend/internal/catalog"
	"github.com/dvpgiftcenter/giftshop-backend/internal/identity"
	"github.com/dvpgiftcenter/giftshop-backend/internal/inventory"
	"github.com/dvpgiftcenter/giftshop-backend/internal/sequence"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/config"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/db"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/logger"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/metrics"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockDecrementer interface {
	Decrement(ctx context.Context, tx *gorm.DB, input inventory.DecrementInput) (*inventory.DecrementResult, error)
}

type ledgerDecrementer struct{}

func (ledgerDecrementer) Decrement(ctx context.Context, tx *gorm.DB, input inventory.DecrementInput) (*inventory.DecrementResult, error) {
	return inventory.Decrement(ctx, tx, input)
}

// ChannelPolicy parameterizes the engine per sales channel.
type ChannelPolicy struct {
	Source            enums.TransactionSource
	RequireCustomer   bool
	AllowLineDiscount bool
	TaxRate           decimal.Decimal
	MovementNote      string
}

// LineInput is one requested sale line.
type LineInput struct {
	ProductID      uuid.UUID
	Quantity       int
	DiscountAmount decimal.Decimal
}

// POSSaleInput captures a counter sale rung up by a cashier.
type POSSaleInput struct {
	CustomerID     *uuid.UUID
	Lines          []LineInput
	PaymentMethod  enums.PaymentMethod
	TaxAmount      *decimal.Decimal
	DiscountAmount decimal.Decimal
}

// AddressInput is the shipping address captured at online checkout.
type AddressInput struct {
	Line1      string
	Line2      *string
	City       string
	PostalCode string
}

// OnlineCheckoutInput captures a web checkout for an authenticated customer.
type OnlineCheckoutInput struct {
	Lines          []LineInput
	PaymentMethod  enums.PaymentMethod
	ShippingMethod string
	Address        AddressInput
}

// OrderConfirmation is the result of a completed online checkout.
type OrderConfirmation struct {
	Order       *models.OnlineOrder
	Transaction *models.Transaction
}

// Service executes sale transactions for both channels.
type Service interface {
	ProcessPOSSale(ctx context.Context, staffID uuid.UUID, input POSSaleInput) (*models.Transaction, error)
	ProcessOnlineCheckout(ctx context.Context, customerID uuid.UUID, input OnlineCheckoutInput) (*OrderConfirmation, error)
}

type service struct {
	tx        txRunner
	repo      Repository
	catalog   catalog.Repository
	users     identity.Repository
	cfg       config.SalesConfig
	metrics   *metrics.SalesMetrics
	logg      *logger.Logger
	decrement stockDecrementer
	nextBill  func(ctx context.Context, tx *gorm.DB, prefix string, at time.Time) (string, error)
	nextRef   func() (string, error)
	now       func() time.Time
}

// NewService builds the sale transaction engine.
func NewService(
	tx txRunner,
	repo Repository,
	catalogRepo catalog.Repository,
	usersRepo identity.Repository,
	cfg config.SalesConfig,
	salesMetrics *metrics.SalesMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		catalog:   catalogRepo,
		users:     usersRepo,
		cfg:       cfg,
		metrics:   salesMetrics,
		logg:      logg,
		decrement: ledgerDecrementer{},
		nextBill:  sequence.NextBillNumber,
		nextRef:   sequence.NextPaymentReference,
		now:       time.Now,
	}, nil
}

func (s *service) posPolicy() ChannelPolicy {
	return ChannelPolicy{
		Source:            enums.TransactionSourcePOS,
		RequireCustomer:   false,
		AllowLineDiscount: true,
		TaxRate:           s.cfg.POSTax(),
		MovementNote:      "POS sale",
	}
}

func (s *service) onlinePolicy() ChannelPolicy {
	return ChannelPolicy{
		Source:            enums.TransactionSourceOnline,
		RequireCustomer:   true,
		AllowLineDiscount: false,
		TaxRate:           s.cfg.OnlineTax(),
		MovementNote:      "online order",
	}
}

func (s *service) ProcessPOSSale(ctx context.Context, staffID uuid.UUID, input POSSaleInput) (*models.Transaction, error) {
	if staffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff identity is required")
	}

	req := saleRequest{
		policy:         s.posPolicy(),
		actorID:        staffID,
		customerID:     input.CustomerID,
		lines:          input.Lines,
		paymentMethod:  input.PaymentMethod,
		headerDiscount: input.DiscountAmount,
		taxOverride:    input.TaxAmount,
		resolvePrice: func(ctx context.Context, repo catalog.Repository, productID uuid.UUID) (decimal.Decimal, error) {
			product, err := repo.FindActiveByID(ctx, productID)
			if err != nil {
				return decimal.Zero, err
			}
			return product.UnitPrice, nil
		},
	}
	return s.processSale(ctx, req)
}

func (s *service) ProcessOnlineCheckout(ctx context.Context, customerID uuid.UUID, input OnlineCheckoutInput) (*OrderConfirmation, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity is required")
	}
	if input.ShippingMethod == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping method is required")
	}
	if input.Address.Line1 == "" || input.Address.City == "" || input.Address.PostalCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}

	confirmation := &OrderConfirmation{}
	req := saleRequest{
		policy:        s.onlinePolicy(),
		actorID:       customerID,
		customerID:    &customerID,
		lines:         input.Lines,
		paymentMethod: input.PaymentMethod,
		resolvePrice: func(ctx context.Context, repo catalog.Repository, productID uuid.UUID) (decimal.Decimal, error) {
			listing, err := repo.FindAvailableOnlineByProductID(ctx, productID)
			if err != nil {
				return decimal.Zero, err
			}
			return listing.OnlinePrice, nil
		},
		afterWrites: func(ctx context.Context, tx *gorm.DB, txn *models.Transaction) error {
			repo := s.repo.WithTx(tx)

			if err := s.reconcileTotals(ctx, repo, txn); err != nil {
				return err
			}

			address := &models.CustomerAddress{
				CustomerID:   customerID,
				AddressLine1: input.Address.Line1,
				AddressLine2: input.Address.Line2,
				City:         input.Address.City,
				PostalCode:   input.Address.PostalCode,
			}
			if err := repo.CreateAddress(ctx, address); err != nil {
				return err
			}

			order := &models.OnlineOrder{
				CustomerID:        customerID,
				TransactionID:     txn.ID,
				ShippingAddressID: address.ID,
				ShippingMethod:    input.ShippingMethod,
				OrderStatus:       enums.OrderStatusPending,
			}
			if err := repo.CreateOrder(ctx, order); err != nil {
				return err
			}
			order.ShippingAddress = address

			confirmation.Order = order
			confirmation.Transaction = txn
			return nil
		},
	}

	if _, err := s.processSale(ctx, req); err != nil {
		return nil, err
	}
	return confirmation, nil
}

type saleRequest struct {
	policy         ChannelPolicy
	actorID        uuid.UUID
	customerID     *uuid.UUID
	lines          []LineInput
	paymentMethod  enums.PaymentMethod
	headerDiscount decimal.Decimal
	taxOverride    *decimal.Decimal
	resolvePrice   func(ctx context.Context, repo catalog.Repository, productID uuid.UUID) (decimal.Decimal, error)
	afterWrites    func(ctx context.Context, tx *gorm.DB, txn *models.Transaction) error
}

func (s *service) processSale(ctx context.Context, req saleRequest) (*models.Transaction, error) {
	start := s.now()
	channel := req.policy.Source.String()

	if err := s.validateRequest(req); err != nil {
		s.metrics.IncRejected(channel, "validation")
		return nil, err
	}
	if err := s.resolveIdentities(ctx, req); err != nil {
		s.recordRejection(ctx, channel, err)
		return nil, err
	}

	var result *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		salesRepo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		items := make([]models.TransactionItem, 0, len(req.lines))
		total := decimal.Zero
		for _, line := range req.lines {
			unitPrice, err := req.resolvePrice(ctx, catalogRepo, line.ProductID)
			if err != nil {
				return err
			}
			lineDiscount := money.Round(line.DiscountAmount)
			lineTotal := money.LineTotal(unitPrice, line.Quantity, lineDiscount)
			if lineTotal.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "line discount exceeds line amount").
					WithDetails(map[string]any{"product_id": line.ProductID})
			}
			items = append(items, models.TransactionItem{
				ProductID:      line.ProductID,
				Quantity:       line.Quantity,
				UnitPrice:      unitPrice,
				DiscountAmount: lineDiscount,
				TaxAmount:      decimal.Zero,
				LineTotal:      lineTotal,
			})
			total = total.Add(lineTotal)
		}
		total = money.Round(total)

		headerDiscount := money.Round(req.headerDiscount)
		if headerDiscount.GreaterThan(total) {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds sale total")
		}

		tax := s.resolveTax(req, total)
		net := money.Net(total, tax, headerDiscount)

		billNumber, err := s.nextBill(ctx, tx, s.cfg.BillPrefix, s.now())
		if err != nil {
			return err
		}

		txn := &models.Transaction{
			CustomerID:      req.customerID,
			UserID:          req.actorID,
			BillNumber:      billNumber,
			TransactionDate: s.now(),
			TotalAmount:     total,
			TaxAmount:       tax,
			DiscountAmount:  headerDiscount,
			NetAmount:       net,
			TransactionType: enums.TransactionTypeSale,
			Status:          enums.TransactionStatusCompleted,
			Source:          req.policy.Source,
		}
		if err := salesRepo.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		for i := range items {
			items[i].TransactionID = txn.ID
		}
		if err := salesRepo.CreateItems(ctx, items); err != nil {
			return err
		}

		for _, line := range req.lines {
			if _, err := s.decrement.Decrement(ctx, tx, inventory.DecrementInput{
				ProductID:     line.ProductID,
				Quantity:      line.Quantity,
				TransactionID: &txn.ID,
				Note:          req.policy.MovementNote,
			}); err != nil {
				return err
			}
		}

		payment, err := s.createPaymentWithRetry(ctx, tx, salesRepo, txn.ID, net, req.paymentMethod)
		if err != nil {
			return err
		}

		txn.Items = items
		txn.Payment = payment
		result = txn

		if req.afterWrites != nil {
			return req.afterWrites(ctx, tx, txn)
		}
		return nil
	})
	if err != nil {
		s.recordRejection(ctx, channel, err)
		return nil, err
	}

	s.metrics.IncCompleted(channel)
	s.metrics.ObserveDuration(channel, time.Since(start))
	if s.logg != nil {
		ctx = s.logg.WithBillNumber(ctx, result.BillNumber)
		s.logg.Info(ctx, "sale completed")
	}
	return result, nil
}

func (s *service) validateRequest(req saleRequest) error {
	if len(req.lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	for _, line := range req.lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required on every line")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		if line.DiscountAmount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line discount cannot be negative")
		}
		if !req.policy.AllowLineDiscount && line.DiscountAmount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line discounts are not accepted on this channel")
		}
	}
	if req.headerDiscount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
	}
	if req.taxOverride != nil && req.taxOverride.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "tax cannot be negative")
	}
	if !req.paymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", req.paymentMethod))
	}
	if req.policy.RequireCustomer && (req.customerID == nil || *req.customerID == uuid.Nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer is required on this channel")
	}
	return nil
}

// resolveIdentities checks the acting account and any attached customer
// against the users store before anything is written. An unknown or
// deactivated cashier reads as an authentication failure; an unknown
// customer is a plain lookup miss.
func (s *service) resolveIdentities(ctx context.Context, req saleRequest) error {
	actor, err := s.users.FindByID(ctx, req.actorID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return s.actorRejection(req, "account not found")
		}
		return err
	}
	if !actor.IsActive {
		return s.actorRejection(req, "account is deactivated")
	}

	if req.customerID != nil && *req.customerID != uuid.Nil && *req.customerID != req.actorID {
		if _, err := s.users.FindByID(ctx, *req.customerID); err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").
					WithDetails(map[string]any{"customer_id": *req.customerID})
			}
			return err
		}
	}
	return nil
}

func (s *service) actorRejection(req saleRequest, detail string) error {
	if req.policy.RequireCustomer {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer "+detail)
	}
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "staff "+detail)
}

// resolveTax honors an explicit caller amount when present and positive;
// otherwise the channel rate applies.
func (s *service) resolveTax(req saleRequest, total decimal.Decimal) decimal.Decimal {
	if req.taxOverride != nil && req.taxOverride.IsPositive() {
		return money.Round(*req.taxOverride)
	}
	return money.Tax(total, req.policy.TaxRate)
}

// reconcileTotals re-derives the header amounts from the rows actually
// persisted and rejects the commit when they disagree.
func (s *service) reconcileTotals(ctx context.Context, repo Repository, txn *models.Transaction) error {
	stored, err := repo.ListItemsByTransaction(ctx, txn.ID)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, item := range stored {
		total = total.Add(item.LineTotal)
	}
	total = money.Round(total)
	tax := money.Tax(total, s.onlinePolicy().TaxRate)
	net := money.Net(total, tax, txn.DiscountAmount)

	if !total.Equal(txn.TotalAmount) || !tax.Equal(txn.TaxAmount) || !net.Equal(txn.NetAmount) {
		return pkgerrors.New(pkgerrors.CodeConsistency, "persisted totals disagree with recomputation").
			WithDetails(map[string]any{
				"bill_number":      txn.BillNumber,
				"header_total":     txn.TotalAmount,
				"recomputed_total": total,
				"header_net":       txn.NetAmount,
				"recomputed_net":   net,
			})
	}
	return nil
}

func (s *service) createPaymentWithRetry(
	ctx context.Context,
	tx *gorm.DB,
	repo Repository,
	transactionID uuid.UUID,
	amount decimal.Decimal,
	method enums.PaymentMethod,
) (*models.Payment, error) {
	attempts := s.cfg.ReferenceRetry
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		reference, err := s.nextRef()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating payment reference")
		}

		payment := &models.Payment{
			TransactionID:   transactionID,
			AmountPaid:      amount,
			PaymentMethod:   method,
			PaymentDate:     s.now(),
			Status:          enums.PaymentStatusSuccess,
			ReferenceNumber: reference,
		}

		// A savepoint keeps a reference collision from poisoning the
		// surrounding transaction.
		savepoint := fmt.Sprintf("payment_ref_%d", attempt)
		if err := tx.SavePoint(savepoint).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating savepoint")
		}
		err = repo.CreatePayment(ctx, payment)
		if err == nil {
			return payment, nil
		}
		if db.IsUniqueViolation(err, "") {
			if rbErr := tx.RollbackTo(savepoint).Error; rbErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, rbErr, "rolling back to savepoint")
			}
			continue
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payment")
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique payment reference")
}

func (s *service) recordRejection(ctx context.Context, channel string, err error) {
	reason := "internal"
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeInsufficientStock:
			reason = "insufficient_stock"
			s.metrics.IncInsufficientStock(channel)
		case pkgerrors.CodeValidation:
			reason = "validation"
		case pkgerrors.CodeUnauthorized:
			reason = "unauthorized"
		case pkgerrors.CodeNotFound:
			reason = "not_found"
		case pkgerrors.CodeConsistency:
			reason = "consistency"
		}
	}
	s.metrics.IncRejected(channel, reason)
	if s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("sale rejected: %v", err))
	}
}
