package order

import (
	"context"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/payment"
	"storefront-be/internal/validation"

	"go.uber.org/zap"
)

// Limiter gates intake per client identifier.
type Limiter interface {
	Allow(clientID string) bool
	Remaining(clientID string) int
}

// Verifier reconciles a payment intent against the declared total.
type Verifier interface {
	Verify(ctx context.Context, intentID string, declaredTotal float64) payment.Verification
}

// Notifier sends the customer confirmation. Implementations swallow their
// own failures; the interface has no error return on purpose.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, o *Order)
}

// Publisher emits order lifecycle events, best effort.
type Publisher interface {
	OrderCreated(ctx context.Context, o *Order)
}

// Receipt is the successful terminal outcome of either intake flow.
type Receipt struct {
	OrderNumber     string
	PaymentVerified bool
	ItemsPersisted  bool
}

type Service interface {
	// SubmitOrder runs the plain intake flow: rate limit, validate,
	// persist, notify. No payment verification.
	SubmitOrder(ctx context.Context, clientID string, sub validation.CheckoutSubmission) (*Receipt, error)
	// ConfirmPayment runs the post-payment flow: rate limit, validate,
	// reconcile the payment intent, persist, notify. Verification never
	// blocks order creation.
	ConfirmPayment(ctx context.Context, clientID string, sub validation.CheckoutSubmission) (*Receipt, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*Order, error)
	UpdateStatus(ctx context.Context, orderNumber string, status Status) error
}

type service struct {
	repo      Repository
	limiter   Limiter
	verifier  Verifier
	notifier  Notifier
	publisher Publisher
}

func NewService(repo Repository, limiter Limiter, verifier Verifier, notifier Notifier, publisher Publisher) Service {
	return &service{
		repo:      repo,
		limiter:   limiter,
		verifier:  verifier,
		notifier:  notifier,
		publisher: publisher,
	}
}

func (s *service) SubmitOrder(ctx context.Context, clientID string, sub validation.CheckoutSubmission) (*Receipt, error) {
	clean, err := s.gate(ctx, clientID, sub)
	if err != nil {
		return nil, err
	}

	o := buildOrder(clean)
	o.PaymentMethod = "bank_transfer"
	o.PaymentStatus = PaymentPending

	return s.persistAndNotify(ctx, o, false)
}

func (s *service) ConfirmPayment(ctx context.Context, clientID string, sub validation.CheckoutSubmission) (*Receipt, error) {
	clean, err := s.gate(ctx, clientID, sub)
	if err != nil {
		return nil, err
	}

	intentID := strings.TrimSpace(sub.PaymentIntentID)
	if intentID == "" || validation.ContainsThreat(intentID) {
		return nil, &ValidationError{Fields: map[string][]string{
			"payment_intent_id": {"a valid payment intent reference is required"},
		}}
	}

	// Reconciliation, not a gate: the storefront already reported the
	// charge as successful, so every outcome proceeds to persistence.
	verification := s.verifier.Verify(ctx, intentID, clean.TotalAmount)

	o := buildOrder(clean)
	o.PaymentMethod = "card"
	o.PaymentIntentID = validation.Sanitize(intentID)
	if verification.Verified {
		o.PaymentStatus = PaymentCompleted
	} else {
		o.PaymentStatus = PaymentPendingVerification
	}
	o.Notes = appendSystemNote(o.Notes, verification.Note)

	receipt, err := s.persistAndNotify(ctx, o, verification.Verified)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// gate runs the two reject stages shared by both flows: the rate limiter
// and the aggregate validation.
func (s *service) gate(ctx context.Context, clientID string, sub validation.CheckoutSubmission) (*validation.CleanOrder, error) {
	if !s.limiter.Allow(clientID) {
		logger.FromCtx(ctx).Warn("checkout rate limited", zap.String("client_id", clientID))
		return nil, &RateLimitError{Remaining: s.limiter.Remaining(clientID)}
	}

	res := validation.ValidateCheckout(sub)
	if !res.Valid {
		logger.FromCtx(ctx).Info("checkout validation failed",
			zap.Int("field_errors", len(res.Errors)),
		)
		return nil, &ValidationError{Fields: res.Errors}
	}

	return res.Order, nil
}

func (s *service) persistAndNotify(ctx context.Context, o *Order, verified bool) (*Receipt, error) {
	result := s.repo.CreateWithItems(ctx, o)
	if result.Outcome == CreateFailed {
		return nil, result.Err
	}

	// Fire and forget: neither notification nor event publishing may
	// change the outcome reported to the customer.
	s.notifier.SendOrderConfirmation(ctx, result.Order)
	if s.publisher != nil {
		s.publisher.OrderCreated(ctx, result.Order)
	}

	logger.FromCtx(ctx).Info("order accepted",
		zap.String("order_number", result.Order.OrderNumber),
		zap.Bool("payment_verified", verified),
		zap.Bool("items_persisted", result.Outcome == Created),
	)

	return &Receipt{
		OrderNumber:     result.Order.OrderNumber,
		PaymentVerified: verified,
		ItemsPersisted:  result.Outcome == Created,
	}, nil
}

func (s *service) ListOrders(ctx context.Context, limit, offset int) ([]*Order, error) {
	return s.repo.ListOrders(ctx, limit, offset)
}

func (s *service) UpdateStatus(ctx context.Context, orderNumber string, status Status) error {
	return s.repo.UpdateStatus(ctx, orderNumber, status)
}

func buildOrder(clean *validation.CleanOrder) *Order {
	o := &Order{
		OrderNumber:     GenerateOrderNumber(),
		CustomerName:    clean.CustomerName,
		CustomerEmail:   clean.CustomerEmail,
		CustomerPhone:   clean.CustomerPhone,
		BillingAddress:  clean.BillingAddress,
		ShippingAddress: clean.ShippingAddress,
		CompanyName:     clean.CompanyName,
		CompanyOIB:      clean.CompanyOIB,
		NeedsInvoice:    clean.NeedsInvoice,
		Notes:           clean.Notes,
		TotalAmount:     clean.TotalAmount,
		TaxAmount:       clean.TaxAmount,
		ShippingCost:    clean.ShippingCost,
		Discount:        clean.Discount,
		Status:          StatusReceived,
	}

	for _, item := range clean.Items {
		o.Items = append(o.Items, Item{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Width:       item.Width,
			Height:      item.Height,
			Options:     item.Options,
		})
	}

	return o
}

func appendSystemNote(notes, note string) string {
	if note == "" {
		return notes
	}
	if notes == "" {
		return "[system] " + note
	}
	return notes + "\n[system] " + note
}
