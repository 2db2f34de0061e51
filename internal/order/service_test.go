package order

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront-be/internal/payment"
	"storefront-be/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateOrder(ctx context.Context, o *Order) (*Order, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) CreateItems(ctx context.Context, orderID int64, items []Item) []error {
	args := m.Called(ctx, orderID, items)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]error)
}

func (m *MockRepository) CreateWithItems(ctx context.Context, o *Order) CreateResult {
	args := m.Called(ctx, o)
	return args.Get(0).(CreateResult)
}

func (m *MockRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListOrders(ctx context.Context, limit, offset int) ([]*Order, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, orderNumber string, status Status) error {
	args := m.Called(ctx, orderNumber, status)
	return args.Error(0)
}

type stubLimiter struct {
	allow     bool
	remaining int
}

func (s *stubLimiter) Allow(string) bool    { return s.allow }
func (s *stubLimiter) Remaining(string) int { return s.remaining }

type stubVerifier struct {
	verification payment.Verification
	calls        int
}

func (s *stubVerifier) Verify(ctx context.Context, intentID string, total float64) payment.Verification {
	s.calls++
	return s.verification
}

type recordingNotifier struct {
	sent []*Order
}

func (r *recordingNotifier) SendOrderConfirmation(ctx context.Context, o *Order) {
	r.sent = append(r.sent, o)
}

type recordingPublisher struct {
	published []*Order
}

func (r *recordingPublisher) OrderCreated(ctx context.Context, o *Order) {
	r.published = append(r.published, o)
}

func testSubmission() validation.CheckoutSubmission {
	return validation.CheckoutSubmission{
		Customer: validation.Customer{
			FullName: "Ana Kovač",
			Email:    "ana@example.com",
			Phone:    "+385991234567",
			Address:  "Ilica 1, 10000 Zagreb",
		},
		Items: []validation.LineItem{
			{ProductID: "p1", ProductName: "Canvas print", Quantity: 2, Price: 19.99},
		},
		TotalAmount: 39.98,
	}
}

func newTestService(repo *MockRepository, limiter *stubLimiter, verifier *stubVerifier) (Service, *recordingNotifier, *recordingPublisher) {
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	return NewService(repo, limiter, verifier, notifier, publisher), notifier, publisher
}

func createdResult() CreateResult {
	return CreateResult{
		Outcome: Created,
		Order: &Order{
			ID:          1,
			OrderNumber: "ORD-1756710000000-42",
		},
	}
}

func TestService_SubmitOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateWithItems", ctx, mock.AnythingOfType("*order.Order")).Return(createdResult())

		svc, notifier, publisher := newTestService(repo, &stubLimiter{allow: true}, &stubVerifier{})

		receipt, err := svc.SubmitOrder(ctx, "1.2.3.4", testSubmission())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(receipt.OrderNumber, "ORD-"))
		assert.False(t, receipt.PaymentVerified)
		assert.True(t, receipt.ItemsPersisted)
		assert.Len(t, notifier.sent, 1)
		assert.Len(t, publisher.published, 1)

		// pending payment, subtotal-bearing item list handed to the repo
		persisted := repo.Calls[0].Arguments.Get(1).(*Order)
		assert.Equal(t, PaymentPending, persisted.PaymentStatus)
		assert.Equal(t, StatusReceived, persisted.Status)
		require.Len(t, persisted.Items, 1)
		assert.Equal(t, 19.99, persisted.Items[0].UnitPrice)
	})

	t.Run("RateLimited", func(t *testing.T) {
		repo := new(MockRepository)
		svc, notifier, _ := newTestService(repo, &stubLimiter{allow: false, remaining: 0}, &stubVerifier{})

		_, err := svc.SubmitOrder(ctx, "1.2.3.4", testSubmission())

		var rle *RateLimitError
		require.ErrorAs(t, err, &rle)
		assert.Equal(t, 0, rle.Remaining)
		repo.AssertNotCalled(t, "CreateWithItems")
		assert.Empty(t, notifier.sent)
	})

	t.Run("ValidationFailureHaltsPipeline", func(t *testing.T) {
		repo := new(MockRepository)
		svc, notifier, _ := newTestService(repo, &stubLimiter{allow: true}, &stubVerifier{})

		sub := testSubmission()
		sub.Customer.Email = "not-an-email"

		_, err := svc.SubmitOrder(ctx, "1.2.3.4", sub)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "customer_email")
		repo.AssertNotCalled(t, "CreateWithItems")
		assert.Empty(t, notifier.sent)
	})

	t.Run("OrderRowFailureIsFatal", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateWithItems", ctx, mock.Anything).Return(CreateResult{
			Outcome: CreateFailed,
			Err:     errors.New("database unreachable"),
		})

		svc, notifier, _ := newTestService(repo, &stubLimiter{allow: true}, &stubVerifier{})

		_, err := svc.SubmitOrder(ctx, "1.2.3.4", testSubmission())
		assert.Error(t, err)
		assert.Empty(t, notifier.sent)
	})

	t.Run("ItemFailureIsNotFatal", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateWithItems", ctx, mock.Anything).Return(CreateResult{
			Outcome:    CreatedWithItemErrors,
			Order:      &Order{ID: 2, OrderNumber: "ORD-2-2"},
			ItemErrors: []error{errors.New("disk full")},
		})

		svc, notifier, _ := newTestService(repo, &stubLimiter{allow: true}, &stubVerifier{})

		receipt, err := svc.SubmitOrder(ctx, "1.2.3.4", testSubmission())
		require.NoError(t, err, "customer is never told the order failed when the row exists")
		assert.Equal(t, "ORD-2-2", receipt.OrderNumber)
		assert.False(t, receipt.ItemsPersisted)
		assert.Len(t, notifier.sent, 1)
	})
}

func TestService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("VerifiedPayment", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateWithItems", ctx, mock.Anything).Return(createdResult())

		verifier := &stubVerifier{verification: payment.Verification{
			Verified: true,
			Status:   "succeeded",
			Note:     "payment verified via gateway intent pi_1",
		}}
		svc, _, _ := newTestService(repo, &stubLimiter{allow: true}, verifier)

		sub := testSubmission()
		sub.PaymentIntentID = "pi_1"

		receipt, err := svc.ConfirmPayment(ctx, "1.2.3.4", sub)
		require.NoError(t, err)
		assert.True(t, receipt.PaymentVerified)
		assert.Equal(t, 1, verifier.calls)

		persisted := repo.Calls[0].Arguments.Get(1).(*Order)
		assert.Equal(t, PaymentCompleted, persisted.PaymentStatus)
		assert.Contains(t, persisted.Notes, "[system]")
	})

	t.Run("MismatchStillCreatesOrder", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateWithItems", ctx, mock.Anything).Return(createdResult())

		verifier := &stubVerifier{verification: payment.Verification{
			Verified: false,
			Status:   "succeeded",
			Note:     "payment amount mismatch for intent pi_1: charged 44.98, order total 39.98",
		}}
		svc, _, _ := newTestService(repo, &stubLimiter{allow: true}, verifier)

		sub := testSubmission()
		sub.PaymentIntentID = "pi_1"

		receipt, err := svc.ConfirmPayment(ctx, "1.2.3.4", sub)
		require.NoError(t, err)
		assert.False(t, receipt.PaymentVerified)

		persisted := repo.Calls[0].Arguments.Get(1).(*Order)
		assert.Equal(t, PaymentPendingVerification, persisted.PaymentStatus)
		assert.Contains(t, persisted.Notes, "mismatch")
	})

	t.Run("MissingIntentID", func(t *testing.T) {
		repo := new(MockRepository)
		svc, _, _ := newTestService(repo, &stubLimiter{allow: true}, &stubVerifier{})

		_, err := svc.ConfirmPayment(ctx, "1.2.3.4", testSubmission())

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "payment_intent_id")
		repo.AssertNotCalled(t, "CreateWithItems")
	})

	t.Run("GatewayUnreachableStillCreatesOrder", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateWithItems", ctx, mock.Anything).Return(createdResult())

		verifier := &stubVerifier{verification: payment.Verification{
			Verified: false,
			Status:   "unavailable",
			Note:     "payment verification unavailable for intent pi_1",
		}}
		svc, _, _ := newTestService(repo, &stubLimiter{allow: true}, verifier)

		sub := testSubmission()
		sub.PaymentIntentID = "pi_1"

		receipt, err := svc.ConfirmPayment(ctx, "1.2.3.4", sub)
		require.NoError(t, err)
		assert.False(t, receipt.PaymentVerified)
	})
}
