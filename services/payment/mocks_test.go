package payment

import (
	"context"
	"sync"

	"servify/database/repository"
	"servify/models"

	"go.uber.org/zap"
)

type mockGateway struct {
	CreateCheckoutSessionFn func(ctx context.Context, params CheckoutParams) (*GatewaySession, error)
	CreateRefundFn          func(ctx context.Context, paymentIntentID string) (*GatewayRefund, error)

	checkoutCalls []CheckoutParams
	refundCalls   []string
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*GatewaySession, error) {
	m.checkoutCalls = append(m.checkoutCalls, params)
	if m.CreateCheckoutSessionFn != nil {
		return m.CreateCheckoutSessionFn(ctx, params)
	}
	return &GatewaySession{ID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"}, nil
}

func (m *mockGateway) CreateRefund(ctx context.Context, paymentIntentID string) (*GatewayRefund, error) {
	m.refundCalls = append(m.refundCalls, paymentIntentID)
	if m.CreateRefundFn != nil {
		return m.CreateRefundFn(ctx, paymentIntentID)
	}
	return &GatewayRefund{ID: "re_test_1", Status: "succeeded"}, nil
}

// fakeBookingRepo is an in-memory BookingRepository that mirrors the
// conditional-update semantics of the Mongo implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking

	failMarkPaid     error
	failMarkRefunded error
	failGetByID      error
}

func newFakeBookingRepo(seed ...*models.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
	for _, b := range seed {
		copied := *b
		repo.bookings[b.ID] = &copied
	}
	return repo
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGetByID != nil {
		return nil, r.failGetByID
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.PaymentIntentID == paymentIntentID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBookingRepo) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.CheckoutSessionID = sessionID
	return nil
}

func (r *fakeBookingRepo) MarkPaid(ctx context.Context, id, paymentIntentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMarkPaid != nil {
		return false, r.failMarkPaid
	}
	b, ok := r.bookings[id]
	if !ok || b.PaymentStatus != models.PaymentStatusUnpaid {
		return false, nil
	}
	b.PaymentStatus = models.PaymentStatusPaid
	b.PaymentIntentID = paymentIntentID
	if b.Status == models.BookingStatusPending {
		b.Status = models.BookingStatusConfirmed
	}
	return true, nil
}

func (r *fakeBookingRepo) MarkRefunded(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMarkRefunded != nil {
		return false, r.failMarkRefunded
	}
	b, ok := r.bookings[id]
	if !ok || b.PaymentStatus != models.PaymentStatusPaid {
		return false, nil
	}
	b.PaymentStatus = models.PaymentStatusRefunded
	if b.Status != models.BookingStatusCompleted {
		b.Status = models.BookingStatusCancelled
	}
	return true, nil
}

func (r *fakeBookingRepo) get(id string) *models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil
	}
	copied := *b
	return &copied
}

// fakeEventLedger records event IDs in memory with the same first-writer
// semantics as the Mongo unique index.
type fakeEventLedger struct {
	mu       sync.Mutex
	recorded map[string]string
	failNext error
}

func newFakeEventLedger() *fakeEventLedger {
	return &fakeEventLedger{recorded: make(map[string]string)}
}

func (l *fakeEventLedger) Record(ctx context.Context, eventID, bookingID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return false, err
	}
	if _, ok := l.recorded[eventID]; ok {
		return false, nil
	}
	l.recorded[eventID] = bookingID
	return true, nil
}

func (l *fakeEventLedger) has(eventID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.recorded[eventID]
	return ok
}

type mockAlertNotifier struct {
	NotifyFn func(ctx context.Context, payload models.ReconciliationAlertPayload) error
	alerts   []models.ReconciliationAlertPayload
}

func (m *mockAlertNotifier) NotifyReconciliationAlert(ctx context.Context, payload models.ReconciliationAlertPayload) error {
	m.alerts = append(m.alerts, payload)
	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, payload)
	}
	return nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func pendingBooking(id string) *models.Booking {
	return &models.Booking{
		ID:            id,
		UserID:        "user-1",
		ServiceName:   "Tennis Court A",
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		TotalAmount:   150.00,
		Currency:      "usd",
	}
}

func paidBooking(id, paymentIntentID string) *models.Booking {
	b := pendingBooking(id)
	b.Status = models.BookingStatusConfirmed
	b.PaymentStatus = models.PaymentStatusPaid
	b.PaymentIntentID = paymentIntentID
	return b
}
