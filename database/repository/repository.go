// database/repository/repository.go
package repository

import (
	"context"
	"errors"

	"servify/models"
)

// ErrNotFound is returned when no record matches a lookup. Callers use it to
// distinguish a genuinely missing record from a storage failure.
var ErrNotFound = errors.New("record not found")

// BookingRepository defines the data access contract for the payment-owned
// fields of a booking. Mutations are conditional on the current payment
// state: MarkPaid and MarkRefunded report false when the expected
// precondition no longer holds, which is how concurrent or out-of-order
// applications degrade to no-ops instead of lost updates.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Booking, error)

	// SetCheckoutSession persists the gateway session identifier on the booking.
	SetCheckoutSession(ctx context.Context, id, sessionID string) error

	// MarkPaid transitions payment_status unpaid->paid, records the payment
	// intent, and promotes status pending->confirmed. Returns false if the
	// booking was not in the unpaid state.
	MarkPaid(ctx context.Context, id, paymentIntentID string) (bool, error)

	// MarkRefunded transitions payment_status paid->refunded and cancels the
	// booking unless it already completed. Returns false if the booking was
	// not in the paid state.
	MarkRefunded(ctx context.Context, id string) (bool, error)
}

// EventLedger records gateway event identifiers that have been applied, so a
// redelivered event is recognizable. Record must be atomic: of two
// concurrent records for the same event exactly one succeeds. The record is
// written after the booking mutation, never before it, so an outage can
// never leave a ledger entry for a transition that did not happen.
type EventLedger interface {
	// Record inserts an idempotency record for the event. Returns false if a
	// record already exists.
	Record(ctx context.Context, eventID, bookingID string) (bool, error)
}
