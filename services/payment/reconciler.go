package payment

import (
	"context"

	"servify/database/repository"

	"go.uber.org/zap"
)

// Reconciler applies the booking state transition implied by a verified
// gateway event exactly once. The conditional booking mutation is the atomic
// gate: a redelivered or reordered event matches zero documents and degrades
// to a no-op. The ledger record is written after the mutation, so a failure
// at any point leaves no state that would make the gateway's retry look like
// a replay; the retry either re-applies a mutation that never landed or
// no-ops against one that did.
type Reconciler struct {
	Bookings repository.BookingRepository
	Ledger   repository.EventLedger
	Logger   *zap.Logger
}

func NewReconciler(bookings repository.BookingRepository, ledger repository.EventLedger, logger *zap.Logger) *Reconciler {
	return &Reconciler{Bookings: bookings, Ledger: ledger, Logger: logger}
}

// ApplyPaid marks the booking paid in response to a completed checkout
// session event.
func (r *Reconciler) ApplyPaid(ctx context.Context, eventID, bookingID, paymentIntentID string) error {
	return r.apply(ctx, eventID, bookingID, func(ctx context.Context) (bool, error) {
		return r.Bookings.MarkPaid(ctx, bookingID, paymentIntentID)
	})
}

// ApplyRefunded marks the booking refunded in response to a refund event.
func (r *Reconciler) ApplyRefunded(ctx context.Context, eventID, bookingID string) error {
	return r.apply(ctx, eventID, bookingID, func(ctx context.Context) (bool, error) {
		return r.Bookings.MarkRefunded(ctx, bookingID)
	})
}

func (r *Reconciler) apply(ctx context.Context, eventID, bookingID string, mutate func(context.Context) (bool, error)) error {
	applied, err := mutate(ctx)
	if err != nil {
		// Nothing recorded yet, so the gateway's retry reprocesses the event
		// from scratch once storage recovers.
		return NewPersistenceError("failed to update booking state", err)
	}

	recorded, err := r.Ledger.Record(ctx, eventID, bookingID)
	if err != nil {
		// The mutation may have landed. Surfacing the error makes the gateway
		// retry; the conditional mutation then matches nothing and only the
		// ledger record is written.
		return NewPersistenceError("failed to record event", err)
	}
	if !recorded {
		// Redelivery of an already-recorded event. Success, no effect.
		r.Logger.Debug("event already processed",
			zap.String("eventId", eventID),
			zap.String("bookingId", bookingID),
		)
		return nil
	}

	if !applied {
		// The precondition no longer holds (already paid, already refunded,
		// or a refund arrived before its completion event). The event is
		// still recorded as processed.
		r.Logger.Info("event transition skipped, booking state already advanced",
			zap.String("eventId", eventID),
			zap.String("bookingId", bookingID),
		)
		return nil
	}

	r.Logger.Info("booking state reconciled",
		zap.String("eventId", eventID),
		zap.String("bookingId", bookingID),
	)
	return nil
}
