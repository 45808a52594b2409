package payment

import (
	"context"
	"errors"
	"time"

	"servify/database/repository"
	"servify/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRefundService implements RefundService. Refund lookup goes through
// the correlation fields stored on the booking, never through a scan of the
// gateway's recent sessions.
type DefaultRefundService struct {
	Gateway  PaymentGateway
	Bookings repository.BookingRepository
	Alerts   AlertNotifier
	Logger   *zap.Logger
}

func NewRefundService(gateway PaymentGateway, bookings repository.BookingRepository, alerts AlertNotifier, logger *zap.Logger) *DefaultRefundService {
	return &DefaultRefundService{
		Gateway:  gateway,
		Bookings: bookings,
		Alerts:   alerts,
		Logger:   logger,
	}
}

// Refund issues a gateway refund for the booking's payment and transitions
// the booking to refunded. The asynchronous refund webhook targets the same
// state through the same conditional mutation; whichever path reaches the
// booking first performs the transition and the other degrades to a no-op.
func (s *DefaultRefundService) Refund(ctx context.Context, bookingID string) (*models.RefundResult, error) {
	if bookingID == "" {
		return nil, NewValidationError("missing booking ID")
	}

	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("no paid payment found for this booking")
		}
		return nil, NewPersistenceError("failed to load booking", err)
	}

	if booking.PaymentStatus != models.PaymentStatusPaid || booking.PaymentIntentID == "" {
		return nil, NewNotFoundError("no paid payment found for this booking")
	}

	refund, err := s.Gateway.CreateRefund(ctx, booking.PaymentIntentID)
	if err != nil {
		s.Logger.Error("gateway refund failed",
			zap.String("bookingId", bookingID),
			zap.String("paymentIntentId", booking.PaymentIntentID),
			zap.Error(err),
		)
		return nil, NewUpstreamError("failed to create refund", err)
	}

	applied, err := s.Bookings.MarkRefunded(ctx, bookingID)
	if err != nil {
		// The gateway has refunded money but the booking still reads paid.
		// This divergence must reach an operator, not just the HTTP caller:
		// a retried refund request would attempt to refund a second time.
		s.raiseReconciliationAlert(ctx, booking, refund.ID, err)
		return nil, NewPersistenceError("refund issued but booking state update failed", err)
	}
	if !applied {
		// The refund webhook won the race. Nothing left to do.
		s.Logger.Info("booking already refunded by webhook path",
			zap.String("bookingId", bookingID),
			zap.String("refundId", refund.ID),
		)
	}

	s.Logger.Info("refund completed",
		zap.String("bookingId", bookingID),
		zap.String("refundId", refund.ID),
	)
	return &models.RefundResult{RefundID: refund.ID}, nil
}

func (s *DefaultRefundService) raiseReconciliationAlert(ctx context.Context, booking *models.Booking, refundID string, cause error) {
	payload := models.ReconciliationAlertPayload{
		AlertID:         uuid.New().String(),
		BookingID:       booking.ID,
		PaymentIntentID: booking.PaymentIntentID,
		RefundID:        refundID,
		Reason:          "gateway refund succeeded but booking state write failed: " + cause.Error(),
		OccurredAt:      time.Now(),
	}

	s.Logger.Error("reconciliation alert: booking diverged from gateway",
		zap.String("alertId", payload.AlertID),
		zap.String("bookingId", payload.BookingID),
		zap.String("refundId", refundID),
		zap.Error(cause),
	)

	if s.Alerts == nil {
		return
	}
	if err := s.Alerts.NotifyReconciliationAlert(ctx, payload); err != nil {
		s.Logger.Error("failed to enqueue reconciliation alert",
			zap.String("alertId", payload.AlertID),
			zap.Error(err),
		)
	}
}
