package payment

import (
	"context"
	"encoding/json"
	"errors"

	"servify/database/repository"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// DefaultWebhookService implements WebhookService. Signature verification
// runs over the raw, unparsed body bytes; only events that verify are parsed
// and dispatched. Events that cannot be mapped to a booking are acknowledged,
// not retried, since a missing correlation never becomes resolvable later.
type DefaultWebhookService struct {
	SigningSecret string
	AppID         string
	Reconciler    *Reconciler
	Bookings      repository.BookingRepository
	Logger        *zap.Logger
}

func NewWebhookService(signingSecret, appID string, reconciler *Reconciler, bookings repository.BookingRepository, logger *zap.Logger) *DefaultWebhookService {
	return &DefaultWebhookService{
		SigningSecret: signingSecret,
		AppID:         appID,
		Reconciler:    reconciler,
		Bookings:      bookings,
		Logger:        logger,
	}
}

// Ingest verifies the event signature and applies the implied transition.
func (s *DefaultWebhookService) Ingest(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEvent(payload, signatureHeader, s.SigningSecret)
	if err != nil {
		return NewSignatureError(err)
	}

	s.Logger.Info("gateway event received",
		zap.String("eventId", event.ID),
		zap.String("type", string(event.Type)),
	)

	switch event.Type {
	case "checkout.session.completed":
		return s.handleSessionCompleted(ctx, event)
	case "charge.refunded":
		return s.handleChargeRefunded(ctx, event)
	default:
		// Unrecognized types are acknowledged for forward compatibility.
		s.Logger.Debug("ignoring gateway event", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *DefaultWebhookService) handleSessionCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		s.Logger.Warn("malformed checkout session payload",
			zap.String("eventId", event.ID),
			zap.Error(err),
		)
		return nil
	}

	corr, ok := parseCorrelation(sess.Metadata, s.AppID)
	if !ok {
		s.Logger.Warn("session completed event without usable correlation metadata",
			zap.String("eventId", event.ID),
			zap.String("sessionId", sess.ID),
		)
		return nil
	}

	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		s.Logger.Warn("session completed event without payment intent",
			zap.String("eventId", event.ID),
			zap.String("sessionId", sess.ID),
		)
		return nil
	}

	return s.Reconciler.ApplyPaid(ctx, event.ID, corr.BookingID, sess.PaymentIntent.ID)
}

func (s *DefaultWebhookService) handleChargeRefunded(ctx context.Context, event stripe.Event) error {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		s.Logger.Warn("malformed charge payload",
			zap.String("eventId", event.ID),
			zap.Error(err),
		)
		return nil
	}

	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		s.Logger.Warn("refund event without payment intent",
			zap.String("eventId", event.ID),
			zap.String("chargeId", charge.ID),
		)
		return nil
	}

	booking, err := s.Bookings.GetByPaymentIntentID(ctx, charge.PaymentIntent.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Not a transient failure: the stored correlation either exists
			// or it never will. Log and acknowledge.
			s.Logger.Warn("refund event does not map to a known booking",
				zap.String("eventId", event.ID),
				zap.String("paymentIntentId", charge.PaymentIntent.ID),
			)
			return nil
		}
		return NewPersistenceError("failed to resolve booking for refund event", err)
	}

	return s.Reconciler.ApplyRefunded(ctx, event.ID, booking.ID)
}
