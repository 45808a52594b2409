package payment

import (
	"context"

	"servify/models"
)

// CheckoutService creates gateway checkout sessions for bookings.
type CheckoutService interface {
	CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResult, error)
}

// WebhookService verifies and applies asynchronous gateway events.
type WebhookService interface {
	Ingest(ctx context.Context, payload []byte, signatureHeader string) error
}

// RefundService initiates and reconciles refunds for paid bookings.
type RefundService interface {
	Refund(ctx context.Context, bookingID string) (*models.RefundResult, error)
}

// AlertNotifier delivers reconciliation alerts to the operational channel.
// A persistence failure after money has moved at the gateway must reach an
// operator, not only the HTTP caller.
type AlertNotifier interface {
	NotifyReconciliationAlert(ctx context.Context, payload models.ReconciliationAlertPayload) error
}
