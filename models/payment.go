package models

import "time"

// --- Checkout session creation ---

// CheckoutRequest carries the caller input for creating a checkout session.
// CustomerEmail is filled from the authenticated identity, never from the body.
type CheckoutRequest struct {
	BookingID     string  `json:"booking_id"`
	ServiceName   string  `json:"service_name"`
	TotalAmount   float64 `json:"total_amount"`
	Currency      string  `json:"currency,omitempty"`
	SuccessURL    string  `json:"success_url,omitempty"`
	CancelURL     string  `json:"cancel_url,omitempty"`
	CustomerEmail string  `json:"-"`
}

// CheckoutResult is returned to the caller after a session has been created
// and its identifier persisted on the booking.
type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// RefundResult is returned after a gateway refund has been issued.
type RefundResult struct {
	RefundID string `json:"refund_id"`
}

// --- Webhook correlation ---

// CorrelationMetadata is the fixed set of metadata attached to every checkout
// session. It is the sole mechanism mapping gateway events back to a booking,
// so it is validated on both write and read.
type CorrelationMetadata struct {
	BookingID     string
	AppID         string
	CustomerEmail string
}

// IdempotencyRecord marks a gateway event as applied. At most one record
// exists per event identifier (unique index); a second delivery of the same
// event is acknowledged without effect.
type IdempotencyRecord struct {
	EventID     string    `bson:"event_id" json:"event_id"`
	BookingID   string    `bson:"booking_id" json:"booking_id"`
	ProcessedAt time.Time `bson:"processed_at" json:"processed_at"`
}

// --- Operational alerts ---

// ReconciliationAlertPayload describes a divergence between gateway ground
// truth and the local booking record, e.g. a refund that succeeded at the
// gateway while the local state write failed.
type ReconciliationAlertPayload struct {
	AlertID         string    `json:"alertId"`
	BookingID       string    `json:"bookingId"`
	PaymentIntentID string    `json:"paymentIntentId"`
	RefundID        string    `json:"refundId,omitempty"`
	Reason          string    `json:"reason"`
	OccurredAt      time.Time `json:"occurredAt"`
}
