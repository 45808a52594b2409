package payment

import (
	"context"

	"servify/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// GatewaySession is the subset of a gateway checkout session this subsystem
// consumes: the identifier persisted on the booking and the hosted page URL
// returned to the caller.
type GatewaySession struct {
	ID  string
	URL string
}

// GatewayRefund is the gateway's record of an issued refund.
type GatewayRefund struct {
	ID     string
	Status string
}

// CheckoutParams carries everything needed to create a one-time-payment
// checkout session, amounts already converted to minor units.
type CheckoutParams struct {
	ServiceName string
	AmountMinor int64
	Currency    string
	SuccessURL  string
	CancelURL   string
	Correlation models.CorrelationMetadata
}

// PaymentGateway abstracts the payment provider. A single implementation
// (Stripe) exists in production; tests substitute a mock.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*GatewaySession, error)
	CreateRefund(ctx context.Context, paymentIntentID string) (*GatewayRefund, error)
}

// StripeGateway implements PaymentGateway over an explicit API client,
// constructed once at process start and threaded through as a dependency.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway builds a gateway around a dedicated Stripe client.
func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

// CreateCheckoutSession creates a gateway-hosted payment page for one booking
// and one amount. The correlation metadata is attached both to the session
// and to the payment intent it produces, so completion events and refund
// events can each be mapped back independently.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*GatewaySession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:        stripe.Params{Context: ctx},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(p.SuccessURL),
		CancelURL:     stripe.String(p.CancelURL),
		CustomerEmail: stripe.String(p.Correlation.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.AmountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.ServiceName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: correlationMap(p.Correlation),
		},
	}
	for k, v := range correlationMap(p.Correlation) {
		params.AddMetadata(k, v)
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &GatewaySession{ID: sess.ID, URL: sess.URL}, nil
}

// CreateRefund refunds the full charge behind a payment intent.
func (g *StripeGateway) CreateRefund(ctx context.Context, paymentIntentID string) (*GatewayRefund, error) {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(paymentIntentID),
	}
	ref, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, err
	}
	return &GatewayRefund{ID: ref.ID, Status: string(ref.Status)}, nil
}

// Correlation metadata keys. booking_id is the field webhook processing
// resolves bookings by; app_id guards against events from other applications
// sharing the gateway account.
const (
	metaBookingID     = "booking_id"
	metaAppID         = "app_id"
	metaCustomerEmail = "customer_email"
)

func correlationMap(c models.CorrelationMetadata) map[string]string {
	return map[string]string{
		metaBookingID:     c.BookingID,
		metaAppID:         c.AppID,
		metaCustomerEmail: c.CustomerEmail,
	}
}

// parseCorrelation validates correlation metadata read back from a gateway
// object. booking_id is mandatory; app_id must match when present.
func parseCorrelation(meta map[string]string, appID string) (models.CorrelationMetadata, bool) {
	c := models.CorrelationMetadata{
		BookingID:     meta[metaBookingID],
		AppID:         meta[metaAppID],
		CustomerEmail: meta[metaCustomerEmail],
	}
	if c.BookingID == "" {
		return c, false
	}
	if c.AppID != "" && c.AppID != appID {
		return c, false
	}
	return c, true
}
