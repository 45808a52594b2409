package payment

import (
	"context"
	"errors"
	"fmt"

	"servify/database/repository"
	"servify/models"
	"servify/utils"

	"go.uber.org/zap"
)

// CheckoutConfig carries the static inputs of session creation.
type CheckoutConfig struct {
	AppID           string
	DefaultCurrency string
	SuccessURL      string
	CancelURL       string
}

// DefaultCheckoutService implements CheckoutService.
type DefaultCheckoutService struct {
	Gateway  PaymentGateway
	Bookings repository.BookingRepository
	Config   CheckoutConfig
	Logger   *zap.Logger
}

func NewCheckoutService(gateway PaymentGateway, bookings repository.BookingRepository, cfg CheckoutConfig, logger *zap.Logger) *DefaultCheckoutService {
	return &DefaultCheckoutService{
		Gateway:  gateway,
		Bookings: bookings,
		Config:   cfg,
		Logger:   logger,
	}
}

// CreateSession validates the request, creates a one-time-payment checkout
// session with correlation metadata, and persists the session identifier on
// the booking so later refund lookups are a single indexed read.
func (s *DefaultCheckoutService) CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResult, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	booking, err := s.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewValidationError(fmt.Sprintf("unknown booking %s", req.BookingID))
		}
		return nil, NewPersistenceError("failed to load booking", err)
	}
	if booking.PaymentStatus != models.PaymentStatusUnpaid {
		return nil, NewValidationError(fmt.Sprintf("booking %s is already %s", req.BookingID, booking.PaymentStatus))
	}

	currency := req.Currency
	if currency == "" {
		currency = s.Config.DefaultCurrency
	}
	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.Config.SuccessURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.Config.CancelURL
	}

	params := CheckoutParams{
		ServiceName: req.ServiceName,
		AmountMinor: utils.ToMinorUnits(req.TotalAmount),
		Currency:    currency,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
		Correlation: models.CorrelationMetadata{
			BookingID:     req.BookingID,
			AppID:         s.Config.AppID,
			CustomerEmail: req.CustomerEmail,
		},
	}

	sess, err := s.Gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		s.Logger.Error("checkout session creation failed",
			zap.String("bookingId", req.BookingID),
			zap.Error(err),
		)
		return nil, NewUpstreamError("failed to create checkout session", err)
	}

	if err := s.Bookings.SetCheckoutSession(ctx, req.BookingID, sess.ID); err != nil {
		s.Logger.Error("failed to persist checkout session id",
			zap.String("bookingId", req.BookingID),
			zap.String("sessionId", sess.ID),
			zap.Error(err),
		)
		return nil, NewPersistenceError("failed to record checkout session", err)
	}

	s.Logger.Info("checkout session created",
		zap.String("bookingId", req.BookingID),
		zap.String("sessionId", sess.ID),
		zap.Int64("amountMinor", params.AmountMinor),
	)

	return &models.CheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID}, nil
}

func validateCheckoutRequest(req models.CheckoutRequest) error {
	if req.BookingID == "" {
		return NewValidationError("missing booking ID")
	}
	if req.ServiceName == "" {
		return NewValidationError("missing service name")
	}
	if req.TotalAmount <= 0 {
		return NewValidationError("total amount must be positive")
	}
	return nil
}
