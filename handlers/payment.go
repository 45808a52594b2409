package handlers

import (
	"errors"
	"net/http"

	"servify/models"
	"servify/services/payment"
	"servify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody caps the raw webhook payload read into memory.
const maxWebhookBody = 64 << 10

// PaymentHandler wires the payment lifecycle services to HTTP endpoints.
type PaymentHandler struct {
	Checkout payment.CheckoutService
	Webhook  payment.WebhookService
	Refund   payment.RefundService
	Logger   *zap.Logger
}

func NewPaymentHandler(checkout payment.CheckoutService, webhook payment.WebhookService, refund payment.RefundService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		Checkout: checkout,
		Webhook:  webhook,
		Refund:   refund,
		Logger:   logger,
	}
}

// CreateCheckoutSessionHandler starts a hosted checkout session for a booking.
func (h *PaymentHandler) CreateCheckoutSessionHandler(c *gin.Context) {
	userID := c.GetString("userID")
	email := c.GetString("email")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	req.CustomerEmail = email

	result, err := h.Checkout.CreateSession(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "failed to create checkout session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout_url": result.CheckoutURL,
		"session_id":   result.SessionID,
	})
}

// WebhookHandler receives payment gateway events. Signature verification
// happens over the exact raw bytes, so the body must not pass through any
// JSON binding before the payment service sees it.
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	signature := c.GetHeader("X-Signature")
	if signature == "" {
		signature = c.GetHeader("Stripe-Signature")
	}

	if err := h.Webhook.Ingest(c.Request.Context(), payload, signature); err != nil {
		h.respondError(c, err, "webhook processing failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// RefundHandler issues a refund for a paid booking.
func (h *PaymentHandler) RefundHandler(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		BookingID string `json:"booking_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.Refund.Refund(c.Request.Context(), req.BookingID)
	if err != nil {
		h.respondError(c, err, "refund failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"refund_id": result.RefundID,
	})
}

// respondError maps a payment error kind to an HTTP status. Internal error
// detail stays on the log channel; the client sees only the message.
func (h *PaymentHandler) respondError(c *gin.Context, err error, logMsg string) {
	var perr *payment.Error
	message := "internal error"
	if errors.As(err, &perr) {
		message = perr.Message
	}

	var status int
	switch payment.KindOf(err) {
	case payment.KindValidation, payment.KindSignature:
		status = http.StatusBadRequest
	case payment.KindAuthentication:
		status = http.StatusUnauthorized
	case payment.KindNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		h.Logger.Error(logMsg, zap.Error(err))
	} else {
		h.Logger.Warn(logMsg, zap.Error(err))
	}

	c.JSON(status, gin.H{"error": message})
}
