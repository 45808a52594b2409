package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"servify/models"
)

const testSigningSecret = "whsec_test_secret"

// signHeader produces a gateway signature header over the exact payload
// bytes, matching the t=<timestamp>,v1=<hmac> scheme the verifier expects.
func signHeader(payload []byte, secret string, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func sessionCompletedPayload(eventID, sessionID, paymentIntentID string, metadata string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"api_version": "2023-10-16",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": %q,
				"object": "checkout.session",
				"payment_intent": %q,
				"metadata": %s
			}
		}
	}`, eventID, sessionID, paymentIntentID, metadata))
}

func chargeRefundedPayload(eventID, chargeID, paymentIntentID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"api_version": "2023-10-16",
		"type": "charge.refunded",
		"data": {
			"object": {
				"id": %q,
				"object": "charge",
				"payment_intent": %q
			}
		}
	}`, eventID, chargeID, paymentIntentID))
}

func newWebhookService(repo *fakeBookingRepo, ledger *fakeEventLedger) *DefaultWebhookService {
	rec := NewReconciler(repo, ledger, testLogger())
	return NewWebhookService(testSigningSecret, "servify", rec, repo, testLogger())
}

func TestIngestRejectsBadSignature(t *testing.T) {
	repo := newFakeBookingRepo(pendingBooking("b1"))
	svc := newWebhookService(repo, newFakeEventLedger())
	payload := sessionCompletedPayload("evt_1", "cs_1", "pi_1", `{"booking_id":"b1","app_id":"servify"}`)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"garbage header", "t=123,v1=deadbeef"},
		{"wrong secret", signHeader(payload, "whsec_other", time.Now())},
		{"stale timestamp", signHeader(payload, testSigningSecret, time.Now().Add(-time.Hour))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Ingest(context.Background(), payload, tc.header)
			if KindOf(err) != KindSignature {
				t.Fatalf("expected signature kind, got %v", err)
			}
			if repo.get("b1").PaymentStatus != models.PaymentStatusUnpaid {
				t.Fatal("unverified event mutated booking state")
			}
		})
	}
}

func TestIngestTamperedPayload(t *testing.T) {
	repo := newFakeBookingRepo(pendingBooking("b1"))
	svc := newWebhookService(repo, newFakeEventLedger())

	payload := sessionCompletedPayload("evt_1", "cs_1", "pi_1", `{"booking_id":"b1","app_id":"servify"}`)
	header := signHeader(payload, testSigningSecret, time.Now())
	tampered := sessionCompletedPayload("evt_1", "cs_1", "pi_other", `{"booking_id":"b1","app_id":"servify"}`)

	err := svc.Ingest(context.Background(), tampered, header)
	if KindOf(err) != KindSignature {
		t.Fatalf("expected signature kind, got %v", err)
	}
}

func TestIngestSessionCompleted(t *testing.T) {
	repo := newFakeBookingRepo(pendingBooking("b1"))
	ledger := newFakeEventLedger()
	svc := newWebhookService(repo, ledger)

	payload := sessionCompletedPayload("evt_1", "cs_1", "pi_1", `{"booking_id":"b1","app_id":"servify","customer_email":"alex@example.com"}`)
	header := signHeader(payload, testSigningSecret, time.Now())

	if err := svc.Ingest(context.Background(), payload, header); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := repo.get("b1")
	if b.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", b.PaymentStatus)
	}
	if b.PaymentIntentID != "pi_1" {
		t.Errorf("payment intent = %q, want pi_1", b.PaymentIntentID)
	}
	if !ledger.has("evt_1") {
		t.Error("event not recorded in ledger")
	}
}

func TestIngestSessionCompletedRedelivery(t *testing.T) {
	repo := newFakeBookingRepo(pendingBooking("b1"))
	svc := newWebhookService(repo, newFakeEventLedger())

	payload := sessionCompletedPayload("evt_1", "cs_1", "pi_1", `{"booking_id":"b1","app_id":"servify"}`)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		header := signHeader(payload, testSigningSecret, time.Now())
		if err := svc.Ingest(ctx, payload, header); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}

	if repo.get("b1").PaymentStatus != models.PaymentStatusPaid {
		t.Error("redelivered event left booking unpaid")
	}
}

func TestIngestAcknowledgesUnmappableEvents(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
	}{
		{
			name:    "missing booking id",
			payload: sessionCompletedPayload("evt_1", "cs_1", "pi_1", `{"app_id":"servify"}`),
		},
		{
			name:    "foreign app id",
			payload: sessionCompletedPayload("evt_2", "cs_2", "pi_2", `{"booking_id":"b1","app_id":"someone-else"}`),
		},
		{
			name:    "no metadata",
			payload: sessionCompletedPayload("evt_3", "cs_3", "pi_3", `{}`),
		},
		{
			name: "unknown event type",
			payload: []byte(`{
				"id": "evt_4",
				"object": "event",
				"api_version": "2023-10-16",
				"type": "invoice.created",
				"data": {"object": {"id": "in_1", "object": "invoice"}}
			}`),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeBookingRepo(pendingBooking("b1"))
			svc := newWebhookService(repo, newFakeEventLedger())

			header := signHeader(tc.payload, testSigningSecret, time.Now())
			if err := svc.Ingest(context.Background(), tc.payload, header); err != nil {
				t.Fatalf("unmappable events must be acknowledged, got %v", err)
			}
			if repo.get("b1").PaymentStatus != models.PaymentStatusUnpaid {
				t.Fatal("unmappable event mutated booking state")
			}
		})
	}
}

func TestIngestChargeRefunded(t *testing.T) {
	repo := newFakeBookingRepo(paidBooking("b1", "pi_1"))
	svc := newWebhookService(repo, newFakeEventLedger())

	payload := chargeRefundedPayload("evt_r1", "ch_1", "pi_1")
	header := signHeader(payload, testSigningSecret, time.Now())

	if err := svc.Ingest(context.Background(), payload, header); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := repo.get("b1")
	if b.PaymentStatus != models.PaymentStatusRefunded {
		t.Errorf("payment status = %s, want refunded", b.PaymentStatus)
	}
	if b.Status != models.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", b.Status)
	}
}

func TestIngestChargeRefundedUnknownIntent(t *testing.T) {
	repo := newFakeBookingRepo(paidBooking("b1", "pi_1"))
	svc := newWebhookService(repo, newFakeEventLedger())

	payload := chargeRefundedPayload("evt_r1", "ch_1", "pi_unknown")
	header := signHeader(payload, testSigningSecret, time.Now())

	if err := svc.Ingest(context.Background(), payload, header); err != nil {
		t.Fatalf("unmappable refund must be acknowledged, got %v", err)
	}
	if repo.get("b1").PaymentStatus != models.PaymentStatusPaid {
		t.Fatal("unrelated booking was mutated")
	}
}

func TestIngestLateCompletionAfterRefund(t *testing.T) {
	// The completion event arrives after the refund has already landed. The
	// late completion must be acknowledged without reverting the refund.
	repo := newFakeBookingRepo(paidBooking("b1", "pi_1"))
	svc := newWebhookService(repo, newFakeEventLedger())
	ctx := context.Background()

	refund := chargeRefundedPayload("evt_r1", "ch_1", "pi_1")
	if err := svc.Ingest(ctx, refund, signHeader(refund, testSigningSecret, time.Now())); err != nil {
		t.Fatalf("refund event: %v", err)
	}

	late := sessionCompletedPayload("evt_c1", "cs_1", "pi_1", `{"booking_id":"b1","app_id":"servify"}`)
	if err := svc.Ingest(ctx, late, signHeader(late, testSigningSecret, time.Now())); err != nil {
		t.Fatalf("late completion event: %v", err)
	}

	if got := repo.get("b1").PaymentStatus; got != models.PaymentStatusRefunded {
		t.Errorf("payment status = %s, late completion reverted the refund", got)
	}
}
