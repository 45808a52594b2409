// File: database/repository/booking/bookingMongoCrud.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servify/database/repository"
	"servify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetByID retrieves a booking by its unique ID.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

// GetByPaymentIntentID retrieves the booking correlated with a payment intent.
func (r *MongoBookingRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"payment_intent_id": paymentIntentID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("payment intent %s: %w", paymentIntentID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch booking for payment intent %s: %w", paymentIntentID, err)
	}
	return &booking, nil
}

// SetCheckoutSession persists the gateway session identifier on the booking.
func (r *MongoBookingRepo) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"checkout_session_id": sessionID,
		"updated_at":          time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set checkout session for booking %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking with id %s not found", id)
	}
	return nil
}

// MarkPaid conditionally transitions the booking to paid. The filter pins the
// expected payment_status so a concurrent or replayed application matches
// zero documents instead of overwriting newer state; the pipeline $cond keeps
// any status other than pending untouched (a cancelled or completed booking
// never regresses).
func (r *MongoBookingRepo) MarkPaid(ctx context.Context, id, paymentIntentID string) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "payment_status": models.PaymentStatusUnpaid}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "payment_status", Value: models.PaymentStatusPaid},
			{Key: "payment_intent_id", Value: paymentIntentID},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", models.BookingStatusPending}}},
				models.BookingStatusConfirmed,
				"$status",
			}}}},
			{Key: "updated_at", Value: time.Now()},
		}}},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark booking %s paid: %w", id, err)
	}
	return result.MatchedCount > 0, nil
}

// MarkRefunded conditionally transitions the booking to refunded. Only a paid
// booking matches; the pipeline $cond cancels the booking unless it already
// ran to completion.
func (r *MongoBookingRepo) MarkRefunded(ctx context.Context, id string) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "payment_status": models.PaymentStatusPaid}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "payment_status", Value: models.PaymentStatusRefunded},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", models.BookingStatusCompleted}}},
				"$status",
				models.BookingStatusCancelled,
			}}}},
			{Key: "updated_at", Value: time.Now()},
		}}},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark booking %s refunded: %w", id, err)
	}
	return result.MatchedCount > 0, nil
}
