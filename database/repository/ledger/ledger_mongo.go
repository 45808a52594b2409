package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"servify/database"
	"servify/database/repository"
	"servify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEventLedger implements repository.EventLedger on a collection with a
// unique index on event_id. The insert itself is the atomic check-and-set:
// of two concurrent records for the same event, the index admits exactly one.
type MongoEventLedger struct {
	coll *mongo.Collection
}

// NewMongoEventLedger creates a new EventLedger backed by MongoDB.
func NewMongoEventLedger() repository.EventLedger {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("payment_events")
	ledger := &MongoEventLedger{coll: coll}

	if err := ledger.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return ledger
}

func (r *MongoEventLedger) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Record inserts an idempotency record for the event. A duplicate-key error
// means the event was already recorded and is reported as false, not an
// error.
func (r *MongoEventLedger) Record(ctx context.Context, eventID, bookingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	record := models.IdempotencyRecord{
		EventID:     eventID,
		BookingID:   bookingID,
		ProcessedAt: time.Now(),
	}
	_, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record event %s: %w", eventID, err)
	}
	return true, nil
}
