// Package inbox remembers which broker events a consumer has already applied.
package inbox

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrEventIDRequired = errors.New("inbox: event id is required")

const defaultRetention = 14 * 24 * time.Hour

type Store struct {
	col      *mongo.Collection
	consumer string
}

// NewStore keeps receipts for retention; redeliveries older than that are
// treated as new.
func NewStore(db *mongo.Database, consumer string, retention time.Duration) *Store {
	if retention <= 0 {
		retention = defaultRetention
	}
	col := db.Collection("app_inbox")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "received_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds()))},
	})
	return &Store{col: col, consumer: consumer}
}

// Seen records eventID and reports whether it had been recorded before.
func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return false, ErrEventIDRequired
	}
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": time.Now().UTC()}
	_, err := s.col.InsertOne(ctx, doc)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, err
}
