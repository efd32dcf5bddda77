package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "vidaview/internal/app/outbox"
)

// Event states in the app_outbox collection.
const (
	StatePending = "pending"
	StateClaimed = "claimed"
	StateSent    = "sent"
	StateRetry   = "retry"
)

const (
	collection = "app_outbox"
	// claimTimeout returns events claimed by a crashed relay to the queue.
	claimTimeout  = 2 * time.Minute
	sentRetention = 7 * 24 * time.Hour
)

type EventDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Aggregate   string            `bson:"aggregate"`
	Payload     []byte            `bson:"payload"`
	Headers     map[string]string `bson:"headers,omitempty"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	State       string            `bson:"state"`
	Attempts    int               `bson:"attempts"`
	NextAttempt time.Time         `bson:"next_attempt_at"`
	ClaimedBy   string            `bson:"claimed_by,omitempty"`
	ClaimedAt   *time.Time        `bson:"claimed_at,omitempty"`
	SentAt      *time.Time        `bson:"sent_at,omitempty"`
	LastError   string            `bson:"last_error,omitempty"`
}

// Store is the Mongo-backed outbox. Add joins the caller's session when the
// context carries one, so events commit with the aggregate they describe.
type Store struct {
	col *mongo.Collection
	now func() time.Time
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		col: db.Collection(collection),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the due-queue index and expires relayed events after
// a week.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}}},
		{
			Keys: bson.D{{Key: "sent_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(int32(sentRetention.Seconds())).
				SetPartialFilterExpression(bson.M{"state": StateSent}),
		},
	})
	if err != nil {
		return fmt.Errorf("outbox: indexes: %w", err)
	}
	return nil
}

func (s *Store) Add(ctx context.Context, record appoutbox.EventRecord) error {
	_, err := s.col.InsertOne(ctx, EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Aggregate:   record.Aggregate,
		Payload:     record.Payload,
		Headers:     record.Headers,
		OccurredAt:  record.OccurredAt,
		State:       StatePending,
		NextAttempt: s.now(),
	})
	return err
}

// Flush is a no-op: Add writes through.
func (s *Store) Flush(context.Context) error { return nil }

// Claim takes the oldest due event, including claims that have gone stale.
// It returns nil when nothing is due.
func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	now := s.now()
	due := bson.A{
		bson.M{"state": bson.M{"$in": bson.A{StatePending, StateRetry}}, "next_attempt_at": bson.M{"$lte": now}},
		bson.M{"state": StateClaimed, "claimed_at": bson.M{"$lte": now.Add(-claimTimeout)}},
	}
	var doc EventDocument
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"$or": due},
		bson.M{"$set": bson.M{"state": StateClaimed, "claimed_by": workerID, "claimed_at": now}},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "next_attempt_at", Value: 1}}).
			SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	return s.transition(ctx, id, bson.M{"$set": bson.M{"state": StateSent, "sent_at": s.now()}})
}

func (s *Store) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	return s.transition(ctx, id, bson.M{
		"$set": bson.M{"state": StateRetry, "next_attempt_at": next, "last_error": errMsg},
		"$inc": bson.M{"attempts": 1},
	})
}

func (s *Store) transition(ctx context.Context, id string, update bson.M) error {
	res, err := s.col.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("outbox: update %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("outbox: event %s not found", id)
	}
	return nil
}

var _ appoutbox.Outbox = (*Store)(nil)
var _ Queue = (*Store)(nil)
