package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainnotification "vidaview/internal/domain/notification"
	domainuser "vidaview/internal/domain/user"
)

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(colNotifications)}
}

func (r *NotificationRepository) ByID(ctx context.Context, id domainnotification.ID) (*domainnotification.Notification, error) {
	var doc notificationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainnotification.ErrNotFound)
	}
	return doc.toNotification(), nil
}

// Insert uses $setOnInsert so a redelivered notification keeps its first copy.
func (r *NotificationRepository) Insert(ctx context.Context, n *domainnotification.Notification) error {
	doc := newNotificationDocument(n)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *NotificationRepository) List(ctx context.Context, filter domainnotification.Filter) ([]*domainnotification.Notification, error) {
	q := bson.M{}
	if filter.UserID != "" {
		q["user_id"] = string(filter.UserID)
	}
	if filter.IsRead != nil {
		q["is_read"] = *filter.IsRead
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	var docs []notificationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainnotification.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toNotification())
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id domainnotification.ID) error {
	res, err := r.col.UpdateByID(ctx, string(id), bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainnotification.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID domainuser.ID) (int, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"user_id": string(userID), "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID domainuser.ID) (int, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": string(userID), "is_read": false})
	return int(n), err
}

type notificationDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Title     string    `bson:"title"`
	Message   string    `bson:"message"`
	Type      string    `bson:"type"`
	RelatedID string    `bson:"related_id,omitempty"`
	IsRead    bool      `bson:"is_read"`
	CreatedAt time.Time `bson:"created_at"`
}

func newNotificationDocument(n *domainnotification.Notification) notificationDocument {
	return notificationDocument{
		ID:        string(n.ID),
		UserID:    string(n.UserID),
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		RelatedID: n.RelatedID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UTC(),
	}
}

func (d notificationDocument) toNotification() *domainnotification.Notification {
	return &domainnotification.Notification{
		ID:        domainnotification.ID(d.ID),
		UserID:    domainuser.ID(d.UserID),
		Title:     d.Title,
		Message:   d.Message,
		Type:      domainnotification.Type(d.Type),
		RelatedID: d.RelatedID,
		IsRead:    d.IsRead,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

var _ domainnotification.Repository = (*NotificationRepository)(nil)
