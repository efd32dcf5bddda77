package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainreviews "vidaview/internal/domain/reviews"
	domainuser "vidaview/internal/domain/user"
)

// ReviewRepository relies on a unique booking_id index for one review per stay.
type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(colReviews)}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ID) (*domainreviews.Review, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID) (*domainreviews.Review, error) {
	return r.findOne(ctx, bson.M{"booking_id": string(bookingID)})
}

func (r *ReviewRepository) findOne(ctx context.Context, filter bson.M) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, domainreviews.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domainreviews.Review) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"booking_id": string(review.BookingID)})
	if err != nil {
		return err
	}
	if n > 0 {
		return domainreviews.ErrDuplicateReview
	}
	doc := newReviewDocument(review)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainreviews.ErrDuplicateReview
		}
		return err
	}
	review.Version = 1
	return nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	doc.Version = review.Version + 1
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": review.Version}, doc)
	if err != nil {
		return writeErr(err, domainreviews.ErrConcurrentUpdate)
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return domainreviews.ErrNotFound
		}
		return domainreviews.ErrConcurrentUpdate
	}
	review.Version = doc.Version
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return writeErr(err, domainreviews.ErrConcurrentUpdate)
	}
	if res.DeletedCount == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, filter domainreviews.Filter) ([]*domainreviews.Review, error) {
	q := bson.M{}
	inFilter(q, "apartment_id", filter.ApartmentIDs)
	if filter.TenantID != "" {
		q["tenant_id"] = string(filter.TenantID)
	}
	if filter.Approved != nil {
		q["is_approved"] = *filter.Approved
	}
	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainreviews.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type reviewDocument struct {
	ID          string   `bson:"_id"`
	ApartmentID string   `bson:"apartment_id"`
	TenantID    string   `bson:"tenant_id"`
	BookingID   string   `bson:"booking_id"`
	Rating      int      `bson:"rating"`
	Comment     string   `bson:"comment,omitempty"`
	Photos      []string `bson:"photos,omitempty"`
	IsApproved  bool     `bson:"is_approved"`
	ApprovedBy  string   `bson:"approved_by,omitempty"`
	ApprovedAt  int64    `bson:"approved_at,omitempty"`
	CreatedAt   int64    `bson:"created_at"`
	UpdatedAt   int64    `bson:"updated_at"`
	Version     int64    `bson:"version"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:          string(r.ID),
		ApartmentID: string(r.ApartmentID),
		TenantID:    string(r.TenantID),
		BookingID:   string(r.BookingID),
		Rating:      r.Rating,
		Comment:     r.Comment,
		Photos:      append([]string(nil), r.Photos...),
		IsApproved:  r.IsApproved,
		ApprovedBy:  string(r.ApprovedBy),
		ApprovedAt:  timeToTimestamp(r.ApprovedAt),
		CreatedAt:   timeToTimestamp(r.CreatedAt),
		UpdatedAt:   timeToTimestamp(r.UpdatedAt),
		Version:     r.Version,
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:          domainreviews.ID(d.ID),
		ApartmentID: domainapartment.ID(d.ApartmentID),
		TenantID:    domainuser.ID(d.TenantID),
		BookingID:   domainbooking.ID(d.BookingID),
		Rating:      d.Rating,
		Comment:     d.Comment,
		Photos:      d.Photos,
		IsApproved:  d.IsApproved,
		ApprovedBy:  domainuser.ID(d.ApprovedBy),
		ApprovedAt:  timestampToTime(d.ApprovedAt),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
