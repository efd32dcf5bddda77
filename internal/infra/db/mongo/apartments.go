package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainapartment "vidaview/internal/domain/apartment"
	domainuser "vidaview/internal/domain/user"
)

type ApartmentRepository struct {
	col *mongo.Collection
}

func NewApartmentRepository(db *mongo.Database) *ApartmentRepository {
	return &ApartmentRepository{col: db.Collection(colApartments)}
}

func (r *ApartmentRepository) ByID(ctx context.Context, id domainapartment.ID) (*domainapartment.Apartment, error) {
	var doc apartmentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainapartment.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *ApartmentRepository) List(ctx context.Context, filter domainapartment.Filter) ([]*domainapartment.Apartment, error) {
	q := bson.M{}
	if filter.OwnerID != "" {
		q["owner_id"] = string(filter.OwnerID)
	}
	if filter.Availability != "" {
		q["availability"] = string(filter.Availability)
	}
	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []apartmentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainapartment.Apartment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

// Save upserts with an optimistic version check. Availability is written only
// on insert; afterwards SetAvailability owns it.
func (r *ApartmentRepository) Save(ctx context.Context, apt *domainapartment.Apartment) error {
	doc := newApartmentDocument(apt)
	next := apt.Version + 1
	set := bson.M{
		"owner_id":     doc.OwnerID,
		"title":        doc.Title,
		"address":      doc.Address,
		"city":         doc.City,
		"monthly_rent": doc.MonthlyRent,
		"deposit":      doc.Deposit,
		"avg_rating":   doc.AvgRating,
		"review_count": doc.ReviewCount,
		"created_at":   doc.CreatedAt,
		"updated_at":   doc.UpdatedAt,
		"version":      next,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"availability": doc.Availability},
	}
	filter := bson.M{"_id": doc.ID, "version": apt.Version}
	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainapartment.ErrConcurrentUpdate
		}
		return writeErr(err, domainapartment.ErrConcurrentUpdate)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainapartment.ErrConcurrentUpdate
	}
	apt.Version = next
	return nil
}

// SetAvailability is a compare-and-swap on the availability field. Losing the
// race to a concurrent transaction is reported like a failed comparison.
func (r *ApartmentRepository) SetAvailability(ctx context.Context, id domainapartment.ID, expect, next domainapartment.Availability) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": string(id), "availability": string(expect)},
		bson.M{"$set": bson.M{"availability": string(next)}},
	)
	if err != nil {
		return writeErr(err, domainapartment.ErrAvailabilityConflict)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if n == 0 {
		return domainapartment.ErrNotFound
	}
	return domainapartment.ErrAvailabilityConflict
}

type apartmentDocument struct {
	ID           string        `bson:"_id"`
	OwnerID      string        `bson:"owner_id"`
	Title        string        `bson:"title"`
	Address      string        `bson:"address"`
	City         string        `bson:"city"`
	MonthlyRent  moneyDocument `bson:"monthly_rent"`
	Deposit      moneyDocument `bson:"deposit"`
	Availability string        `bson:"availability"`
	AvgRating    float64       `bson:"avg_rating"`
	ReviewCount  int           `bson:"review_count"`
	CreatedAt    int64         `bson:"created_at"`
	UpdatedAt    int64         `bson:"updated_at"`
	Version      int64         `bson:"version"`
}

func newApartmentDocument(a *domainapartment.Apartment) apartmentDocument {
	return apartmentDocument{
		ID:           string(a.ID),
		OwnerID:      string(a.OwnerID),
		Title:        a.Title,
		Address:      a.Address,
		City:         a.City,
		MonthlyRent:  newMoneyDocument(a.MonthlyRent),
		Deposit:      newMoneyDocument(a.Deposit),
		Availability: string(a.Availability),
		AvgRating:    a.AvgRating,
		ReviewCount:  a.ReviewCount,
		CreatedAt:    timeToTimestamp(a.CreatedAt),
		UpdatedAt:    timeToTimestamp(a.UpdatedAt),
		Version:      a.Version,
	}
}

func (d apartmentDocument) toAggregate() *domainapartment.Apartment {
	return &domainapartment.Apartment{
		ID:           domainapartment.ID(d.ID),
		OwnerID:      domainuser.ID(d.OwnerID),
		Title:        d.Title,
		Address:      d.Address,
		City:         d.City,
		MonthlyRent:  d.MonthlyRent.toMoney(),
		Deposit:      d.Deposit.toMoney(),
		Availability: domainapartment.Availability(d.Availability),
		AvgRating:    d.AvgRating,
		ReviewCount:  d.ReviewCount,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
		Version:      d.Version,
	}
}

var _ domainapartment.Repository = (*ApartmentRepository)(nil)
