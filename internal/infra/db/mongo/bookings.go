package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	"vidaview/internal/domain/shared/daterange"
	domainuser "vidaview/internal/domain/user"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(colBookings)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainbooking.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

// Create reserves the code before inserting, so a taken code is reported
// without aborting the caller's transaction.
func (r *BookingRepository) Create(ctx context.Context, b *domainbooking.Booking) error {
	if err := reserveCode(ctx, r.col.Database(), codeKindBooking, b.Code, domainbooking.ErrDuplicateCode); err != nil {
		return err
	}
	doc := newBookingDocument(b)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return insertErr(ctx, err, domainbooking.ErrDuplicateCode)
	}
	b.Version = 1
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	doc.Version = b.Version + 1
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": b.Version}, doc)
	if err != nil {
		return writeErr(err, domainbooking.ErrConcurrentUpdate)
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return domainbooking.ErrNotFound
		}
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	q := bson.M{}
	if filter.TenantID != "" {
		q["tenant_id"] = string(filter.TenantID)
	}
	inFilter(q, "apartment_id", filter.ApartmentIDs)
	if len(filter.Statuses) > 0 {
		inFilter(q, "status", filter.Statuses)
	}
	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type bookingDocument struct {
	ID              string          `bson:"_id"`
	Code            string          `bson:"code"`
	ApartmentID     string          `bson:"apartment_id"`
	TenantID        string          `bson:"tenant_id"`
	Term            rangeDocument   `bson:"term"`
	TotalMonths     int             `bson:"total_months"`
	Amounts         amountsDocument `bson:"amounts"`
	Status          string          `bson:"status"`
	RejectionReason string          `bson:"rejection_reason,omitempty"`
	ApprovedBy      string          `bson:"approved_by,omitempty"`
	ApprovedAt      int64           `bson:"approved_at,omitempty"`
	Notes           string          `bson:"notes,omitempty"`
	CreatedAt       int64           `bson:"created_at"`
	UpdatedAt       int64           `bson:"updated_at"`
	Version         int64           `bson:"version"`
}

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

type amountsDocument struct {
	MonthlyRent    moneyDocument `bson:"monthly_rent"`
	DepositPaid    moneyDocument `bson:"deposit_paid"`
	UtilityDeposit moneyDocument `bson:"utility_deposit"`
	AdminFee       moneyDocument `bson:"admin_fee"`
	Total          moneyDocument `bson:"total"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:          string(b.ID),
		Code:        b.Code,
		ApartmentID: string(b.ApartmentID),
		TenantID:    string(b.TenantID),
		Term:        rangeDocument{Start: timeToTimestamp(b.Term.Start), End: timeToTimestamp(b.Term.End)},
		TotalMonths: b.TotalMonths,
		Amounts: amountsDocument{
			MonthlyRent:    newMoneyDocument(b.Amounts.MonthlyRent),
			DepositPaid:    newMoneyDocument(b.Amounts.DepositPaid),
			UtilityDeposit: newMoneyDocument(b.Amounts.UtilityDeposit),
			AdminFee:       newMoneyDocument(b.Amounts.AdminFee),
			Total:          newMoneyDocument(b.Amounts.Total),
		},
		Status:          string(b.Status),
		RejectionReason: b.RejectionReason,
		ApprovedBy:      string(b.ApprovedBy),
		ApprovedAt:      timeToTimestamp(b.ApprovedAt),
		Notes:           b.Notes,
		CreatedAt:       timeToTimestamp(b.CreatedAt),
		UpdatedAt:       timeToTimestamp(b.UpdatedAt),
		Version:         b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:          domainbooking.ID(d.ID),
		Code:        d.Code,
		ApartmentID: domainapartment.ID(d.ApartmentID),
		TenantID:    domainuser.ID(d.TenantID),
		Term:        daterange.DateRange{Start: timestampToTime(d.Term.Start), End: timestampToTime(d.Term.End)},
		TotalMonths: d.TotalMonths,
		Amounts: domainbooking.Amounts{
			MonthlyRent:    d.Amounts.MonthlyRent.toMoney(),
			DepositPaid:    d.Amounts.DepositPaid.toMoney(),
			UtilityDeposit: d.Amounts.UtilityDeposit.toMoney(),
			AdminFee:       d.Amounts.AdminFee.toMoney(),
			Total:          d.Amounts.Total.toMoney(),
		},
		Status:          domainbooking.Status(d.Status),
		RejectionReason: d.RejectionReason,
		ApprovedBy:      domainuser.ID(d.ApprovedBy),
		ApprovedAt:      timestampToTime(d.ApprovedAt),
		Notes:           d.Notes,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
