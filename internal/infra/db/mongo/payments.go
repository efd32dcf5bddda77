package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainuser "vidaview/internal/domain/user"
)

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(colPayments)}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.ID) (*domainpayment.Payment, error) {
	var doc paymentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainpayment.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

// Create reserves the code before inserting, so a taken code is reported
// without aborting the caller's transaction.
func (r *PaymentRepository) Create(ctx context.Context, p *domainpayment.Payment) error {
	if err := reserveCode(ctx, r.col.Database(), codeKindPayment, p.Code, domainpayment.ErrDuplicateCode); err != nil {
		return err
	}
	doc := newPaymentDocument(p)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return insertErr(ctx, err, domainpayment.ErrDuplicateCode)
	}
	p.Version = 1
	return nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	doc := newPaymentDocument(p)
	doc.Version = p.Version + 1
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": p.Version}, doc)
	if err != nil {
		return writeErr(err, domainpayment.ErrConcurrentUpdate)
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return domainpayment.ErrNotFound
		}
		return domainpayment.ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

func (r *PaymentRepository) List(ctx context.Context, filter domainpayment.Filter) ([]*domainpayment.Payment, error) {
	q := bson.M{}
	inFilter(q, "booking_id", filter.BookingIDs)
	if len(filter.Statuses) > 0 {
		inFilter(q, "status", filter.Statuses)
	}
	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []paymentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainpayment.Payment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type paymentDocument struct {
	ID            string        `bson:"_id"`
	Code          string        `bson:"code"`
	BookingID     string        `bson:"booking_id"`
	Amount        moneyDocument `bson:"amount"`
	Type          string        `bson:"type"`
	Method        string        `bson:"method"`
	Status        string        `bson:"status"`
	TransactionID string        `bson:"transaction_id,omitempty"`
	DueDate       int64         `bson:"due_date,omitempty"`
	PaymentDate   int64         `bson:"payment_date,omitempty"`
	ConfirmedBy   string        `bson:"confirmed_by,omitempty"`
	FailureReason string        `bson:"failure_reason,omitempty"`
	Notes         string        `bson:"notes,omitempty"`
	CreatedAt     int64         `bson:"created_at"`
	UpdatedAt     int64         `bson:"updated_at"`
	Version       int64         `bson:"version"`
}

func newPaymentDocument(p *domainpayment.Payment) paymentDocument {
	return paymentDocument{
		ID:            string(p.ID),
		Code:          p.Code,
		BookingID:     string(p.BookingID),
		Amount:        newMoneyDocument(p.Amount),
		Type:          string(p.Type),
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		DueDate:       timeToTimestamp(p.DueDate),
		PaymentDate:   timeToTimestamp(p.PaymentDate),
		ConfirmedBy:   string(p.ConfirmedBy),
		FailureReason: p.FailureReason,
		Notes:         p.Notes,
		CreatedAt:     timeToTimestamp(p.CreatedAt),
		UpdatedAt:     timeToTimestamp(p.UpdatedAt),
		Version:       p.Version,
	}
}

func (d paymentDocument) toAggregate() *domainpayment.Payment {
	return &domainpayment.Payment{
		ID:            domainpayment.ID(d.ID),
		Code:          d.Code,
		BookingID:     domainbooking.ID(d.BookingID),
		Amount:        d.Amount.toMoney(),
		Type:          domainpayment.Type(d.Type),
		Method:        domainpayment.Method(d.Method),
		Status:        domainpayment.Status(d.Status),
		TransactionID: d.TransactionID,
		DueDate:       timestampToTime(d.DueDate),
		PaymentDate:   timestampToTime(d.PaymentDate),
		ConfirmedBy:   domainuser.ID(d.ConfirmedBy),
		FailureReason: d.FailureReason,
		Notes:         d.Notes,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
}

var _ domainpayment.Repository = (*PaymentRepository)(nil)
