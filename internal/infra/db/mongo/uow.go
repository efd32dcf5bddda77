package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainreviews "vidaview/internal/domain/reviews"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Transactions need a replica set.
type Factory struct {
	DB *mongo.Database

	ApartmentsRepo domainapartment.Repository
	BookingsRepo   domainbooking.Repository
	PaymentsRepo   domainpayment.Repository
	ReviewsRepo    domainreviews.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds a factory over the Mongo repositories of db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:             db,
		ApartmentsRepo: NewApartmentRepository(db),
		BookingsRepo:   NewBookingRepository(db),
		PaymentsRepo:   NewPaymentRepository(db),
		ReviewsRepo:    NewReviewRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Majority())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:    session,
		apartments: f.ApartmentsRepo,
		bookings:   f.BookingsRepo,
		payments:   f.PaymentsRepo,
		reviews:    f.ReviewsRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	apartments domainapartment.Repository
	bookings   domainbooking.Repository
	payments   domainpayment.Repository
	reviews    domainreviews.Repository
}

func (u *Unit) Apartments() domainapartment.Repository {
	return u.apartments
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Payments() domainpayment.Repository {
	return u.payments
}

func (u *Unit) Reviews() domainreviews.Repository {
	return u.reviews
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
