package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainreviews "vidaview/internal/domain/reviews"
)

var ErrFactoryMisconfigured = errors.New("postgres: unit of work factory missing database")

// Factory opens one database transaction per unit of work.
type Factory struct {
	DB *sqlx.DB
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrFactoryMisconfigured
	}
	tx, err := f.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: opts.ReadOnly})
	if err != nil {
		return nil, err
	}
	lock := !opts.ReadOnly
	return &Unit{
		tx:         tx,
		apartments: &ApartmentRepository{db: tx, lock: lock},
		bookings:   &BookingRepository{db: tx, lock: lock},
		payments:   &PaymentRepository{db: tx, lock: lock},
		reviews:    &ReviewRepository{db: tx, lock: lock},
	}, nil
}

type Unit struct {
	tx         *sqlx.Tx
	done       bool
	apartments *ApartmentRepository
	bookings   *BookingRepository
	payments   *PaymentRepository
	reviews    *ReviewRepository
}

func (u *Unit) Apartments() domainapartment.Repository { return u.apartments }
func (u *Unit) Bookings() domainbooking.Repository     { return u.bookings }
func (u *Unit) Payments() domainpayment.Repository     { return u.payments }
func (u *Unit) Reviews() domainreviews.Repository      { return u.reviews }

func (u *Unit) Commit(ctx context.Context) error {
	u.done = true
	return u.tx.Commit()
}

// Rollback after Commit is a no-op.
func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// querier is satisfied by *sqlx.DB and *sqlx.Tx.
type querier interface {
	sqlx.ExtContext
}

var _ uow.UoWFactory = Factory{}
