package memory

import (
	"context"
	"errors"

	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainreviews "vidaview/internal/domain/reviews"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ApartmentsRepo domainapartment.Repository
	BookingsRepo   domainbooking.Repository
	PaymentsRepo   domainpayment.Repository
	ReviewsRepo    domainreviews.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory over fresh, empty repositories.
func NewFactory() Factory {
	return Factory{
		ApartmentsRepo: NewApartmentRepository(),
		BookingsRepo:   NewBookingRepository(),
		PaymentsRepo:   NewPaymentRepository(),
		ReviewsRepo:    NewReviewRepository(),
	}
}

// Begin starts a lightweight transaction boundary. There is no isolation:
// writes are visible to other units immediately and availability rests on the
// repository compare-and-swap. Rollback puts back every record the unit wrote.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ApartmentsRepo == nil || f.BookingsRepo == nil || f.PaymentsRepo == nil || f.ReviewsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	if opts.ReadOnly {
		return &Unit{
			apartments: f.ApartmentsRepo,
			bookings:   f.BookingsRepo,
			payments:   f.PaymentsRepo,
			reviews:    f.ReviewsRepo,
		}, nil
	}
	j := &journal{}
	aptStore, _ := f.ApartmentsRepo.(restorable[domainapartment.ID, domainapartment.Apartment])
	bookingStore, _ := f.BookingsRepo.(restorable[domainbooking.ID, domainbooking.Booking])
	paymentStore, _ := f.PaymentsRepo.(restorable[domainpayment.ID, domainpayment.Payment])
	reviewStore, _ := f.ReviewsRepo.(restorable[domainreviews.ID, domainreviews.Review])
	return &Unit{
		apartments: journaledApartments{Repository: f.ApartmentsRepo, store: aptStore, journal: j},
		bookings:   journaledBookings{Repository: f.BookingsRepo, store: bookingStore, journal: j},
		payments:   journaledPayments{Repository: f.PaymentsRepo, store: paymentStore, journal: j},
		reviews:    journaledReviews{Repository: f.ReviewsRepo, store: reviewStore, journal: j},
		journal:    j,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	apartments domainapartment.Repository
	bookings   domainbooking.Repository
	payments   domainpayment.Repository
	reviews    domainreviews.Repository
	journal    *journal
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
	if u.journal != nil {
		u.journal.forget()
	}
	return nil
}

// Rollback undoes the unit's writes, newest first. It is a no-op after Commit.
func (u *Unit) Rollback(ctx context.Context) error {
	if u.journal != nil {
		u.journal.unwind()
	}
	return nil
}
