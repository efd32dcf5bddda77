package uow

import (
	"context"

	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainreviews "vidaview/internal/domain/reviews"
)

// UnitOfWork coordinates the ledger repositories inside a transaction boundary.
type UnitOfWork interface {
	Apartments() domainapartment.Repository
	Bookings() domainbooking.Repository
	Payments() domainpayment.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
