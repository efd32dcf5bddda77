package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainreviews "vidaview/internal/domain/reviews"
	"vidaview/internal/domain/shared/errs"
)

func TestRollbackRestoresUnitWrites(t *testing.T) {
	ctx := context.Background()
	f := NewFactory()
	apt := seedApartment(t, f.ApartmentsRepo.(*ApartmentRepository))
	pending := &domainbooking.Booking{ID: "b1", Code: "BK20260301001", ApartmentID: apt.ID, Status: domainbooking.StatusPending}
	require.NoError(t, f.BookingsRepo.Create(ctx, pending))
	require.NoError(t, f.ReviewsRepo.Create(ctx, &domainreviews.Review{ID: "r1", BookingID: "b0", ApartmentID: apt.ID, Rating: 4}))

	unit, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Apartments().SetAvailability(ctx, apt.ID, domainapartment.Available, domainapartment.Occupied))
	approved, err := unit.Bookings().ByID(ctx, "b1")
	require.NoError(t, err)
	approved.Status = domainbooking.StatusConfirmed
	require.NoError(t, unit.Bookings().Save(ctx, approved))
	require.NoError(t, unit.Bookings().Create(ctx, &domainbooking.Booking{ID: "b2", Code: "BK20260301002", ApartmentID: apt.ID}))
	require.NoError(t, unit.Reviews().Delete(ctx, "r1"))

	require.NoError(t, unit.Rollback(ctx))

	stored, err := f.ApartmentsRepo.ByID(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, domainapartment.Available, stored.Availability)

	b1, err := f.BookingsRepo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, b1.Status)
	assert.Equal(t, int64(1), b1.Version)

	_, err = f.BookingsRepo.ByID(ctx, "b2")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	// the rolled back code is free again
	require.NoError(t, f.BookingsRepo.Create(ctx, &domainbooking.Booking{ID: "b3", Code: "BK20260301002"}))

	review, err := f.ReviewsRepo.ByBooking(ctx, "b0")
	require.NoError(t, err)
	assert.Equal(t, domainreviews.ID("r1"), review.ID)
}

func TestCommitKeepsWritesAndDisarmsRollback(t *testing.T) {
	ctx := context.Background()
	f := NewFactory()
	apt := seedApartment(t, f.ApartmentsRepo.(*ApartmentRepository))

	unit, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Apartments().SetAvailability(ctx, apt.ID, domainapartment.Available, domainapartment.Occupied))
	require.NoError(t, unit.Commit(ctx))
	require.NoError(t, unit.Rollback(ctx))

	stored, err := f.ApartmentsRepo.ByID(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, domainapartment.Occupied, stored.Availability)
}

func TestFailedWriteLeavesNothingToUndo(t *testing.T) {
	ctx := context.Background()
	f := NewFactory()
	apt := seedApartment(t, f.ApartmentsRepo.(*ApartmentRepository))

	unit, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	err = unit.Apartments().SetAvailability(ctx, apt.ID, domainapartment.Occupied, domainapartment.Available)
	require.ErrorIs(t, err, domainapartment.ErrAvailabilityConflict)

	// another unit claims the apartment; the first unit's rollback must not undo it
	other, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, other.Apartments().SetAvailability(ctx, apt.ID, domainapartment.Available, domainapartment.Occupied))
	require.NoError(t, other.Commit(ctx))
	require.NoError(t, unit.Rollback(ctx))

	stored, err := f.ApartmentsRepo.ByID(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, domainapartment.Occupied, stored.Availability)
}
