package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainnotification "vidaview/internal/domain/notification"
	domainreviews "vidaview/internal/domain/reviews"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/money"
)

func seedApartment(t *testing.T, repo *ApartmentRepository) *domainapartment.Apartment {
	t.Helper()
	apt, err := domainapartment.New(domainapartment.CreateParams{
		ID:          "apt-1",
		OwnerID:     "owner-1",
		Title:       "Unit 12A",
		MonthlyRent: money.Must(5_000_000, "IDR"),
		Deposit:     money.Must(10_000_000, "IDR"),
		Now:         time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), apt))
	return apt
}

func TestSetAvailabilityIsCompareAndSwap(t *testing.T) {
	repo := NewApartmentRepository()
	apt := seedApartment(t, repo)
	ctx := context.Background()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.SetAvailability(ctx, apt.ID, domainapartment.Available, domainapartment.Occupied); err == nil {
				atomic.AddInt32(&wins, 1)
			} else {
				assert.ErrorIs(t, err, errs.ErrConflict)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)

	stored, err := repo.ByID(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, domainapartment.Occupied, stored.Availability)
}

func TestApartmentSaveKeepsStoredAvailability(t *testing.T) {
	repo := NewApartmentRepository()
	apt := seedApartment(t, repo)
	ctx := context.Background()

	stale, err := repo.ByID(ctx, apt.ID)
	require.NoError(t, err)
	require.NoError(t, repo.SetAvailability(ctx, apt.ID, domainapartment.Available, domainapartment.Occupied))

	stale.UpdateRating([]int{4, 5}, time.Now())
	require.NoError(t, repo.Save(ctx, stale))

	stored, err := repo.ByID(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, domainapartment.Occupied, stored.Availability)
	assert.Equal(t, 4.5, stored.AvgRating)

	stale.Version = 0
	assert.ErrorIs(t, repo.Save(ctx, stale), domainapartment.ErrConcurrentUpdate)
}

func TestBookingCreateRejectsDuplicateCode(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	first := &domainbooking.Booking{ID: "b1", Code: "BK20260301001", Status: domainbooking.StatusPending}
	require.NoError(t, repo.Create(ctx, first))

	dup := &domainbooking.Booking{ID: "b2", Code: "BK20260301001", Status: domainbooking.StatusPending}
	assert.ErrorIs(t, repo.Create(ctx, dup), domainbooking.ErrDuplicateCode)

	loaded, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)
	loaded.Status = domainbooking.StatusConfirmed
	require.NoError(t, repo.Save(ctx, loaded))

	stale := *first
	assert.ErrorIs(t, repo.Save(ctx, &stale), domainbooking.ErrConcurrentUpdate)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReviewUniquePerBooking(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domainreviews.Review{ID: "r1", BookingID: "b1", ApartmentID: "apt-1", Rating: 4}))
	assert.ErrorIs(t, repo.Create(ctx, &domainreviews.Review{ID: "r2", BookingID: "b1", Rating: 5}), domainreviews.ErrDuplicateReview)

	require.NoError(t, repo.Delete(ctx, "r1"))
	require.NoError(t, repo.Create(ctx, &domainreviews.Review{ID: "r3", BookingID: "b1", Rating: 5}))
	got, err := repo.ByBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domainreviews.ID("r3"), got.ID)
}

func TestNotificationRepository(t *testing.T) {
	repo := NewNotificationRepository()
	ctx := context.Background()
	now := time.Now()
	for i, id := range []domainnotification.ID{"n1", "n2", "n3"} {
		require.NoError(t, repo.Insert(ctx, &domainnotification.Notification{ID: id, UserID: "u1", Title: "t", CreatedAt: now.Add(time.Duration(i) * time.Second)}))
	}
	require.NoError(t, repo.Insert(ctx, &domainnotification.Notification{ID: "n1", UserID: "u1", Title: "dup"}))
	require.NoError(t, repo.Insert(ctx, &domainnotification.Notification{ID: "other", UserID: "u2", Title: "t"}))

	list, err := repo.List(ctx, domainnotification.Filter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, domainnotification.ID("n3"), list[0].ID)

	require.NoError(t, repo.MarkRead(ctx, "n1"))
	unread, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	updated, err := repo.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	read := true
	list, err = repo.List(ctx, domainnotification.Filter{UserID: "u1", IsRead: &read, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
