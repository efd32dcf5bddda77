package dashboard_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/app/access"
	"vidaview/internal/app/handlers/dashboard"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainreviews "vidaview/internal/domain/reviews"
	"vidaview/internal/domain/shared/daterange"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/money"
	"vidaview/internal/domain/user"
	"vidaview/internal/infra/storage/memory"
)

var (
	owner    = access.Actor{UserID: "owner-1", Role: user.RoleOwner}
	owner2   = access.Actor{UserID: "owner-2", Role: user.RoleOwner}
	tenant   = access.Actor{UserID: "tenant-1", Role: user.RoleTenant}
	admin    = access.Actor{UserID: "admin-1", Role: user.RoleAdmin}
	fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
)

type ledger struct {
	factory memory.Factory
	users   *memory.UserRepository
	seq     int
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	l := &ledger{factory: memory.NewFactory(), users: memory.NewUserRepository()}
	for i, row := range []struct {
		id   user.ID
		role user.Role
	}{{"tenant-1", user.RoleTenant}, {"tenant-2", user.RoleTenant}, {"owner-1", user.RoleOwner}, {"owner-2", user.RoleOwner}, {"admin-1", user.RoleAdmin}} {
		u, err := user.NewUser(user.CreateParams{
			ID:           row.id,
			Email:        fmt.Sprintf("user%d@example.com", i),
			Name:         string(row.id),
			PasswordHash: "hash",
			Role:         row.role,
			CreatedAt:    fixedNow,
		})
		require.NoError(t, err)
		require.NoError(t, l.users.Save(context.Background(), u))
	}
	return l
}

func (l *ledger) apartment(t *testing.T, id string, ownerID user.ID) *domainapartment.Apartment {
	t.Helper()
	apt, err := domainapartment.New(domainapartment.CreateParams{
		ID:          domainapartment.ID(id),
		OwnerID:     ownerID,
		Title:       id,
		MonthlyRent: money.Must(1_000, "IDR"),
		Deposit:     money.Must(0, "IDR"),
		Now:         fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, l.factory.ApartmentsRepo.Save(context.Background(), apt))
	return apt
}

func (l *ledger) booking(t *testing.T, apt *domainapartment.Apartment, tenantID user.ID, status domainbooking.Status) *domainbooking.Booking {
	t.Helper()
	l.seq++
	term, err := daterange.New(fixedNow, fixedNow.AddDate(0, 6, 0))
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:        domainbooking.ID(fmt.Sprintf("bk-%d", l.seq)),
		Code:      fmt.Sprintf("BK20260615%03d", l.seq),
		Apartment: apt,
		TenantID:  tenantID,
		Term:      term,
		Now:       fixedNow,
	})
	require.NoError(t, err)
	if status != domainbooking.StatusPending {
		require.NoError(t, b.Approve(owner.UserID, fixedNow))
	}
	if status == domainbooking.StatusActive || status == domainbooking.StatusCompleted {
		require.NoError(t, b.Activate(fixedNow))
	}
	if status == domainbooking.StatusCompleted {
		require.NoError(t, b.Complete(fixedNow))
	}
	require.NoError(t, l.factory.BookingsRepo.Create(context.Background(), b))
	return b
}

// payment stores a payment; a non-zero paidAt confirms it at that time.
func (l *ledger) payment(t *testing.T, b *domainbooking.Booking, amount int64, paidAt time.Time) {
	t.Helper()
	l.seq++
	p, err := domainpayment.New(domainpayment.CreateParams{
		ID:        domainpayment.ID(fmt.Sprintf("pay-%d", l.seq)),
		Code:      fmt.Sprintf("PAY20260615%03d", l.seq),
		BookingID: b.ID,
		Amount:    money.Must(amount, "IDR"),
		Now:       fixedNow,
	})
	require.NoError(t, err)
	if !paidAt.IsZero() {
		require.NoError(t, p.Confirm(admin.UserID, "", paidAt))
	}
	require.NoError(t, l.factory.PaymentsRepo.Create(context.Background(), p))
}

func (l *ledger) review(t *testing.T, b *domainbooking.Booking, rating int, approved bool) {
	t.Helper()
	r, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:          domainreviews.ID("rv-" + string(b.ID)),
		ApartmentID: b.ApartmentID,
		TenantID:    b.TenantID,
		BookingID:   b.ID,
		Rating:      rating,
		Now:         fixedNow,
	})
	require.NoError(t, err)
	if approved {
		require.NoError(t, r.Approve(admin.UserID, fixedNow))
	}
	require.NoError(t, l.factory.ReviewsRepo.Create(context.Background(), r))
}

func (l *ledger) reader() dashboard.Reader {
	return dashboard.Reader{
		UoWFactory: l.factory,
		Users:      l.users,
		Currency:   "IDR",
		Clock:      func() time.Time { return fixedNow },
	}
}

// seed builds three apartments (two of owner-1, one occupied) with bookings,
// payments across months and reviews.
func seed(t *testing.T) *ledger {
	l := newLedger(t)
	a1 := l.apartment(t, "apt-1", owner.UserID)
	a2 := l.apartment(t, "apt-2", owner.UserID)
	a3 := l.apartment(t, "apt-3", owner2.UserID)
	require.NoError(t, l.factory.ApartmentsRepo.SetAvailability(context.Background(), a1.ID, domainapartment.Available, domainapartment.Occupied))

	active := l.booking(t, a1, tenant.UserID, domainbooking.StatusActive)
	done := l.booking(t, a2, tenant.UserID, domainbooking.StatusCompleted)
	_ = l.booking(t, a2, "tenant-2", domainbooking.StatusPending)
	other := l.booking(t, a3, "tenant-2", domainbooking.StatusCompleted)

	l.payment(t, active, 100, fixedNow)
	l.payment(t, active, 200, fixedNow.AddDate(0, -1, 0))
	l.payment(t, done, 300, fixedNow.AddDate(0, -7, 0))
	l.payment(t, done, 50, time.Time{})
	l.payment(t, other, 1_000, fixedNow)

	l.review(t, done, 4, true)
	l.review(t, other, 2, false)
	return l
}

func TestAdminStats(t *testing.T) {
	l := seed(t)
	h := &dashboard.AdminStatsHandler{Reader: l.reader()}

	_, err := h.Handle(context.Background(), dashboard.AdminStatsQuery{Actor: owner})
	require.ErrorIs(t, err, errs.ErrAuthorization)

	stats, err := h.Handle(context.Background(), dashboard.AdminStatsQuery{Actor: admin})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Users.Total)
	assert.Equal(t, 2, stats.Users.Tenants)
	assert.Equal(t, 2, stats.Users.Owners)
	assert.Equal(t, 3, stats.Apartments.Total)
	assert.Equal(t, 1, stats.Apartments.Occupied)
	assert.Equal(t, 33.33, stats.Apartments.OccupancyRate)
	assert.Equal(t, 4, stats.Bookings.Total)
	assert.Equal(t, 1, stats.Bookings.Pending)
	assert.Equal(t, 1, stats.Bookings.Active)
	assert.Equal(t, int64(1_600), stats.Revenue.Total)
	assert.Equal(t, int64(1_100), stats.Revenue.Monthly)
	assert.Equal(t, 1, stats.PendingReviews)
}

func TestOwnerStats(t *testing.T) {
	l := seed(t)
	h := &dashboard.OwnerStatsHandler{Reader: l.reader()}

	stats, err := h.Handle(context.Background(), dashboard.OwnerStatsQuery{Actor: owner})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Units.Total)
	assert.Equal(t, 50.0, stats.Units.OccupancyRate)
	assert.Equal(t, 3, stats.Bookings.Total)
	assert.Equal(t, 1, stats.Bookings.Pending)
	assert.Equal(t, int64(600), stats.Revenue.Total)
	assert.Equal(t, int64(100), stats.Revenue.Monthly)
	assert.Equal(t, 1, stats.Reviews.Total)
	assert.Equal(t, 4.0, stats.Reviews.AverageRating)

	empty, err := h.Handle(context.Background(), dashboard.OwnerStatsQuery{Actor: access.Actor{UserID: "owner-9", Role: user.RoleOwner}})
	require.NoError(t, err)
	assert.Zero(t, empty.Units.Total)
	assert.Zero(t, empty.Revenue.Total)
}

func TestTenantStats(t *testing.T) {
	l := seed(t)
	h := &dashboard.TenantStatsHandler{Reader: l.reader()}

	stats, err := h.Handle(context.Background(), dashboard.TenantStatsQuery{Actor: tenant})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Bookings.Total)
	assert.Equal(t, 1, stats.Bookings.Active)
	assert.Equal(t, 1, stats.Bookings.Completed)
	assert.Equal(t, int64(600), stats.Payments.TotalSpent)
	assert.Equal(t, 1, stats.Payments.Pending)
	assert.Equal(t, 1, stats.Reviews)

	_, err = h.Handle(context.Background(), dashboard.TenantStatsQuery{Actor: admin})
	require.ErrorIs(t, err, errs.ErrAuthorization)
}

func TestRevenueChart(t *testing.T) {
	l := seed(t)
	h := &dashboard.RevenueChartHandler{Reader: l.reader()}

	chart, err := h.Handle(context.Background(), dashboard.RevenueChartQuery{Actor: owner})
	require.NoError(t, err)
	require.Len(t, chart.Points, 6)
	assert.Equal(t, "January 2026", chart.Points[0].Month)
	assert.Equal(t, "June 2026", chart.Points[5].Month)
	assert.Equal(t, int64(100), chart.Points[5].Revenue)
	assert.Equal(t, int64(200), chart.Points[4].Revenue)

	global, err := h.Handle(context.Background(), dashboard.RevenueChartQuery{Actor: admin})
	require.NoError(t, err)
	assert.Equal(t, int64(1_100), global.Points[5].Revenue)

	_, err = h.Handle(context.Background(), dashboard.RevenueChartQuery{Actor: tenant})
	require.ErrorIs(t, err, errs.ErrAuthorization)
}
