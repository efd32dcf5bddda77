package reviews_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/app/access"
	"vidaview/internal/app/handlers/reviews"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/policies"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	"vidaview/internal/domain/shared/daterange"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/money"
	"vidaview/internal/domain/user"
	"vidaview/internal/infra/storage/memory"
)

var (
	owner    = access.Actor{UserID: "owner-1", Role: user.RoleOwner}
	tenant   = access.Actor{UserID: "tenant-1", Role: user.RoleTenant}
	stranger = access.Actor{UserID: "tenant-9", Role: user.RoleTenant}
	admin    = access.Actor{UserID: "admin-1", Role: user.RoleAdmin}
	fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

type discardNotifier struct{}

func (discardNotifier) Enqueue(context.Context, policies.Notification) error { return nil }

type fixture struct {
	factory memory.Factory
	deps    support.Deps
	apt     *domainapartment.Apartment
	stays   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{factory: memory.NewFactory()}
	f.deps = support.Deps{
		UoWFactory: f.factory,
		Notifier:   discardNotifier{},
		Outbox:     memory.NewOutbox(),
		Clock:      func() time.Time { return fixedNow },
	}
	apt, err := domainapartment.New(domainapartment.CreateParams{
		ID:          "apt-1",
		OwnerID:     owner.UserID,
		Title:       "Unit 12A",
		MonthlyRent: money.Must(5_000_000, "IDR"),
		Deposit:     money.Must(10_000_000, "IDR"),
		Now:         fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.ApartmentsRepo.Save(context.Background(), apt))
	f.apt = apt
	return f
}

// completedStay stores a booking of the fixture apartment that already ran its course.
func (f *fixture) completedStay(t *testing.T, tenantID user.ID) {
	t.Helper()
	f.stays++
	start := fixedNow.AddDate(-1, -f.stays, 0)
	term, err := daterange.New(start, start.AddDate(0, 6, 0))
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:        domainbooking.ID(fmt.Sprintf("bk-%d", f.stays)),
		Code:      fmt.Sprintf("BK20250101%03d", f.stays),
		Apartment: f.apt,
		TenantID:  tenantID,
		Term:      term,
		Now:       start,
	})
	require.NoError(t, err)
	require.NoError(t, b.Approve(owner.UserID, start))
	require.NoError(t, b.Activate(start))
	require.NoError(t, b.Complete(term.End))
	require.NoError(t, f.factory.BookingsRepo.Create(context.Background(), b))
}

func (f *fixture) submit(actor access.Actor, rating int) (string, error) {
	h := &reviews.SubmitReviewHandler{Deps: f.deps}
	res, err := h.Handle(context.Background(), reviews.SubmitReviewCommand{
		Actor:       actor,
		ApartmentID: string(f.apt.ID),
		Rating:      rating,
		Comment:     "quiet and clean",
	})
	return res.ID, err
}

func (f *fixture) approve(t *testing.T, id string) {
	t.Helper()
	h := &reviews.ApproveReviewHandler{Deps: f.deps}
	_, err := h.Handle(context.Background(), reviews.ApproveReviewCommand{Actor: owner, ReviewID: id})
	require.NoError(t, err)
}

func (f *fixture) rating(t *testing.T) (float64, int) {
	t.Helper()
	apt, err := f.factory.ApartmentsRepo.ByID(context.Background(), f.apt.ID)
	require.NoError(t, err)
	return apt.AvgRating, apt.ReviewCount
}

func TestSubmitReviewValidatesRatingFirst(t *testing.T) {
	f := newFixture(t)
	_, err := f.submit(stranger, 6)
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.submit(stranger, 0)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestSubmitReviewRequiresCompletedStay(t *testing.T) {
	f := newFixture(t)
	_, err := f.submit(stranger, 4)
	require.ErrorIs(t, err, errs.ErrAuthorization)

	_, err = f.submit(owner, 4)
	require.ErrorIs(t, err, errs.ErrAuthorization)
}

func TestSubmitReviewOncePerBooking(t *testing.T) {
	f := newFixture(t)
	f.completedStay(t, tenant.UserID)

	id, err := f.submit(tenant, 4)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = f.submit(tenant, 5)
	require.ErrorIs(t, err, errs.ErrConflict)

	f.completedStay(t, tenant.UserID)
	_, err = f.submit(tenant, 5)
	require.NoError(t, err)
}

func TestRatingTracksApprovedReviews(t *testing.T) {
	f := newFixture(t)
	f.completedStay(t, tenant.UserID)
	f.completedStay(t, tenant.UserID)
	f.completedStay(t, stranger.UserID)

	first, err := f.submit(tenant, 5)
	require.NoError(t, err)
	second, err := f.submit(tenant, 4)
	require.NoError(t, err)
	third, err := f.submit(stranger, 2)
	require.NoError(t, err)

	avg, count := f.rating(t)
	assert.Zero(t, avg)
	assert.Zero(t, count)

	f.approve(t, first)
	f.approve(t, second)
	avg, count = f.rating(t)
	assert.InDelta(t, 4.5, avg, 0.001)
	assert.Equal(t, 2, count)

	h := &reviews.ApproveReviewHandler{Deps: f.deps}
	_, err = h.Handle(context.Background(), reviews.ApproveReviewCommand{Actor: owner, ReviewID: first})
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	f.approve(t, third)
	avg, count = f.rating(t)
	assert.InDelta(t, 3.67, avg, 1e-9)
	assert.Equal(t, 3, count)

	del := &reviews.DeleteReviewHandler{Deps: f.deps}
	_, err = del.Handle(context.Background(), reviews.DeleteReviewCommand{Actor: tenant, ReviewID: third})
	require.ErrorIs(t, err, errs.ErrAuthorization)
	_, err = del.Handle(context.Background(), reviews.DeleteReviewCommand{Actor: admin, ReviewID: third})
	require.NoError(t, err)
	avg, count = f.rating(t)
	assert.InDelta(t, 4.5, avg, 0.001)
	assert.Equal(t, 2, count)
}

func TestApproveReviewRequiresOwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	f.completedStay(t, tenant.UserID)
	id, err := f.submit(tenant, 3)
	require.NoError(t, err)

	h := &reviews.ApproveReviewHandler{Deps: f.deps}
	_, err = h.Handle(context.Background(), reviews.ApproveReviewCommand{Actor: tenant, ReviewID: id})
	require.ErrorIs(t, err, errs.ErrAuthorization)
	_, err = h.Handle(context.Background(), reviews.ApproveReviewCommand{Actor: admin, ReviewID: id})
	require.NoError(t, err)
}

func TestReviewQueries(t *testing.T) {
	f := newFixture(t)
	f.completedStay(t, tenant.UserID)
	f.completedStay(t, tenant.UserID)
	approvedID, err := f.submit(tenant, 5)
	require.NoError(t, err)
	_, err = f.submit(tenant, 3)
	require.NoError(t, err)
	f.approve(t, approvedID)

	public := &reviews.ListApartmentReviewsHandler{UoWFactory: f.factory}
	res, err := public.Handle(context.Background(), reviews.ListApartmentReviewsQuery{ApartmentID: string(f.apt.ID)})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, approvedID, res.Items[0].ID)

	pending := &reviews.ListPendingReviewsHandler{UoWFactory: f.factory}
	res, err = pending.Handle(context.Background(), reviews.ListPendingReviewsQuery{Actor: owner})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	res, err = pending.Handle(context.Background(), reviews.ListPendingReviewsQuery{Actor: access.Actor{UserID: "owner-2", Role: user.RoleOwner}})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	_, err = pending.Handle(context.Background(), reviews.ListPendingReviewsQuery{Actor: tenant})
	require.ErrorIs(t, err, errs.ErrAuthorization)

	mine := &reviews.ListMyReviewsHandler{UoWFactory: f.factory}
	res, err = mine.Handle(context.Background(), reviews.ListMyReviewsQuery{Actor: tenant})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}
