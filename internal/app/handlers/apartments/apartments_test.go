package apartments_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/app/access"
	"vidaview/internal/app/handlers/apartments"
	"vidaview/internal/app/handlers/support"
	domainapartment "vidaview/internal/domain/apartment"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/user"
	"vidaview/internal/infra/storage/memory"
)

var (
	owner    = access.Actor{UserID: "owner-1", Role: user.RoleOwner}
	intruder = access.Actor{UserID: "owner-2", Role: user.RoleOwner}
	tenant   = access.Actor{UserID: "tenant-1", Role: user.RoleTenant}
	admin    = access.Actor{UserID: "admin-1", Role: user.RoleAdmin}
)

func newDeps() (memory.Factory, support.Deps) {
	factory := memory.NewFactory()
	return factory, support.Deps{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Clock:      func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func payload(title string) apartments.ApartmentPayload {
	return apartments.ApartmentPayload{Title: title, City: "Jakarta", MonthlyRent: 5_000_000, Deposit: 10_000_000}
}

func TestCreateApartment(t *testing.T) {
	factory, deps := newDeps()
	h := &apartments.CreateApartmentHandler{Deps: deps, Currency: "idr"}

	res, err := h.Handle(context.Background(), apartments.CreateApartmentCommand{Actor: owner, Payload: payload("Unit 1")})
	require.NoError(t, err)
	assert.Equal(t, string(owner.UserID), res.OwnerID)
	assert.Equal(t, "IDR", res.MonthlyRent.Currency)
	assert.Equal(t, string(domainapartment.Available), res.Availability)

	stored, err := factory.ApartmentsRepo.ByID(context.Background(), domainapartment.ID(res.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), stored.MonthlyRent.Amount)

	onBehalf, err := h.Handle(context.Background(), apartments.CreateApartmentCommand{Actor: admin, OwnerID: "owner-9", Payload: payload("Unit 2")})
	require.NoError(t, err)
	assert.Equal(t, "owner-9", onBehalf.OwnerID)

	_, err = h.Handle(context.Background(), apartments.CreateApartmentCommand{Actor: tenant, Payload: payload("Unit 3")})
	require.ErrorIs(t, err, errs.ErrAuthorization)

	bad := payload("Unit 4")
	bad.MonthlyRent = 0
	_, err = h.Handle(context.Background(), apartments.CreateApartmentCommand{Actor: owner, Payload: bad})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpdatePricing(t *testing.T) {
	_, deps := newDeps()
	create := &apartments.CreateApartmentHandler{Deps: deps}
	apt, err := create.Handle(context.Background(), apartments.CreateApartmentCommand{Actor: owner, Payload: payload("Unit 1")})
	require.NoError(t, err)

	h := &apartments.UpdatePricingHandler{Deps: deps}
	_, err = h.Handle(context.Background(), apartments.UpdatePricingCommand{Actor: intruder, ApartmentID: apt.ID, MonthlyRent: 1, Deposit: 0})
	require.ErrorIs(t, err, errs.ErrAuthorization)

	_, err = h.Handle(context.Background(), apartments.UpdatePricingCommand{Actor: owner, ApartmentID: apt.ID, MonthlyRent: -5, Deposit: 0})
	require.ErrorIs(t, err, errs.ErrValidation)

	updated, err := h.Handle(context.Background(), apartments.UpdatePricingCommand{Actor: owner, ApartmentID: apt.ID, MonthlyRent: 6_000_000, Deposit: 12_000_000})
	require.NoError(t, err)
	assert.Equal(t, int64(6_000_000), updated.MonthlyRent.Amount)
	assert.Equal(t, int64(12_000_000), updated.Deposit.Amount)

	_, err = h.Handle(context.Background(), apartments.UpdatePricingCommand{Actor: owner, ApartmentID: "missing", MonthlyRent: 1})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListApartments(t *testing.T) {
	factory, deps := newDeps()
	create := &apartments.CreateApartmentHandler{Deps: deps}
	first, err := create.Handle(context.Background(), apartments.CreateApartmentCommand{Actor: owner, Payload: payload("Unit 1")})
	require.NoError(t, err)
	_, err = create.Handle(context.Background(), apartments.CreateApartmentCommand{Actor: intruder, Payload: payload("Unit 2")})
	require.NoError(t, err)
	require.NoError(t, factory.ApartmentsRepo.SetAvailability(context.Background(), domainapartment.ID(first.ID), domainapartment.Available, domainapartment.Occupied))

	list := &apartments.ListApartmentsHandler{UoWFactory: factory}
	all, err := list.Handle(context.Background(), apartments.ListApartmentsQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	mine, err := list.Handle(context.Background(), apartments.ListApartmentsQuery{OwnerID: string(owner.UserID)})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)

	free, err := list.Handle(context.Background(), apartments.ListApartmentsQuery{Status: "available"})
	require.NoError(t, err)
	require.Len(t, free.Items, 1)
	assert.NotEqual(t, first.ID, free.Items[0].ID)

	_, err = list.Handle(context.Background(), apartments.ListApartmentsQuery{Status: "broken"})
	require.ErrorIs(t, err, errs.ErrValidation)

	get := &apartments.GetApartmentHandler{UoWFactory: factory}
	got, err := get.Handle(context.Background(), apartments.GetApartmentQuery{ApartmentID: first.ID})
	require.NoError(t, err)
	assert.Equal(t, string(domainapartment.Occupied), got.Availability)
}
