package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vidaview/internal/domain/apartment"
	"vidaview/internal/domain/booking"
	"vidaview/internal/domain/reviews"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/user"
)

var (
	admin   = Actor{UserID: "admin-1", Role: user.RoleAdmin}
	ownerA  = Actor{UserID: "owner-a", Role: user.RoleOwner}
	ownerB  = Actor{UserID: "owner-b", Role: user.RoleOwner}
	tenant1 = Actor{UserID: "tenant-1", Role: user.RoleTenant}
	tenant2 = Actor{UserID: "tenant-2", Role: user.RoleTenant}
)

func TestManageApartment(t *testing.T) {
	apt := &apartment.Apartment{ID: "apt", OwnerID: "owner-a"}

	assert.NoError(t, ManageApartment(admin, apt))
	assert.NoError(t, ManageApartment(ownerA, apt))
	assert.ErrorIs(t, ManageApartment(ownerB, apt), errs.ErrAuthorization)
	assert.ErrorIs(t, ManageApartment(tenant1, apt), ErrForbiddenRole)
	assert.ErrorIs(t, ManageApartment(Actor{}, apt), ErrUnauthenticated)
}

func TestActAsTenant(t *testing.T) {
	b := &booking.Booking{TenantID: "tenant-1"}

	assert.NoError(t, ActAsTenant(tenant1, b))
	assert.ErrorIs(t, ActAsTenant(tenant2, b), ErrNotOwner)
	assert.ErrorIs(t, ActAsTenant(admin, b), ErrForbiddenRole)
}

func TestViewBooking(t *testing.T) {
	apt := &apartment.Apartment{OwnerID: "owner-a"}
	b := &booking.Booking{TenantID: "tenant-1"}

	assert.NoError(t, ViewBooking(admin, b, apt))
	assert.NoError(t, ViewBooking(ownerA, b, apt))
	assert.NoError(t, ViewBooking(tenant1, b, apt))
	assert.Error(t, ViewBooking(ownerB, b, apt))
	assert.Error(t, ViewBooking(tenant2, b, apt))
}

func TestDeleteReview(t *testing.T) {
	r := &reviews.Review{TenantID: "tenant-1"}
	assert.NoError(t, DeleteReview(admin, r))
	assert.NoError(t, DeleteReview(tenant1, r))
	assert.ErrorIs(t, DeleteReview(tenant2, r), ErrNotOwner)
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(tenant1, user.RoleTenant))
	assert.ErrorIs(t, RequireRole(ownerA, user.RoleTenant), ErrForbiddenRole)
	assert.ErrorIs(t, RequireRole(Actor{}, user.RoleTenant), ErrUnauthenticated)
}

func TestScopeKey(t *testing.T) {
	assert.Equal(t, "tenant-1:req-9", tenant1.ScopeKey("req-9"))
	assert.NotEqual(t, tenant1.ScopeKey("req-9"), tenant2.ScopeKey("req-9"))
	assert.Empty(t, tenant1.ScopeKey(""))
}
