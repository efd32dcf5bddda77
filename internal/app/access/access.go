// Package access answers who may act on which ledger resource.
package access

import (
	"vidaview/internal/domain/apartment"
	"vidaview/internal/domain/booking"
	"vidaview/internal/domain/reviews"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/user"
)

var (
	ErrUnauthenticated = errs.Authorization("access: authentication required")
	ErrForbiddenRole   = errs.Authorization("access: role not permitted")
	ErrNotOwner        = errs.Authorization("access: resource belongs to another user")
)

// Actor is the resolved caller of a command or query.
type Actor struct {
	UserID user.ID
	Role   user.Role
}

// System is used by scheduled jobs.
var System = Actor{UserID: "system", Role: user.RoleAdmin}

func (a Actor) IsZero() bool { return a.UserID == "" }

func (a Actor) IsAdmin() bool { return a.Role == user.RoleAdmin }

// ScopeKey prefixes a client supplied key with the actor id. Empty keys stay empty.
func (a Actor) ScopeKey(key string) string {
	if key == "" {
		return ""
	}
	return string(a.UserID) + ":" + key
}

// RequireRole fails unless the actor holds one of roles.
func RequireRole(a Actor, roles ...user.Role) error {
	if a.IsZero() {
		return ErrUnauthenticated
	}
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return ErrForbiddenRole
}

// ManageApartment allows admins and the apartment's owner.
func ManageApartment(a Actor, apt *apartment.Apartment) error {
	if a.IsZero() {
		return ErrUnauthenticated
	}
	switch a.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleOwner:
		if apt != nil && apt.OwnedBy(a.UserID) {
			return nil
		}
		return ErrNotOwner
	case user.RoleTenant:
		return ErrForbiddenRole
	default:
		return ErrForbiddenRole
	}
}

// ActAsTenant allows only the tenant who owns the booking.
func ActAsTenant(a Actor, b *booking.Booking) error {
	if a.IsZero() {
		return ErrUnauthenticated
	}
	switch a.Role {
	case user.RoleTenant:
		if b != nil && b.TenantID == a.UserID {
			return nil
		}
		return ErrNotOwner
	case user.RoleOwner, user.RoleAdmin:
		return ErrForbiddenRole
	default:
		return ErrForbiddenRole
	}
}

// ViewBooking allows the booking's tenant, the apartment's owner and admins.
func ViewBooking(a Actor, b *booking.Booking, apt *apartment.Apartment) error {
	if a.IsZero() {
		return ErrUnauthenticated
	}
	switch a.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleOwner:
		if apt != nil && apt.OwnedBy(a.UserID) {
			return nil
		}
		return ErrNotOwner
	case user.RoleTenant:
		if b != nil && b.TenantID == a.UserID {
			return nil
		}
		return ErrNotOwner
	default:
		return ErrForbiddenRole
	}
}

// DeleteReview allows admins and the review's author.
func DeleteReview(a Actor, r *reviews.Review) error {
	if a.IsZero() {
		return ErrUnauthenticated
	}
	switch a.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleTenant, user.RoleOwner:
		if r != nil && r.TenantID == a.UserID {
			return nil
		}
		return ErrNotOwner
	default:
		return ErrForbiddenRole
	}
}
