package dashboard

import (
	"context"
	"time"

	"vidaview/internal/app/access"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/queries"
	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	domainreviews "vidaview/internal/domain/reviews"
	domainuser "vidaview/internal/domain/user"
)

const (
	adminStatsKey  = "dashboard.admin"
	ownerStatsKey  = "dashboard.owner"
	tenantStatsKey = "dashboard.tenant"

	DefaultCurrency = "IDR"
)

// UserCounter reports active users per role.
type UserCounter interface {
	CountByRole(ctx context.Context) (map[domainuser.Role]int, error)
}

// Reader carries what every dashboard query needs. Revenue is reported in
// Currency only; payments in other currencies are left out of the sums.
type Reader struct {
	UoWFactory uow.UoWFactory
	Users      UserCounter
	Currency   string
	Clock      func() time.Time
}

func (r Reader) now() time.Time {
	if r.Clock != nil {
		return r.Clock().UTC()
	}
	return time.Now().UTC()
}

func (r Reader) currency() string {
	if r.Currency != "" {
		return r.Currency
	}
	return DefaultCurrency
}

func (r Reader) read(ctx context.Context, ownerID, tenantID domainuser.ID, fn func(context.Context, uow.UnitOfWork, scope) error) error {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, r.UoWFactory)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	s, err := loadScope(execCtx, unit, ownerID, tenantID)
	if err != nil {
		return err
	}
	return fn(execCtx, unit, s)
}

type AdminStatsQuery struct {
	Actor access.Actor
}

func (q AdminStatsQuery) Key() string { return adminStatsKey }

type AdminStatsHandler struct {
	Reader
}

func (h *AdminStatsHandler) Handle(ctx context.Context, q AdminStatsQuery) (dto.AdminStats, error) {
	if err := access.RequireRole(q.Actor, domainuser.RoleAdmin); err != nil {
		return dto.AdminStats{}, err
	}
	var stats dto.AdminStats
	if h.Users != nil {
		counts, err := h.Users.CountByRole(ctx)
		if err != nil {
			return dto.AdminStats{}, err
		}
		stats.Users = dto.UserStats{
			Tenants: counts[domainuser.RoleTenant],
			Owners:  counts[domainuser.RoleOwner],
			Admins:  counts[domainuser.RoleAdmin],
		}
		stats.Users.Total = stats.Users.Tenants + stats.Users.Owners + stats.Users.Admins
	}

	err := h.read(ctx, "", "", func(ctx context.Context, unit uow.UnitOfWork, s scope) error {
		occupied := s.apartmentsWith(domainapartment.Occupied)
		stats.Apartments = dto.ApartmentStats{
			Total:         len(s.apartments),
			Available:     s.apartmentsWith(domainapartment.Available),
			Occupied:      occupied,
			OccupancyRate: occupancyRate(occupied, len(s.apartments)),
		}
		stats.Bookings = dto.BookingStats{
			Total:     len(s.bookings),
			Pending:   s.bookingsWith(domainbooking.StatusPending),
			Active:    s.bookingsWith(domainbooking.StatusActive),
			Completed: s.bookingsWith(domainbooking.StatusCompleted),
		}
		stats.Revenue = dto.RevenueStats{
			Total:    s.revenue(h.currency(), time.Time{}),
			Monthly:  s.revenue(h.currency(), h.now()),
			Currency: h.currency(),
		}
		pending := false
		list, err := unit.Reviews().List(ctx, domainreviews.Filter{Approved: &pending})
		if err != nil {
			return err
		}
		stats.PendingReviews = len(list)
		return nil
	})
	if err != nil {
		return dto.AdminStats{}, err
	}
	return stats, nil
}

type OwnerStatsQuery struct {
	Actor access.Actor
}

func (q OwnerStatsQuery) Key() string { return ownerStatsKey }

type OwnerStatsHandler struct {
	Reader
}

func (h *OwnerStatsHandler) Handle(ctx context.Context, q OwnerStatsQuery) (dto.OwnerStats, error) {
	if err := access.RequireRole(q.Actor, domainuser.RoleOwner); err != nil {
		return dto.OwnerStats{}, err
	}
	var stats dto.OwnerStats
	err := h.read(ctx, q.Actor.UserID, "", func(ctx context.Context, unit uow.UnitOfWork, s scope) error {
		occupied := s.apartmentsWith(domainapartment.Occupied)
		stats.Units = dto.ApartmentStats{
			Total:         len(s.apartments),
			Available:     s.apartmentsWith(domainapartment.Available),
			Occupied:      occupied,
			OccupancyRate: occupancyRate(occupied, len(s.apartments)),
		}
		stats.Bookings = dto.BookingStats{
			Total:   len(s.bookings),
			Pending: s.bookingsWith(domainbooking.StatusPending),
			Active:  s.bookingsWith(domainbooking.StatusActive),
		}
		stats.Revenue = dto.RevenueStats{
			Total:    s.revenue(h.currency(), time.Time{}),
			Monthly:  s.revenue(h.currency(), h.now()),
			Currency: h.currency(),
		}
		if len(s.apartments) == 0 {
			return nil
		}
		ids := make([]domainapartment.ID, 0, len(s.apartments))
		for _, apt := range s.apartments {
			ids = append(ids, apt.ID)
		}
		approved := true
		list, err := unit.Reviews().List(ctx, domainreviews.Filter{ApartmentIDs: ids, Approved: &approved})
		if err != nil {
			return err
		}
		stats.Reviews = dto.ReviewStats{
			Total:         len(list),
			AverageRating: round2(domainapartment.MeanRating(domainreviews.Ratings(list))),
		}
		return nil
	})
	if err != nil {
		return dto.OwnerStats{}, err
	}
	return stats, nil
}

type TenantStatsQuery struct {
	Actor access.Actor
}

func (q TenantStatsQuery) Key() string { return tenantStatsKey }

type TenantStatsHandler struct {
	Reader
}

func (h *TenantStatsHandler) Handle(ctx context.Context, q TenantStatsQuery) (dto.TenantStats, error) {
	if err := access.RequireRole(q.Actor, domainuser.RoleTenant); err != nil {
		return dto.TenantStats{}, err
	}
	var stats dto.TenantStats
	err := h.read(ctx, "", q.Actor.UserID, func(ctx context.Context, unit uow.UnitOfWork, s scope) error {
		stats.Bookings = dto.BookingStats{
			Total:     len(s.bookings),
			Pending:   s.bookingsWith(domainbooking.StatusPending),
			Active:    s.bookingsWith(domainbooking.StatusActive),
			Completed: s.bookingsWith(domainbooking.StatusCompleted),
		}
		stats.Payments = dto.PaymentStats{
			TotalSpent: s.revenue(h.currency(), time.Time{}),
			Pending:    s.paymentsWith(domainpayment.StatusPending),
			Currency:   h.currency(),
		}
		list, err := unit.Reviews().List(ctx, domainreviews.Filter{TenantID: q.Actor.UserID})
		if err != nil {
			return err
		}
		stats.Reviews = len(list)
		return nil
	})
	if err != nil {
		return dto.TenantStats{}, err
	}
	return stats, nil
}

var _ queries.Handler[AdminStatsQuery, dto.AdminStats] = (*AdminStatsHandler)(nil)
var _ queries.Handler[OwnerStatsQuery, dto.OwnerStats] = (*OwnerStatsHandler)(nil)
var _ queries.Handler[TenantStatsQuery, dto.TenantStats] = (*TenantStatsHandler)(nil)
