package booking

import (
	"context"
	"sort"
	"strings"

	"vidaview/internal/app/access"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/queries"
	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainuser "vidaview/internal/domain/user"
)

const (
	getBookingKey   = "booking.get"
	listBookingsKey = "booking.list"
)

type GetBookingQuery struct {
	Actor     access.Actor
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

// GetBookingHandler returns a booking to its tenant, the apartment owner or an admin.
type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	if strings.TrimSpace(q.BookingID) == "" {
		return dto.Booking{}, errBookingIDRequired
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	b, err := unit.Bookings().ByID(execCtx, domainbooking.ID(q.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	apt, err := unit.Apartments().ByID(execCtx, b.ApartmentID)
	if err != nil {
		return dto.Booking{}, err
	}
	if err := access.ViewBooking(q.Actor, b, apt); err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(b, apt), nil
}

type ListBookingsQuery struct {
	Actor  access.Actor
	Status string
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

// ListBookingsHandler scopes the list by role: tenants see their own bookings,
// owners the bookings of their apartments, admins everything.
type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (dto.BookingCollection, error) {
	if q.Actor.IsZero() {
		return dto.BookingCollection{}, access.ErrUnauthenticated
	}
	filter := domainbooking.Filter{}
	if status := strings.TrimSpace(q.Status); status != "" {
		parsed, err := domainbooking.ParseStatus(status)
		if err != nil {
			return dto.BookingCollection{}, err
		}
		filter.Statuses = []domainbooking.Status{parsed}
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	apartments := map[domainapartment.ID]*domainapartment.Apartment{}
	switch q.Actor.Role {
	case domainuser.RoleTenant:
		filter.TenantID = q.Actor.UserID
	case domainuser.RoleOwner:
		owned, err := unit.Apartments().List(execCtx, domainapartment.Filter{OwnerID: q.Actor.UserID})
		if err != nil {
			return dto.BookingCollection{}, err
		}
		filter.ApartmentIDs = make([]domainapartment.ID, 0, len(owned))
		for _, apt := range owned {
			filter.ApartmentIDs = append(filter.ApartmentIDs, apt.ID)
			apartments[apt.ID] = apt
		}
	case domainuser.RoleAdmin:
	default:
		return dto.BookingCollection{}, access.ErrForbiddenRole
	}

	list, err := unit.Bookings().List(execCtx, filter)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	items := make([]dto.Booking, 0, len(list))
	for _, b := range list {
		apt, ok := apartments[b.ApartmentID]
		if !ok {
			apt, err = unit.Apartments().ByID(execCtx, b.ApartmentID)
			if err != nil {
				return dto.BookingCollection{}, err
			}
			apartments[b.ApartmentID] = apt
		}
		items = append(items, dto.MapBooking(b, apt))
	}
	return dto.BookingCollection{Items: items, Total: len(items)}, nil
}

var _ queries.Handler[GetBookingQuery, dto.Booking] = (*GetBookingHandler)(nil)
var _ queries.Handler[ListBookingsQuery, dto.BookingCollection] = (*ListBookingsHandler)(nil)
