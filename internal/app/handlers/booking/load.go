package booking

import (
	"context"
	"fmt"
	"strings"

	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/locking"
	"vidaview/internal/app/policies"
	"vidaview/internal/app/uow"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	"vidaview/internal/domain/notification"
	"vidaview/internal/domain/shared/errs"
)

var errBookingIDRequired = errs.Validation("booking: booking_id is required")

// lockedBooking resolves the booking's apartment with support.Peek, takes the
// apartment lock and only then reads both through the unit, so the caller
// decides on state nobody else is changing.
func lockedBooking(ctx context.Context, deps support.Deps, unit *support.WriteUnit, id string) (*domainbooking.Booking, *domainapartment.Apartment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil, errBookingIDRequired
	}
	aptID, err := support.Peek(ctx, deps.UoWFactory, func(ctx context.Context, view uow.UnitOfWork) (domainapartment.ID, error) {
		b, err := view.Bookings().ByID(ctx, domainbooking.ID(id))
		if err != nil {
			return "", err
		}
		return b.ApartmentID, nil
	})
	if err != nil {
		return nil, nil, err
	}
	release, err := deps.Hold(ctx, locking.ApartmentKey(string(aptID)))
	if err != nil {
		return nil, nil, err
	}
	unit.OnRelease(release)

	b, err := unit.Bookings().ByID(ctx, domainbooking.ID(id))
	if err != nil {
		return nil, nil, err
	}
	apt, err := unit.Apartments().ByID(ctx, b.ApartmentID)
	if err != nil {
		return nil, nil, err
	}
	return b, apt, nil
}

func bookingNotice(userID string, title, message string, b *domainbooking.Booking) policies.Notification {
	return policies.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      string(notification.TypeBooking),
		RelatedID: string(b.ID),
	}
}

func describe(b *domainbooking.Booking, apt *domainapartment.Apartment) string {
	return fmt.Sprintf("%s (%s)", b.Code, apt.Title)
}
