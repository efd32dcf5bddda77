package booking

import (
	"context"
	"fmt"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	domainapartment "vidaview/internal/domain/apartment"
)

const (
	cancelBookingKey   = "booking.cancel"
	activateBookingKey = "booking.activate"
	completeBookingKey = "booking.complete"
)

type CancelBookingCommand struct {
	Actor     access.Actor
	BookingID string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

// CancelBookingHandler lets the tenant withdraw a pending or confirmed booking.
// A confirmed booking gives its apartment back.
type CancelBookingHandler struct {
	support.Deps
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	b, apt, err := lockedBooking(ctx, h.Deps, unit, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if err := access.ActAsTenant(cmd.Actor, b); err != nil {
		return nil, err
	}
	previous, err := b.Cancel(h.Now())
	if err != nil {
		return nil, err
	}
	if previous.HoldsApartment() {
		if err := releaseApartment(ctx, unit, apt); err != nil {
			return nil, err
		}
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := h.RecordEvents(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Finish(); err != nil {
		return nil, err
	}

	h.Log().Info("booking cancelled", "booking_id", b.ID, "apartment_id", apt.ID, "actor_id", cmd.Actor.UserID, "previous_status", previous)
	h.Notify(ctx, bookingNotice(string(apt.OwnerID), "Booking cancelled",
		fmt.Sprintf("Booking %s was cancelled by the tenant", describe(b, apt)), b))

	result := dto.MapBooking(b, apt)
	return &result, nil
}

type ActivateBookingCommand struct {
	Actor     access.Actor
	BookingID string
}

func (c ActivateBookingCommand) Key() string { return activateBookingKey }

// ActivateBookingHandler starts the tenancy of a confirmed booking.
type ActivateBookingHandler struct {
	support.Deps
}

func (h *ActivateBookingHandler) Handle(ctx context.Context, cmd ActivateBookingCommand) (*dto.Booking, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	b, apt, err := lockedBooking(ctx, h.Deps, unit, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if err := access.ManageApartment(cmd.Actor, apt); err != nil {
		return nil, err
	}
	if err := b.Activate(h.Now()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := h.RecordEvents(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Finish(); err != nil {
		return nil, err
	}

	h.Log().Info("booking activated", "booking_id", b.ID, "apartment_id", apt.ID, "actor_id", cmd.Actor.UserID)
	h.Notify(ctx, bookingNotice(string(b.TenantID), "Tenancy started",
		fmt.Sprintf("Your tenancy for %s is now active", describe(b, apt)), b))

	result := dto.MapBooking(b, apt)
	return &result, nil
}

type CompleteBookingCommand struct {
	Actor     access.Actor
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

// CompleteBookingHandler closes an active tenancy and releases the apartment.
type CompleteBookingHandler struct {
	support.Deps
}

func (h *CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (*dto.Booking, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	b, apt, err := lockedBooking(ctx, h.Deps, unit, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if err := access.ManageApartment(cmd.Actor, apt); err != nil {
		return nil, err
	}
	if err := b.Complete(h.Now()); err != nil {
		return nil, err
	}
	if err := releaseApartment(ctx, unit, apt); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := h.RecordEvents(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Finish(); err != nil {
		return nil, err
	}

	h.Log().Info("booking completed", "booking_id", b.ID, "apartment_id", apt.ID, "actor_id", cmd.Actor.UserID)
	h.Notify(ctx, bookingNotice(string(b.TenantID), "Tenancy completed",
		fmt.Sprintf("Your tenancy for %s is complete. You can now leave a review", describe(b, apt)), b))

	result := dto.MapBooking(b, apt)
	return &result, nil
}

func releaseApartment(ctx context.Context, unit *support.WriteUnit, apt *domainapartment.Apartment) error {
	if err := unit.Apartments().SetAvailability(ctx, apt.ID, domainapartment.Occupied, domainapartment.Available); err != nil {
		return err
	}
	apt.Availability = domainapartment.Available
	return nil
}

var _ commands.Handler[CancelBookingCommand, *dto.Booking] = (*CancelBookingHandler)(nil)
var _ commands.Handler[ActivateBookingCommand, *dto.Booking] = (*ActivateBookingHandler)(nil)
var _ commands.Handler[CompleteBookingCommand, *dto.Booking] = (*CompleteBookingHandler)(nil)
