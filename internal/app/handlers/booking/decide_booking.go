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
	approveBookingKey = "booking.approve"
	rejectBookingKey  = "booking.reject"
)

type ApproveBookingCommand struct {
	Actor     access.Actor
	BookingID string
}

func (c ApproveBookingCommand) Key() string { return approveBookingKey }

// ApproveBookingHandler confirms a pending booking and claims its apartment.
// When two approvals race for one apartment the availability compare-and-swap
// lets exactly one through; the other gets apartment.ErrAvailabilityConflict.
type ApproveBookingHandler struct {
	support.Deps
}

func (h *ApproveBookingHandler) Handle(ctx context.Context, cmd ApproveBookingCommand) (*dto.Booking, error) {
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
	if err := b.Approve(cmd.Actor.UserID, h.Now()); err != nil {
		return nil, err
	}
	if err := unit.Apartments().SetAvailability(ctx, apt.ID, domainapartment.Available, domainapartment.Occupied); err != nil {
		return nil, err
	}
	apt.Availability = domainapartment.Occupied
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := h.RecordEvents(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Finish(); err != nil {
		return nil, err
	}

	h.Log().Info("booking approved", "booking_id", b.ID, "apartment_id", apt.ID, "actor_id", cmd.Actor.UserID)
	h.Notify(ctx, bookingNotice(string(b.TenantID), "Booking approved",
		fmt.Sprintf("Your booking %s has been approved", describe(b, apt)), b))

	result := dto.MapBooking(b, apt)
	return &result, nil
}

type RejectBookingCommand struct {
	Actor     access.Actor
	BookingID string
	Reason    string
}

func (c RejectBookingCommand) Key() string { return rejectBookingKey }

// RejectBookingHandler declines a pending booking. Availability is untouched.
type RejectBookingHandler struct {
	support.Deps
}

func (h *RejectBookingHandler) Handle(ctx context.Context, cmd RejectBookingCommand) (*dto.Booking, error) {
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
	if err := b.Reject(cmd.Actor.UserID, cmd.Reason, h.Now()); err != nil {
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

	h.Log().Info("booking rejected", "booking_id", b.ID, "apartment_id", apt.ID, "actor_id", cmd.Actor.UserID, "reason", b.RejectionReason)
	h.Notify(ctx, bookingNotice(string(b.TenantID), "Booking rejected",
		fmt.Sprintf("Your booking %s was rejected. Reason: %s", describe(b, apt), b.RejectionReason), b))

	result := dto.MapBooking(b, apt)
	return &result, nil
}

var _ commands.Handler[ApproveBookingCommand, *dto.Booking] = (*ApproveBookingHandler)(nil)
var _ commands.Handler[RejectBookingCommand, *dto.Booking] = (*RejectBookingHandler)(nil)
