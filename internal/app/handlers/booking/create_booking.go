package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/locking"
	"vidaview/internal/app/middleware"
	"vidaview/internal/app/policies"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	"vidaview/internal/domain/notification"
	"vidaview/internal/domain/shared/code"
	"vidaview/internal/domain/shared/daterange"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/money"
	domainuser "vidaview/internal/domain/user"
)

const createBookingKey = "booking.create"

var ErrCodeSpaceExhausted = errs.Conflict("booking: could not allocate a unique booking code, retry later")

type CreateBookingCommand struct {
	Actor          access.Actor
	ApartmentID    string
	StartDate      time.Time
	EndDate        time.Time
	TotalMonths    int
	UtilityDeposit int64
	AdminFee       int64
	Notes          string
	RequestKey     string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

// IdempotencyKey scopes the client's Idempotency-Key header to the caller.
func (c CreateBookingCommand) IdempotencyKey() string { return c.Actor.ScopeKey(c.RequestKey) }

func (c CreateBookingCommand) ResultPrototype() any { return &dto.Booking{} }

// Authorize admits tenants only.
func (c CreateBookingCommand) Authorize() error {
	return access.RequireRole(c.Actor, domainuser.RoleTenant)
}

func (c CreateBookingCommand) Validate() error {
	if strings.TrimSpace(c.ApartmentID) == "" {
		return errs.Validation("booking: apartment_id is required")
	}
	if _, err := daterange.New(c.StartDate, c.EndDate); err != nil {
		return err
	}
	if c.TotalMonths < 0 {
		return domainbooking.ErrInvalidMonths
	}
	if c.UtilityDeposit < 0 || c.AdminFee < 0 {
		return money.ErrNegativeAmount
	}
	return nil
}

type CreateBookingHandler struct {
	support.Deps
	Codes        code.Generator
	CodeAttempts int
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*dto.Booking, error) {
	if err := cmd.Authorize(); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	term, _ := daterange.New(cmd.StartDate, cmd.EndDate)

	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	release, err := h.Hold(ctx, locking.ApartmentKey(cmd.ApartmentID))
	if err != nil {
		return nil, err
	}
	unit.OnRelease(release)

	apt, err := unit.Apartments().ByID(ctx, domainapartment.ID(cmd.ApartmentID))
	if err != nil {
		return nil, err
	}
	if !apt.IsAvailable() {
		return nil, domainapartment.ErrNotAvailable
	}

	codes := h.Codes
	if codes.Prefix == "" {
		codes.Prefix = code.BookingPrefix
	}
	if codes.Now == nil {
		codes.Now = h.Now
	}
	allocator := support.CodeAllocator{
		Generator: codes,
		Attempts:  h.CodeAttempts,
		Duplicate: domainbooking.ErrDuplicateCode,
		Exhausted: ErrCodeSpaceExhausted,
		Logger:    h.Log(),
	}
	booking, err := support.InsertWithUniqueCode(ctx, allocator, func(bookingCode string) (*domainbooking.Booking, error) {
		return domainbooking.New(domainbooking.CreateParams{
			ID:             domainbooking.ID(uuid.NewString()),
			Code:           bookingCode,
			Apartment:      apt,
			TenantID:       cmd.Actor.UserID,
			Term:           term,
			TotalMonths:    cmd.TotalMonths,
			UtilityDeposit: cmd.UtilityDeposit,
			AdminFee:       cmd.AdminFee,
			Notes:          cmd.Notes,
			Now:            h.Now(),
		})
	}, unit.Bookings().Create)
	if err != nil {
		return nil, err
	}

	if err := h.RecordEvents(ctx, booking); err != nil {
		return nil, err
	}
	if err := unit.Finish(); err != nil {
		return nil, err
	}

	h.Log().Info("booking requested",
		"booking_id", booking.ID,
		"booking_code", booking.Code,
		"apartment_id", apt.ID,
		"actor_id", cmd.Actor.UserID,
		"total", booking.Amounts.Total.Amount,
	)
	h.Notify(ctx, policies.Notification{
		UserID:    string(apt.OwnerID),
		Title:     "New booking request",
		Message:   fmt.Sprintf("New booking %s for %s", booking.Code, apt.Title),
		Type:      string(notification.TypeBooking),
		RelatedID: string(booking.ID),
	})

	result := dto.MapBooking(booking, apt)
	return &result, nil
}

var _ commands.Handler[CreateBookingCommand, *dto.Booking] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
