package payments

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
	"vidaview/internal/app/middleware"
	"vidaview/internal/app/policies"
	domainbooking "vidaview/internal/domain/booking"
	"vidaview/internal/domain/notification"
	domainpayment "vidaview/internal/domain/payment"
	"vidaview/internal/domain/shared/code"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/money"
)

const createPaymentKey = "payment.create"

var ErrCodeSpaceExhausted = errs.Conflict("payment: could not allocate a unique payment code, retry later")

type CreatePaymentCommand struct {
	Actor      access.Actor
	BookingID  string
	Amount     int64
	Type       string
	Method     string
	DueDate    time.Time
	Notes      string
	RequestKey string
}

func (c CreatePaymentCommand) Key() string { return createPaymentKey }

// IdempotencyKey scopes the client's Idempotency-Key header to the caller.
func (c CreatePaymentCommand) IdempotencyKey() string { return c.Actor.ScopeKey(c.RequestKey) }

func (c CreatePaymentCommand) ResultPrototype() any { return &dto.Payment{} }

func (c CreatePaymentCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return domainpayment.ErrBookingRequired
	}
	if c.Amount <= 0 {
		return domainpayment.ErrInvalidAmount
	}
	if _, err := domainpayment.ParseType(c.Type); err != nil {
		return err
	}
	if _, err := domainpayment.ParseMethod(c.Method); err != nil {
		return err
	}
	return nil
}

// CreatePaymentHandler records a pending payment against the caller's booking.
type CreatePaymentHandler struct {
	support.Deps
	Codes        code.Generator
	CodeAttempts int
}

func (h *CreatePaymentHandler) Handle(ctx context.Context, cmd CreatePaymentCommand) (*dto.Payment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	typ, _ := domainpayment.ParseType(cmd.Type)
	method, _ := domainpayment.ParseMethod(cmd.Method)

	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if err := access.ActAsTenant(cmd.Actor, b); err != nil {
		return nil, err
	}
	apt, err := unit.Apartments().ByID(ctx, b.ApartmentID)
	if err != nil {
		return nil, err
	}

	codes := h.Codes
	if codes.Prefix == "" {
		codes.Prefix = code.PaymentPrefix
	}
	if codes.Now == nil {
		codes.Now = h.Now
	}
	allocator := support.CodeAllocator{
		Generator: codes,
		Attempts:  h.CodeAttempts,
		Duplicate: domainpayment.ErrDuplicateCode,
		Exhausted: ErrCodeSpaceExhausted,
		Logger:    h.Log(),
	}
	amount := money.Money{Amount: cmd.Amount, Currency: b.Amounts.Total.Currency}
	payment, err := support.InsertWithUniqueCode(ctx, allocator, func(paymentCode string) (*domainpayment.Payment, error) {
		return domainpayment.New(domainpayment.CreateParams{
			ID:        domainpayment.ID(uuid.NewString()),
			Code:      paymentCode,
			BookingID: b.ID,
			Amount:    amount,
			Type:      typ,
			Method:    method,
			DueDate:   cmd.DueDate,
			Notes:     cmd.Notes,
			Now:       h.Now(),
		})
	}, unit.Payments().Create)
	if err != nil {
		return nil, err
	}

	if err := h.RecordEvents(ctx, payment); err != nil {
		return nil, err
	}
	if err := unit.Finish(); err != nil {
		return nil, err
	}

	h.Log().Info("payment created",
		"payment_id", payment.ID,
		"payment_code", payment.Code,
		"booking_id", b.ID,
		"actor_id", cmd.Actor.UserID,
		"amount", payment.Amount.Amount,
	)
	h.Notify(ctx, policies.Notification{
		UserID:    string(apt.OwnerID),
		Title:     "New payment",
		Message:   fmt.Sprintf("Payment %s of %d %s submitted for booking %s", payment.Code, payment.Amount.Amount, payment.Amount.Currency, b.Code),
		Type:      string(notification.TypePayment),
		RelatedID: string(payment.ID),
	})

	result := dto.MapPayment(payment)
	return &result, nil
}

var _ commands.Handler[CreatePaymentCommand, *dto.Payment] = (*CreatePaymentHandler)(nil)
var _ middleware.IdempotentCommand = (*CreatePaymentCommand)(nil)
