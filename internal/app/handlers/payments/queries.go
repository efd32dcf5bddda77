package payments

import (
	"context"
	"strings"

	"vidaview/internal/app/access"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/queries"
	"vidaview/internal/app/uow"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
)

const (
	getPaymentKey          = "payment.get"
	listBookingPaymentsKey = "payment.list_by_booking"
)

type GetPaymentQuery struct {
	Actor     access.Actor
	PaymentID string
}

func (q GetPaymentQuery) Key() string { return getPaymentKey }

// GetPaymentHandler shares the visibility of the payment's booking.
type GetPaymentHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPaymentHandler) Handle(ctx context.Context, q GetPaymentQuery) (dto.Payment, error) {
	if strings.TrimSpace(q.PaymentID) == "" {
		return dto.Payment{}, errPaymentIDRequired
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Payment{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	p, err := unit.Payments().ByID(execCtx, domainpayment.ID(q.PaymentID))
	if err != nil {
		return dto.Payment{}, err
	}
	if err := canViewBooking(execCtx, unit, q.Actor, p.BookingID); err != nil {
		return dto.Payment{}, err
	}
	return dto.MapPayment(p), nil
}

type ListBookingPaymentsQuery struct {
	Actor     access.Actor
	BookingID string
}

func (q ListBookingPaymentsQuery) Key() string { return listBookingPaymentsKey }

type ListBookingPaymentsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingPaymentsHandler) Handle(ctx context.Context, q ListBookingPaymentsQuery) (dto.PaymentCollection, error) {
	if strings.TrimSpace(q.BookingID) == "" {
		return dto.PaymentCollection{}, domainpayment.ErrBookingRequired
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PaymentCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bookingID := domainbooking.ID(q.BookingID)
	if err := canViewBooking(execCtx, unit, q.Actor, bookingID); err != nil {
		return dto.PaymentCollection{}, err
	}
	list, err := unit.Payments().List(execCtx, domainpayment.Filter{BookingIDs: []domainbooking.ID{bookingID}})
	if err != nil {
		return dto.PaymentCollection{}, err
	}
	return dto.MapPayments(list), nil
}

func canViewBooking(ctx context.Context, unit uow.UnitOfWork, actor access.Actor, id domainbooking.ID) error {
	b, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return err
	}
	apt, err := unit.Apartments().ByID(ctx, b.ApartmentID)
	if err != nil {
		return err
	}
	return access.ViewBooking(actor, b, apt)
}

var _ queries.Handler[GetPaymentQuery, dto.Payment] = (*GetPaymentHandler)(nil)
var _ queries.Handler[ListBookingPaymentsQuery, dto.PaymentCollection] = (*ListBookingPaymentsHandler)(nil)
