package payments

import (
	"context"
	"fmt"
	"strings"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/policies"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	"vidaview/internal/domain/notification"
	domainpayment "vidaview/internal/domain/payment"
	"vidaview/internal/domain/shared/errs"
	domainuser "vidaview/internal/domain/user"
)

const (
	confirmPaymentKey = "payment.confirm"
	failPaymentKey    = "payment.fail"
	refundPaymentKey  = "payment.refund"
)

var errPaymentIDRequired = errs.Validation("payment: payment_id is required")

type ConfirmPaymentCommand struct {
	Actor         access.Actor
	PaymentID     string
	TransactionID string
}

func (c ConfirmPaymentCommand) Key() string { return confirmPaymentKey }

// ConfirmPaymentHandler completes a pending payment. Only an admin or the
// owner of the booked apartment may confirm.
type ConfirmPaymentHandler struct {
	support.Deps
}

func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*dto.Payment, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	p, b, apt, err := loadPayment(ctx, unit, cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if err := access.ManageApartment(cmd.Actor, apt); err != nil {
		return nil, err
	}
	if err := p.Confirm(cmd.Actor.UserID, cmd.TransactionID, h.Now()); err != nil {
		return nil, err
	}
	if err := persist(ctx, h.Deps, unit, p); err != nil {
		return nil, err
	}

	h.Log().Info("payment confirmed", "payment_id", p.ID, "booking_id", b.ID, "actor_id", cmd.Actor.UserID)
	h.Notify(ctx, paymentNotice(b, p, "Payment confirmed",
		fmt.Sprintf("Your payment %s has been confirmed", p.Code)))

	result := dto.MapPayment(p)
	return &result, nil
}

type FailPaymentCommand struct {
	Actor     access.Actor
	PaymentID string
	Reason    string
}

func (c FailPaymentCommand) Key() string { return failPaymentKey }

// FailPaymentHandler marks a pending payment as failed.
type FailPaymentHandler struct {
	support.Deps
}

func (h *FailPaymentHandler) Handle(ctx context.Context, cmd FailPaymentCommand) (*dto.Payment, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	p, b, apt, err := loadPayment(ctx, unit, cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if err := access.ManageApartment(cmd.Actor, apt); err != nil {
		return nil, err
	}
	if err := p.Fail(cmd.Actor.UserID, cmd.Reason, h.Now()); err != nil {
		return nil, err
	}
	if err := persist(ctx, h.Deps, unit, p); err != nil {
		return nil, err
	}

	h.Log().Info("payment failed", "payment_id", p.ID, "booking_id", b.ID, "actor_id", cmd.Actor.UserID, "reason", p.FailureReason)
	message := fmt.Sprintf("Your payment %s could not be verified", p.Code)
	if p.FailureReason != "" {
		message += ". Reason: " + p.FailureReason
	}
	h.Notify(ctx, paymentNotice(b, p, "Payment failed", message))

	result := dto.MapPayment(p)
	return &result, nil
}

type RefundPaymentCommand struct {
	Actor     access.Actor
	PaymentID string
}

func (c RefundPaymentCommand) Key() string { return refundPaymentKey }

// RefundPaymentHandler reverses a completed payment. Admin only.
type RefundPaymentHandler struct {
	support.Deps
}

func (h *RefundPaymentHandler) Handle(ctx context.Context, cmd RefundPaymentCommand) (*dto.Payment, error) {
	if err := access.RequireRole(cmd.Actor, domainuser.RoleAdmin); err != nil {
		return nil, err
	}
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release()
	ctx = unit.Ctx

	p, b, _, err := loadPayment(ctx, unit, cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if err := p.Refund(h.Now()); err != nil {
		return nil, err
	}
	if err := persist(ctx, h.Deps, unit, p); err != nil {
		return nil, err
	}

	h.Log().Info("payment refunded", "payment_id", p.ID, "booking_id", b.ID, "actor_id", cmd.Actor.UserID)
	h.Notify(ctx, paymentNotice(b, p, "Payment refunded",
		fmt.Sprintf("Your payment %s has been refunded", p.Code)))

	result := dto.MapPayment(p)
	return &result, nil
}

func loadPayment(ctx context.Context, unit *support.WriteUnit, id string) (*domainpayment.Payment, *domainbooking.Booking, *domainapartment.Apartment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil, nil, errPaymentIDRequired
	}
	p, err := unit.Payments().ByID(ctx, domainpayment.ID(id))
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := unit.Bookings().ByID(ctx, p.BookingID)
	if err != nil {
		return nil, nil, nil, err
	}
	apt, err := unit.Apartments().ByID(ctx, b.ApartmentID)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, b, apt, nil
}

func persist(ctx context.Context, deps support.Deps, unit *support.WriteUnit, p *domainpayment.Payment) error {
	if err := unit.Payments().Save(ctx, p); err != nil {
		return err
	}
	if err := deps.RecordEvents(ctx, p); err != nil {
		return err
	}
	return unit.Finish()
}

func paymentNotice(b *domainbooking.Booking, p *domainpayment.Payment, title, message string) policies.Notification {
	return policies.Notification{
		UserID:    string(b.TenantID),
		Title:     title,
		Message:   message,
		Type:      string(notification.TypePayment),
		RelatedID: string(p.ID),
	}
}

var _ commands.Handler[ConfirmPaymentCommand, *dto.Payment] = (*ConfirmPaymentHandler)(nil)
var _ commands.Handler[FailPaymentCommand, *dto.Payment] = (*FailPaymentHandler)(nil)
var _ commands.Handler[RefundPaymentCommand, *dto.Payment] = (*RefundPaymentHandler)(nil)
