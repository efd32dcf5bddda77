package payments_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/app/access"
	"vidaview/internal/app/handlers/payments"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/policies"
	domainapartment "vidaview/internal/domain/apartment"
	domainbooking "vidaview/internal/domain/booking"
	domainpayment "vidaview/internal/domain/payment"
	"vidaview/internal/domain/shared/code"
	"vidaview/internal/domain/shared/daterange"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/money"
	"vidaview/internal/domain/user"
	"vidaview/internal/infra/storage/memory"
)

var (
	owner      = access.Actor{UserID: "owner-1", Role: user.RoleOwner}
	otherOwner = access.Actor{UserID: "owner-2", Role: user.RoleOwner}
	tenant     = access.Actor{UserID: "tenant-1", Role: user.RoleTenant}
	stranger   = access.Actor{UserID: "tenant-2", Role: user.RoleTenant}
	admin      = access.Actor{UserID: "admin-1", Role: user.RoleAdmin}
	fixedNow   = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	factory memory.Factory
	sent    []policies.Notification
	deps    support.Deps
	booking *domainbooking.Booking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{factory: memory.NewFactory()}
	f.deps = support.Deps{
		UoWFactory: f.factory,
		Outbox:     memory.NewOutbox(),
		Notifier: policies.NotifierFunc(func(_ context.Context, msg policies.Notification) error {
			f.sent = append(f.sent, msg)
			return nil
		}),
		Clock: func() time.Time { return fixedNow },
	}
	apt, err := domainapartment.New(domainapartment.CreateParams{
		ID:          "apt-1",
		OwnerID:     owner.UserID,
		Title:       "Unit 7",
		MonthlyRent: money.Must(3_000_000, "IDR"),
		Deposit:     money.Must(3_000_000, "IDR"),
		Now:         fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.ApartmentsRepo.Save(ctx, apt))

	term, err := daterange.New(fixedNow, fixedNow.AddDate(0, 6, 0))
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:        "booking-1",
		Code:      "BK20260520001",
		Apartment: apt,
		TenantID:  tenant.UserID,
		Term:      term,
		Now:       fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.BookingsRepo.Create(ctx, b))
	f.booking = b
	return f
}

func (f *fixture) createPayment(t *testing.T) string {
	t.Helper()
	h := &payments.CreatePaymentHandler{Deps: f.deps}
	res, err := h.Handle(context.Background(), payments.CreatePaymentCommand{
		Actor:     tenant,
		BookingID: string(f.booking.ID),
		Amount:    3_000_000,
	})
	require.NoError(t, err)
	return res.ID
}

func TestCreatePayment(t *testing.T) {
	f := newFixture(t)
	h := &payments.CreatePaymentHandler{Deps: f.deps}

	res, err := h.Handle(context.Background(), payments.CreatePaymentCommand{
		Actor:     tenant,
		BookingID: string(f.booking.ID),
		Amount:    3_000_000,
		Method:    "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainpayment.TypeMonthlyRent), res.Type)
	assert.Equal(t, string(domainpayment.StatusPending), res.Status)
	assert.Equal(t, "IDR", res.Amount.Currency)
	assert.Regexp(t, `^PAY20260520\d{3}$`, res.Code)
	assert.Nil(t, res.PaymentDate)
	require.Len(t, f.sent, 1)
	assert.Equal(t, string(owner.UserID), f.sent[0].UserID)

	_, err = h.Handle(context.Background(), payments.CreatePaymentCommand{Actor: stranger, BookingID: string(f.booking.ID), Amount: 1})
	assert.ErrorIs(t, err, errs.ErrAuthorization)

	_, err = h.Handle(context.Background(), payments.CreatePaymentCommand{Actor: tenant, BookingID: string(f.booking.ID), Amount: 0})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = h.Handle(context.Background(), payments.CreatePaymentCommand{Actor: tenant, BookingID: string(f.booking.ID), Amount: 1, Type: "bribe"})
	assert.ErrorIs(t, err, domainpayment.ErrInvalidType)

	_, err = h.Handle(context.Background(), payments.CreatePaymentCommand{Actor: tenant, BookingID: "missing", Amount: 1})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreatePaymentRetriesCodeCollision(t *testing.T) {
	f := newFixture(t)
	h := &payments.CreatePaymentHandler{
		Deps:  f.deps,
		Codes: code.Generator{Digits: code.Sequence(42, 42, 43)},
	}
	cmd := payments.CreatePaymentCommand{Actor: tenant, BookingID: string(f.booking.ID), Amount: 100}
	first, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	second, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "PAY20260520042", first.Code)
	assert.Equal(t, "PAY20260520043", second.Code)
}

func TestConfirmPaymentScopedToApartmentOwner(t *testing.T) {
	f := newFixture(t)
	id := f.createPayment(t)
	confirm := &payments.ConfirmPaymentHandler{Deps: f.deps}

	_, err := confirm.Handle(context.Background(), payments.ConfirmPaymentCommand{Actor: otherOwner, PaymentID: id})
	assert.ErrorIs(t, err, errs.ErrAuthorization)
	_, err = confirm.Handle(context.Background(), payments.ConfirmPaymentCommand{Actor: tenant, PaymentID: id})
	assert.ErrorIs(t, err, errs.ErrAuthorization)

	res, err := confirm.Handle(context.Background(), payments.ConfirmPaymentCommand{Actor: owner, PaymentID: id, TransactionID: "TX-1"})
	require.NoError(t, err)
	assert.Equal(t, string(domainpayment.StatusCompleted), res.Status)
	assert.Equal(t, "TX-1", res.TransactionID)
	require.NotNil(t, res.PaymentDate)
	assert.True(t, res.PaymentDate.Equal(fixedNow))
	assert.Equal(t, string(tenant.UserID), f.sent[len(f.sent)-1].UserID)

	_, err = confirm.Handle(context.Background(), payments.ConfirmPaymentCommand{Actor: owner, PaymentID: id})
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	fail := &payments.FailPaymentHandler{Deps: f.deps}
	_, err = fail.Handle(context.Background(), payments.FailPaymentCommand{Actor: admin, PaymentID: id})
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestFailAndRefund(t *testing.T) {
	f := newFixture(t)
	failed := f.createPayment(t)
	fail := &payments.FailPaymentHandler{Deps: f.deps}
	res, err := fail.Handle(context.Background(), payments.FailPaymentCommand{Actor: owner, PaymentID: failed, Reason: "transfer not received"})
	require.NoError(t, err)
	assert.Equal(t, string(domainpayment.StatusFailed), res.Status)
	assert.Contains(t, f.sent[len(f.sent)-1].Message, "transfer not received")

	paid := f.createPayment(t)
	refund := &payments.RefundPaymentHandler{Deps: f.deps}
	_, err = refund.Handle(context.Background(), payments.RefundPaymentCommand{Actor: admin, PaymentID: paid})
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	confirm := &payments.ConfirmPaymentHandler{Deps: f.deps}
	_, err = confirm.Handle(context.Background(), payments.ConfirmPaymentCommand{Actor: admin, PaymentID: paid})
	require.NoError(t, err)

	_, err = refund.Handle(context.Background(), payments.RefundPaymentCommand{Actor: owner, PaymentID: paid})
	assert.ErrorIs(t, err, errs.ErrAuthorization)
	res, err = refund.Handle(context.Background(), payments.RefundPaymentCommand{Actor: admin, PaymentID: paid})
	require.NoError(t, err)
	assert.Equal(t, string(domainpayment.StatusRefunded), res.Status)
}

func TestPaymentQueriesFollowBookingVisibility(t *testing.T) {
	f := newFixture(t)
	id := f.createPayment(t)
	f.createPayment(t)

	get := &payments.GetPaymentHandler{UoWFactory: f.factory}
	_, err := get.Handle(context.Background(), payments.GetPaymentQuery{Actor: stranger, PaymentID: id})
	assert.ErrorIs(t, err, errs.ErrAuthorization)
	got, err := get.Handle(context.Background(), payments.GetPaymentQuery{Actor: owner, PaymentID: id})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	list := &payments.ListBookingPaymentsHandler{UoWFactory: f.factory}
	res, err := list.Handle(context.Background(), payments.ListBookingPaymentsQuery{Actor: tenant, BookingID: string(f.booking.ID)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	_, err = list.Handle(context.Background(), payments.ListBookingPaymentsQuery{Actor: otherOwner, BookingID: string(f.booking.ID)})
	assert.ErrorIs(t, err, errs.ErrAuthorization)
}
