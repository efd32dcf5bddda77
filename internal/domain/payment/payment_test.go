package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/domain/booking"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/shared/money"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newPending(t *testing.T) *Payment {
	t.Helper()
	p, err := New(CreateParams{ID: "pay-1", Code: "PAY20260510001", BookingID: "bk-1", Amount: money.Must(5_000_000, "IDR"), Now: now})
	require.NoError(t, err)
	return p
}

func TestNewDefaultsToMonthlyRent(t *testing.T) {
	p := newPending(t)
	assert.Equal(t, TypeMonthlyRent, p.Type)
	assert.Equal(t, StatusPending, p.Status)
	assert.True(t, p.PaymentDate.IsZero())
}

func TestNewRejectsNonPositiveAmount(t *testing.T) {
	_, err := New(CreateParams{ID: "p", Code: "c", BookingID: "b", Amount: money.Must(0, "IDR")})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestConfirmStampsPaymentDate(t *testing.T) {
	p := newPending(t)
	require.NoError(t, p.Confirm("owner-1", "trx-9", now))
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, now, p.PaymentDate)
	assert.Equal(t, "trx-9", p.TransactionID)
	assert.True(t, p.PaidIn(2026, time.May))
	assert.False(t, p.PaidIn(2026, time.April))

	err := p.Confirm("owner-1", "", now)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestFailAndRefund(t *testing.T) {
	p := newPending(t)
	require.ErrorIs(t, p.Refund(now), ErrInvalidTransition)
	require.NoError(t, p.Fail("admin", "bounced", now))
	assert.Equal(t, StatusFailed, p.Status)
	assert.False(t, p.PaidIn(2026, time.May))

	q := newPending(t)
	require.NoError(t, q.Confirm("admin", "", now))
	require.NoError(t, q.Refund(now))
	assert.Equal(t, StatusRefunded, q.Status)
}

func TestParsers(t *testing.T) {
	typ, err := ParseType("")
	require.NoError(t, err)
	assert.Equal(t, TypeMonthlyRent, typ)
	_, err = ParseType("bribe")
	assert.ErrorIs(t, err, ErrInvalidType)

	m, err := ParseMethod("E_WALLET")
	require.NoError(t, err)
	assert.Equal(t, MethodEWallet, m)
	_, err = ParseMethod("cheque")
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestFilterMatches(t *testing.T) {
	p := newPending(t)
	assert.True(t, Filter{}.Matches(p))
	assert.False(t, Filter{BookingIDs: []booking.ID{}}.Matches(p))
	assert.True(t, Filter{BookingIDs: []booking.ID{"bk-1"}, Statuses: []Status{StatusPending}}.Matches(p))
	assert.False(t, Filter{Statuses: []Status{StatusCompleted}}.Matches(p))
}
