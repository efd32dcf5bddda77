package apartment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/domain/shared/money"
)

func newTestApartment(t *testing.T) *Apartment {
	t.Helper()
	a, err := New(CreateParams{
		ID:          "apt-1",
		OwnerID:     "owner-1",
		Title:       "Studio near campus",
		MonthlyRent: money.Must(5_000_000, "IDR"),
		Deposit:     money.Must(10_000_000, "IDR"),
		Now:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return a
}

func TestNewApartmentStartsAvailable(t *testing.T) {
	a := newTestApartment(t)
	assert.True(t, a.IsAvailable())
	assert.True(t, a.OwnedBy("owner-1"))
	assert.False(t, a.OwnedBy("owner-2"))
	require.Len(t, a.PendingEvents(), 1)
}

func TestNewApartmentValidatesPricing(t *testing.T) {
	_, err := New(CreateParams{ID: "a", OwnerID: "o", Title: "t", MonthlyRent: money.Must(0, "IDR")})
	require.ErrorIs(t, err, ErrInvalidRent)

	_, err = New(CreateParams{ID: "a", OwnerID: "o", Title: "t", MonthlyRent: money.Must(1, "IDR"), Deposit: money.Must(-1, "IDR")})
	require.ErrorIs(t, err, ErrInvalidDeposit)
}

func TestMeanRating(t *testing.T) {
	assert.Equal(t, 0.0, MeanRating(nil))
	assert.Equal(t, 4.0, MeanRating([]int{5, 3}))
	assert.Equal(t, 4.67, MeanRating([]int{5, 5, 4}))
	assert.Equal(t, 3.33, MeanRating([]int{5, 4, 1}))
}

func TestUpdateRating(t *testing.T) {
	a := newTestApartment(t)
	a.UpdateRating([]int{4, 5}, time.Now())
	assert.Equal(t, 4.5, a.AvgRating)
	assert.Equal(t, 2, a.ReviewCount)

	a.UpdateRating(nil, time.Now())
	assert.Equal(t, 0.0, a.AvgRating)
	assert.Equal(t, 0, a.ReviewCount)
}

func TestParseAvailability(t *testing.T) {
	v, err := ParseAvailability("Occupied")
	require.NoError(t, err)
	assert.Equal(t, Occupied, v)

	_, err = ParseAvailability("maintenance")
	assert.ErrorIs(t, err, ErrInvalidAvailability)
}
