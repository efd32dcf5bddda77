package reviews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/domain/apartment"
	"vidaview/internal/domain/shared/errs"
)

func TestSubmitValidatesRating(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		_, err := Submit(SubmitParams{ID: "r", Rating: rating})
		require.ErrorIs(t, err, ErrInvalidRating)
		assert.ErrorIs(t, err, errs.ErrValidation)
	}
}

func TestSubmitStartsUnapproved(t *testing.T) {
	r, err := Submit(SubmitParams{ID: "r1", ApartmentID: "apt", TenantID: "t", BookingID: "b", Rating: 4, Comment: " nice ", Photos: []string{"", "https://cdn/x.jpg"}, Now: time.Now()})
	require.NoError(t, err)
	assert.False(t, r.IsApproved)
	assert.Equal(t, "nice", r.Comment)
	assert.Equal(t, []string{"https://cdn/x.jpg"}, r.Photos)
}

func TestApproveOnce(t *testing.T) {
	r, err := Submit(SubmitParams{ID: "r1", Rating: 5})
	require.NoError(t, err)
	require.NoError(t, r.Approve("admin", time.Now()))
	assert.True(t, r.IsApproved)
	assert.ErrorIs(t, r.Approve("admin", time.Now()), ErrAlreadyApproved)
}

func TestFilter(t *testing.T) {
	yes := true
	r := &Review{ApartmentID: "apt-1", TenantID: "t1"}
	assert.True(t, Filter{}.Matches(r))
	assert.False(t, Filter{Approved: &yes}.Matches(r))
	assert.False(t, Filter{ApartmentIDs: []apartment.ID{"apt-2"}}.Matches(r))
	assert.True(t, Filter{TenantID: "t1"}.Matches(r))
	assert.Equal(t, []int{3}, Ratings([]*Review{{Rating: 3}}))
}
