package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := Conflict("booking: duplicate code")
	wrapped := fmt.Errorf("create booking: %w", base)

	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, ErrConflict, KindOf(wrapped))
	assert.Equal(t, "booking: duplicate code", base.Error())
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Nil(t, KindOf(errors.New("boom")))
	assert.Equal(t, "not found", (&Error{Kind: ErrNotFound}).Error())
}
