package code

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorFormat(t *testing.T) {
	g := Generator{
		Prefix: BookingPrefix,
		Now:    func() time.Time { return time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC) },
		Digits: Sequence(7, 42),
	}
	first, err := g.Next()
	require.NoError(t, err)
	second, err := g.Next()
	require.NoError(t, err)
	third, err := g.Next()
	require.NoError(t, err)

	assert.Equal(t, "BK20260309007", first)
	assert.Equal(t, "BK20260309042", second)
	assert.Equal(t, "BK20260309042", third)
}

func TestGeneratorRandomSuffix(t *testing.T) {
	g := Generator{Prefix: PaymentPrefix}
	pattern := regexp.MustCompile(`^PAY\d{8}\d{3}$`)
	for i := 0; i < 50; i++ {
		c, err := g.Next()
		require.NoError(t, err)
		assert.Regexp(t, pattern, c)
	}
}
