package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptRoundTrip(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	require.NoError(t, h.Compare(hash, "secret123"))
	require.Error(t, h.Compare(hash, "secret124"))
}

func TestRandomTokens(t *testing.T) {
	g := RandomTokenGenerator{Size: 16, Prefix: "vv_"}
	a, err := g.NewToken()
	require.NoError(t, err)
	b, err := g.NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "vv_"))
	assert.Len(t, strings.TrimPrefix(a, "vv_"), 22)
}
