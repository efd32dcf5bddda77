// Package security hashes passwords and mints bearer tokens.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher stores passwords as bcrypt digests. A Cost below bcrypt.MinCost
// falls back to bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost())
	if err != nil {
		return "", fmt.Errorf("security: hash password: %w", err)
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (h BcryptHasher) cost() int {
	if h.Cost >= bcrypt.MinCost {
		return h.Cost
	}
	return bcrypt.DefaultCost
}

const defaultTokenBytes = 32

// RandomTokenGenerator returns URL-safe tokens with Size bytes of entropy and
// an optional Prefix that makes leaked tokens easy to grep for.
type RandomTokenGenerator struct {
	Size   int
	Prefix string
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	size := g.Size
	if size <= 0 {
		size = defaultTokenBytes
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: entropy read failed: %w", err)
	}
	return g.Prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
