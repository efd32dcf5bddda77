// Package code produces human-readable business codes such as BK20260301042.
package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	BookingPrefix = "BK"
	PaymentPrefix = "PAY"

	suffixDigits = 3
)

// Generator composes prefix + YYYYMMDD + a random numeric suffix.
type Generator struct {
	Prefix string
	// Digits overrides the suffix source; tests use it to force collisions.
	Digits func() (int, error)
	Now    func() time.Time
}

func (g Generator) Next() (string, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	digits := g.Digits
	if digits == nil {
		digits = randomSuffix
	}
	n, err := digits()
	if err != nil {
		return "", fmt.Errorf("code: suffix: %w", err)
	}
	return fmt.Sprintf("%s%s%0*d", g.Prefix, now().UTC().Format("20060102"), suffixDigits, n%1000), nil
}

func randomSuffix() (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// Sequence returns a Digits func yielding the given values in order, then repeating the last.
func Sequence(values ...int) func() (int, error) {
	i := 0
	return func() (int, error) {
		if len(values) == 0 {
			return 0, nil
		}
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v, nil
	}
}
