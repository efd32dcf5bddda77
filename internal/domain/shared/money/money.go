package money

import (
	"strings"

	"vidaview/internal/domain/shared/errs"
)

// DefaultCurrency is used when an amount arrives without a currency code.
const DefaultCurrency = "IDR"

var (
	ErrInvalidCurrency  = errs.Validation("money: invalid currency code")
	ErrCurrencyMismatch = errs.Validation("money: currency mismatch")
	ErrNegativeAmount   = errs.Validation("money: amount must not be negative")
)

// Money keeps amounts in integer minor units to avoid floating point drift.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs Money, upper-casing the currency code.
func New(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// NewNonNegative is New that also rejects negative amounts.
func NewNonNegative(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	return New(amount, currency)
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Currency: strings.ToUpper(currency)}
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Sum adds all values; an empty list yields zero in the fallback currency.
func Sum(currency string, values ...Money) (Money, error) {
	total := Zero(currency)
	for _, v := range values {
		next, err := total.Add(v)
		if err != nil {
			return Money{}, err
		}
		total = next
	}
	return total, nil
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
