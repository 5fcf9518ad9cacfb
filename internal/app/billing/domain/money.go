package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 alphabetic currency code.
type Currency string

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return c, nil
}

// Valid reports whether c looks like an ISO currency code.
func (c Currency) Valid() bool {
	return currencyCodePattern.MatchString(string(c))
}

func (c Currency) String() string {
	return string(c)
}

// RateSource converts between currencies. Implementations return
// ErrRateUnavailable when no usable rate exists; callers must never treat
// that as a zero rate.
type RateSource interface {
	Rate(ctx context.Context, base, target Currency) (decimal.Decimal, error)
}

// Money is an immutable amount in a single currency. Arithmetic between
// two values requires the same currency; mixing currencies is an error,
// never a silent coercion.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a Money value from a decimal amount.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.Valid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses an amount such as "1999.20".
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return NewMoney(d, currency)
}

// MustMoney is NewMoneyFromString for literals; it panics on bad input.
func MustMoney(amount string, currency Currency) Money {
	m, err := NewMoneyFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() Currency { return m.currency }

// SameCurrency reports whether both values share a currency.
func (m Money) SameCurrency(other Money) bool {
	return m.currency == other.currency
}

func (m Money) mustMatch(other Money) error {
	if !m.SameCurrency(other) {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.mustMatch(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m - other.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.mustMatch(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MultiplyBy scales the amount by a factor.
func (m Money) MultiplyBy(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Round rounds the amount to the given number of decimal places.
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

// Cmp compares two values of the same currency.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.mustMatch(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// Equals reports whether both currency and amount match.
func (m Money) Equals(other Money) bool {
	return m.SameCurrency(other) && m.amount.Equal(other.amount)
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsNegative returns true if the amount is negative.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Convert returns the value expressed in target using rates. Converting to
// the same currency does not consult the rate source.
func (m Money) Convert(ctx context.Context, target Currency, rates RateSource) (Money, error) {
	if !target.Valid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, target)
	}
	if m.currency == target {
		return m, nil
	}
	rate, err := rates.Rate(ctx, m.currency, target)
	if err != nil {
		return Money{}, fmt.Errorf("convert %s to %s: %w", m.currency, target, err)
	}
	if !rate.IsPositive() {
		return Money{}, fmt.Errorf("convert %s to %s: %w: non-positive rate %s", m.currency, target, ErrRateUnavailable, rate)
	}
	return Money{amount: m.amount.Mul(rate), currency: target}, nil
}

// String formats the value as "1999.20 USD".
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}

// Sum adds a list of values. All values must share a currency; an empty
// list sums to zero in fallback.
func Sum(values []Money, fallback Currency) (Money, error) {
	if len(values) == 0 {
		return Zero(fallback), nil
	}
	total := Zero(values[0].currency)
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
