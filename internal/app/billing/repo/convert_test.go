package repo

import (
	"math/big"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

func TestNumericConversion(t *testing.T) {
	amount := decimal.RequireFromString("19.99")
	r := ratOf(amount)

	back, err := decimalOf(&r)
	require.NoError(t, err)
	assert.True(t, amount.Equal(back))

	m, err := moneyOf(big.NewRat(1, 3), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "0.333333333", m.Amount().String())
	assert.Equal(t, domain.Currency("EUR"), m.Currency())

	_, err = moneyOf(big.NewRat(5, 1), "")
	assert.Error(t, err)
}

func TestNullableColumns(t *testing.T) {
	assert.False(t, nullString(nil).Valid)
	s := "DE"
	assert.Equal(t, spanner.NullString{StringVal: "DE", Valid: true}, nullString(&s))
	assert.Equal(t, &s, stringPtr(nullString(&s)))
	assert.Nil(t, stringPtr(spanner.NullString{}))

	n := 3
	assert.Equal(t, &n, intPtr(nullInt(&n)))
	assert.Nil(t, intPtr(nullInt(nil)))
}
