package quote_price

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/testutil"
)

type fixedRates map[domain.Currency]decimal.Decimal

func (r fixedRates) Rate(_ context.Context, _, target domain.Currency) (decimal.Decimal, error) {
	rate, ok := r[target]
	if !ok {
		return decimal.Zero, domain.ErrRateUnavailable
	}
	return rate, nil
}

func TestQuotePrice(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	rooms := env.CreateService(t, "rooms-monthly", domain.ServiceTypeRooms, testutil.Default())
	env.CreateBasePrice(t, rooms.ID, "10", "EUR", true)
	env.CreatePrice(t, rooms.ID, nil, testutil.IntPtr(1), testutil.IntPtr(2), "12", "EUR", true)

	q := NewQuery(env.Repos.Services, env.Repos.PriceEntries, env.Calculator, fixedRates{"USD": decimal.RequireFromString("1.1")})

	resp, err := q.Execute(ctx, &Request{ServiceID: rooms.ID, Quantity: 3, Country: "DE"})
	require.NoError(t, err)
	assert.True(t, resp.Price.Equals(domain.MustMoney("34", "EUR")))
	assert.Nil(t, resp.Converted)

	resp, err = q.Execute(ctx, &Request{ServiceID: rooms.ID, Quantity: 3, Country: "DE", Currency: "usd"})
	require.NoError(t, err)
	require.NotNil(t, resp.Converted)
	assert.True(t, resp.Converted.Equals(domain.MustMoney("37.4", "USD")))

	_, err = q.Execute(ctx, &Request{ServiceID: rooms.ID, Quantity: 3, Country: "DE", Currency: "JPY"})
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)

	_, err = q.Execute(ctx, &Request{ServiceID: rooms.ID, Country: "DE"})
	assert.ErrorIs(t, err, domain.ErrInvalidCountryOrQuantity)
}
