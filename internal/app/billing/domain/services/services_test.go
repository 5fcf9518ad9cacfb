package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func roomsService() *domain.Service {
	return &domain.Service{ID: "rooms", Title: "Rooms", Type: domain.ServiceTypeRooms, Period: 1, PeriodUnit: domain.PeriodMonth, IsEnabled: true, IsDefault: true}
}

func flatService() *domain.Service {
	return &domain.Service{ID: "support", Title: "Support", Type: domain.ServiceTypeOther, Period: 1, PeriodUnit: domain.PeriodMonth, IsEnabled: true}
}

func priceEntry(id, serviceID string, country *string, from, to *int, amount string, forUnit bool) *domain.PriceEntry {
	return &domain.PriceEntry{
		ID:         id,
		ServiceID:  serviceID,
		CountryID:  country,
		PeriodFrom: from,
		PeriodTo:   to,
		Price:      domain.MustMoney(amount, "USD"),
		ForUnit:    forUnit,
		IsEnabled:  true,
	}
}

// Tiers: 1..5 at 10, 6..10 at 8, anything else at the base price 5.
func roomsTable() []*domain.PriceEntry {
	return []*domain.PriceEntry{
		priceEntry("base", "rooms", nil, nil, nil, "5", true),
		priceEntry("t1", "rooms", nil, intPtr(1), intPtr(5), "10", true),
		priceEntry("t2", "rooms", nil, intPtr(6), intPtr(10), "8", true),
	}
}

func TestPriceTableResolver_Resolve(t *testing.T) {
	r := NewPriceTableResolver()

	t.Run("tiers then base fallback", func(t *testing.T) {
		units, err := r.Resolve(roomsService(), roomsTable(), "US", 12)
		require.NoError(t, err)
		require.Len(t, units, 12)
		assert.Equal(t, "t1", units[0].Entry.ID)
		assert.Equal(t, "t1", units[4].Entry.ID)
		assert.Equal(t, "t2", units[5].Entry.ID)
		assert.Equal(t, "base", units[11].Entry.ID)
	})

	t.Run("country set wins and is never mixed", func(t *testing.T) {
		entries := append(roomsTable(),
			priceEntry("de1", "rooms", strPtr("DE"), intPtr(1), intPtr(2), "20", true),
		)
		units, err := r.Resolve(roomsService(), entries, "DE", 4)
		require.NoError(t, err)
		assert.Len(t, units, 2)
		for _, u := range units {
			assert.Equal(t, "de1", u.Entry.ID)
		}
	})

	t.Run("disabled country entries fall back to all countries", func(t *testing.T) {
		de := priceEntry("de1", "rooms", strPtr("DE"), nil, nil, "20", true)
		de.IsEnabled = false
		units, err := r.Resolve(roomsService(), append(roomsTable(), de), "DE", 1)
		require.NoError(t, err)
		assert.Equal(t, "t1", units[0].Entry.ID)
	})

	t.Run("no entries is a configuration error", func(t *testing.T) {
		_, err := r.Resolve(roomsService(), nil, "US", 1)
		assert.ErrorIs(t, err, domain.ErrEmptyPrices)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("rooms ignore a base that is not per unit", func(t *testing.T) {
		entries := []*domain.PriceEntry{priceEntry("flat", "rooms", nil, nil, nil, "30", false)}
		_, err := r.Resolve(roomsService(), entries, "US", 3)
		assert.ErrorIs(t, err, domain.ErrEmptyPrices)
	})

	t.Run("per unit base wins over a flat one", func(t *testing.T) {
		entries := []*domain.PriceEntry{
			priceEntry("flat", "rooms", nil, nil, nil, "30", false),
			priceEntry("base", "rooms", nil, nil, nil, "5", true),
		}
		units, err := r.Resolve(roomsService(), entries, "US", 2)
		require.NoError(t, err)
		require.Len(t, units, 2)
		assert.Equal(t, "base", units[1].Entry.ID)
	})

	t.Run("flat services accept any base", func(t *testing.T) {
		entries := []*domain.PriceEntry{priceEntry("flat", "support", nil, nil, nil, "49", false)}
		units, err := r.Resolve(flatService(), entries, "US", 1)
		require.NoError(t, err)
		assert.Equal(t, "flat", units[0].Entry.ID)
	})

	t.Run("entries of other services are ignored", func(t *testing.T) {
		_, err := r.Resolve(flatService(), roomsTable(), "US", 1)
		assert.ErrorIs(t, err, domain.ErrEmptyPrices)
	})
}

func TestPriceCalculator_Calc(t *testing.T) {
	calc := NewPriceCalculator(NewPriceTableResolver(), zap.NewNop())

	t.Run("per unit sums tiers", func(t *testing.T) {
		q, c := 12, "US"
		total, err := calc.Calc(CalcRequest{Service: roomsService(), Entries: roomsTable(), Quantity: &q, Country: &c})
		require.NoError(t, err)
		// 5*10 + 5*8 + 2*5
		assert.True(t, total.Equals(domain.MustMoney("100", "USD")), total.String())
	})

	t.Run("flat service charges one unit", func(t *testing.T) {
		entries := []*domain.PriceEntry{priceEntry("flat", "support", nil, nil, nil, "49.99", true)}
		q, c := 30, "US"
		total, err := calc.Calc(CalcRequest{Service: flatService(), Entries: entries, Quantity: &q, Country: &c})
		require.NoError(t, err)
		assert.True(t, total.Equals(domain.MustMoney("49.99", "USD")))
	})

	t.Run("every unit of a tier is charged", func(t *testing.T) {
		entries := []*domain.PriceEntry{
			priceEntry("pack", "rooms", nil, intPtr(1), intPtr(10), "70", false),
			priceEntry("base", "rooms", nil, nil, nil, "9", true),
		}
		q, c := 12, "US"
		total, err := calc.Calc(CalcRequest{Service: roomsService(), Entries: entries, Quantity: &q, Country: &c})
		require.NoError(t, err)
		// 10*70 + 2*9
		assert.True(t, total.Equals(domain.MustMoney("718", "USD")), total.String())
	})

	t.Run("rooms without a per unit base price only the tiers", func(t *testing.T) {
		entries := []*domain.PriceEntry{
			priceEntry("t1", "rooms", nil, intPtr(1), intPtr(2), "10", true),
			priceEntry("flat", "rooms", nil, nil, nil, "30", false),
		}
		q, c := 4, "US"
		total, err := calc.Calc(CalcRequest{Service: roomsService(), Entries: entries, Quantity: &q, Country: &c})
		require.NoError(t, err)
		assert.True(t, total.Equals(domain.MustMoney("20", "USD")), total.String())
	})

	t.Run("values come from the client service", func(t *testing.T) {
		cs, err := domain.NewClientService("cs1", "c1", roomsService(), 3, "US", now, now)
		require.NoError(t, err)
		total, err := calc.Calc(CalcRequest{Service: roomsService(), Entries: roomsTable(), ClientService: cs})
		require.NoError(t, err)
		assert.True(t, total.Equals(domain.MustMoney("30", "USD")))

		q := 6
		total, err = calc.Calc(CalcRequest{Service: roomsService(), Entries: roomsTable(), ClientService: cs, Quantity: &q})
		require.NoError(t, err)
		assert.True(t, total.Equals(domain.MustMoney("58", "USD")))
	})

	t.Run("missing quantity or country", func(t *testing.T) {
		c := "US"
		_, err := calc.Calc(CalcRequest{Service: roomsService(), Entries: roomsTable(), Country: &c})
		assert.ErrorIs(t, err, domain.ErrInvalidCountryOrQuantity)

		q := 2
		_, err = calc.Calc(CalcRequest{Service: roomsService(), Entries: roomsTable(), Quantity: &q})
		assert.ErrorIs(t, err, domain.ErrInvalidCountryOrQuantity)
	})

	t.Run("mixed currencies in one table fail loudly", func(t *testing.T) {
		entries := roomsTable()
		entries[2].Price = domain.MustMoney("8", "EUR")
		q, c := 7, "US"
		_, err := calc.Calc(CalcRequest{Service: roomsService(), Entries: entries, Quantity: &q, Country: &c})
		assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
	})
}

func snapshot(t *testing.T, pct int64, uses int) *domain.ClientDiscount {
	t.Helper()
	cd, err := domain.NewClientSnapshot("cd1", &domain.Discount{
		ID:           "d1",
		Code:         "SAVE",
		Percentage:   decimal.NewFromInt(pct),
		NumberOfUses: uses,
	}, "c1", now)
	require.NoError(t, err)
	return cd
}

func TestDiscountEngine_Apply(t *testing.T) {
	engine := NewDiscountEngine(zap.NewNop())
	price := domain.MustMoney("200", "USD")

	t.Run("no snapshot passes through", func(t *testing.T) {
		got := engine.Apply(nil, price, false, now)
		assert.True(t, got.Price.Equals(price))
		assert.False(t, got.Applied)
	})

	t.Run("zero price passes through", func(t *testing.T) {
		got := engine.Apply(snapshot(t, 10, 1), domain.Zero("USD"), false, now)
		assert.False(t, got.Applied)
	})

	t.Run("zero price keeps an applied discount", func(t *testing.T) {
		got := engine.Apply(snapshot(t, 10, 1), domain.Zero("USD"), true, now)
		assert.True(t, got.Applied)
		assert.False(t, got.RecordUsage)
		assert.True(t, got.Price.IsZero())
	})

	t.Run("applies and asks for usage", func(t *testing.T) {
		got := engine.Apply(snapshot(t, 25, 1), price, false, now)
		assert.True(t, got.Price.Equals(domain.MustMoney("150", "USD")))
		assert.True(t, got.RecordUsage)
	})

	t.Run("exhausted snapshot is skipped", func(t *testing.T) {
		got := engine.Apply(snapshot(t, 25, 0), price, false, now)
		assert.True(t, got.Price.Equals(price))
	})

	t.Run("expired snapshot is skipped unless already applied", func(t *testing.T) {
		end := now.Add(-time.Hour)
		cd := domain.ReconstructClientDiscount(domain.ClientDiscountState{
			ID: "cd1", ClientID: "c1", Percentage: decimal.NewFromInt(50), EndDate: &end, NumberOfUses: 1, UsageCount: 1,
		})
		assert.False(t, engine.Apply(cd, price, false, now).Applied)

		got := engine.Apply(cd, price, true, now)
		assert.True(t, got.Applied)
		assert.False(t, got.RecordUsage)
		assert.True(t, got.Price.Equals(domain.MustMoney("100", "USD")))
	})
}

func TestDiscountEngine_Snapshot(t *testing.T) {
	engine := NewDiscountEngine(zap.NewNop())

	assert.NotNil(t, engine.Snapshot("cd1", &domain.Discount{ID: "d1", Code: "OK", Percentage: decimal.NewFromInt(5), NumberOfUses: 1}, "c1", now))
	assert.Nil(t, engine.Snapshot("cd1", &domain.Discount{ID: "d1", Code: "bad code!"}, "c1", now))
	assert.Nil(t, engine.Snapshot("cd1", nil, "c1", now))
}

type fixedNotes struct{}

func (fixedNotes) OrderNote(lang string, order *domain.Order, _ []*domain.ClientService) string {
	return lang + ":" + order.ID()
}

func pricedService(t *testing.T, id, amount string, currency domain.Currency) *domain.ClientService {
	t.Helper()
	cs, err := domain.NewClientService(id, "c1", roomsService(), 1, "US", now, now)
	require.NoError(t, err)
	cs.SetPrice(domain.MustMoney(amount, currency), now)
	return cs
}

func newAggregator() *OrderAggregator {
	return NewOrderAggregator(NewDiscountEngine(zap.NewNop()), fixedNotes{}, "USD", []string{"en", "ru"}, zap.NewNop())
}

func TestOrderAggregator_Recompute(t *testing.T) {
	t.Run("sums enabled members and fills notes", func(t *testing.T) {
		a, b := pricedService(t, "a", "10.10", "USD"), pricedService(t, "b", "5", "USD")
		off := pricedService(t, "c", "99", "USD")
		off.Disable(now)
		order, err := domain.NewOrder("o1", "c1", []string{"a", "b", "c"}, "USD", now)
		require.NoError(t, err)

		res, err := newAggregator().Recompute(order, []*domain.ClientService{a, b, off}, nil, now)
		require.NoError(t, err)
		assert.True(t, res.Price.Equals(domain.MustMoney("15.10", "USD")))
		assert.Equal(t, map[string]string{"en": "en:o1", "ru": "ru:o1"}, order.Notes())
	})

	t.Run("mixed currencies corrupt the order", func(t *testing.T) {
		a, b := pricedService(t, "a", "10", "USD"), pricedService(t, "b", "5", "EUR")
		order, _ := domain.NewOrder("o1", "c1", []string{"a", "b"}, "USD", now)

		res, err := newAggregator().Recompute(order, []*domain.ClientService{a, b}, nil, now)
		require.NoError(t, err)
		assert.True(t, res.Corrupted)
		assert.Equal(t, domain.OrderCorrupted, order.Status())
		assert.True(t, order.Price().Equals(domain.Zero("USD")))

		again, err := newAggregator().Recompute(order, []*domain.ClientService{a}, nil, now)
		require.NoError(t, err)
		assert.True(t, again.Frozen)
		assert.True(t, order.Price().Equals(domain.Zero("USD")))
	})

	t.Run("discount is consumed once across recomputes", func(t *testing.T) {
		a := pricedService(t, "a", "100", "USD")
		order, _ := domain.NewOrder("o1", "c1", []string{"a"}, "USD", now)
		cd := snapshot(t, 10, 1)
		agg := newAggregator()

		res, err := agg.Recompute(order, []*domain.ClientService{a}, cd, now)
		require.NoError(t, err)
		assert.True(t, res.DiscountUsed)
		assert.True(t, res.Price.Equals(domain.MustMoney("90", "USD")))
		assert.Equal(t, 1, cd.UsageCount())

		res, err = agg.Recompute(order, []*domain.ClientService{a}, cd, now)
		require.NoError(t, err)
		assert.False(t, res.DiscountUsed)
		assert.True(t, res.Price.Equals(domain.MustMoney("90", "USD")))
		assert.Equal(t, 1, cd.UsageCount())
		assert.True(t, order.HasDiscount("cd1"))
	})

	t.Run("discount stays on the order through a zero total", func(t *testing.T) {
		a := pricedService(t, "a", "10", "USD")
		order, _ := domain.NewOrder("o1", "c1", []string{"a"}, "USD", now)
		cd := snapshot(t, 10, 5)
		agg := newAggregator()

		_, err := agg.Recompute(order, []*domain.ClientService{a}, cd, now)
		require.NoError(t, err)
		assert.Equal(t, 1, cd.UsageCount())

		a.SetPrice(domain.Zero("USD"), now)
		res, err := agg.Recompute(order, []*domain.ClientService{a}, cd, now)
		require.NoError(t, err)
		assert.True(t, res.Price.IsZero())
		assert.True(t, order.HasDiscount("cd1"))

		a.SetPrice(domain.MustMoney("10", "USD"), now)
		res, err = agg.Recompute(order, []*domain.ClientService{a}, cd, now)
		require.NoError(t, err)
		assert.False(t, res.DiscountUsed)
		assert.True(t, res.Price.Equals(domain.MustMoney("9", "USD")))
		assert.Equal(t, 1, cd.UsageCount())
	})

	t.Run("unpriced member is an error", func(t *testing.T) {
		cs, _ := domain.NewClientService("a", "c1", roomsService(), 1, "US", now, now)
		order, _ := domain.NewOrder("o1", "c1", []string{"a"}, "USD", now)
		_, err := newAggregator().Recompute(order, []*domain.ClientService{cs}, nil, now)
		assert.ErrorIs(t, err, domain.ErrPriceNotCalculated)
	})

	t.Run("foreign member is rejected", func(t *testing.T) {
		cs, _ := domain.NewClientService("a", "c2", roomsService(), 1, "US", now, now)
		order, _ := domain.NewOrder("o1", "c1", []string{"a"}, "USD", now)
		_, err := newAggregator().Recompute(order, []*domain.ClientService{cs}, nil, now)
		assert.ErrorIs(t, err, domain.ErrForeignService)
	})
}
