package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func entry(id string, from, to *int) *PriceEntry {
	return &PriceEntry{
		ID:         id,
		ServiceID:  "svc",
		PeriodFrom: from,
		PeriodTo:   to,
		Price:      MustMoney("10", "USD"),
		ForUnit:    true,
		IsEnabled:  true,
	}
}

func TestPriceEntry_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b *PriceEntry
		want bool
	}{
		{"adjacent ranges are disjoint", entry("a", intPtr(1), intPtr(5)), entry("b", intPtr(6), intPtr(10)), false},
		{"shared boundary overlaps", entry("a", intPtr(1), intPtr(5)), entry("b", intPtr(5), intPtr(10)), true},
		{"open upper bound overlaps later range", entry("a", intPtr(1), nil), entry("b", intPtr(50), intPtr(60)), true},
		{"open lower bound before range", entry("a", nil, intPtr(3)), entry("b", intPtr(4), nil), false},
		{"both open ranges", entry("a", nil, intPtr(10)), entry("b", nil, intPtr(2)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestPriceEntry_Contains(t *testing.T) {
	e := entry("a", intPtr(6), intPtr(10))
	assert.False(t, e.Contains(5))
	assert.True(t, e.Contains(6))
	assert.True(t, e.Contains(10))
	assert.False(t, e.Contains(11))
	assert.True(t, entry("base", nil, nil).Contains(1000))
}

func TestPriceEntry_ValidateAgainst(t *testing.T) {
	existing := []*PriceEntry{
		entry("base", nil, nil),
		entry("t1", intPtr(1), intPtr(5)),
	}

	t.Run("second base rejected", func(t *testing.T) {
		err := entry("base2", nil, nil).ValidateAgainst(existing)
		assert.ErrorIs(t, err, ErrBasePriceExists)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("overlapping tier rejected", func(t *testing.T) {
		err := entry("t2", intPtr(5), intPtr(9)).ValidateAgainst(existing)
		assert.ErrorIs(t, err, ErrPeriodOverlap)
	})

	t.Run("disjoint tier accepted", func(t *testing.T) {
		assert.NoError(t, entry("t2", intPtr(6), intPtr(9)).ValidateAgainst(existing))
	})

	t.Run("other country scope is independent", func(t *testing.T) {
		e := entry("us-base", nil, nil)
		e.CountryID = strPtr("US")
		assert.NoError(t, e.ValidateAgainst(existing))
	})

	t.Run("disabled entry is unconstrained", func(t *testing.T) {
		e := entry("off", nil, nil)
		e.IsEnabled = false
		assert.NoError(t, e.ValidateAgainst(existing))
	})

	t.Run("updating itself is fine", func(t *testing.T) {
		assert.NoError(t, existing[1].ValidateAgainst(existing))
	})

	t.Run("reversed range rejected", func(t *testing.T) {
		assert.ErrorIs(t, entry("bad", intPtr(9), intPtr(2)).ValidateAgainst(nil), ErrInvalidPeriodRange)
	})
}
