package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func template10() *Discount {
	return &Discount{
		ID:           "d1",
		Code:         "WELCOME-10",
		Title:        "Welcome",
		Percentage:   decimal.NewFromInt(10),
		NumberOfUses: 2,
		IsEnabled:    true,
	}
}

func TestDiscount_Validate(t *testing.T) {
	t.Run("valid template", func(t *testing.T) {
		assert.NoError(t, template10().Validate())
	})

	t.Run("bad code", func(t *testing.T) {
		d := template10()
		d.Code = "no spaces"
		assert.ErrorIs(t, d.Validate(), ErrInvalidDiscountCode)
	})

	t.Run("percentage out of range", func(t *testing.T) {
		d := template10()
		d.Percentage = decimal.NewFromInt(101)
		assert.ErrorIs(t, d.Validate(), ErrInvalidPercentage)
	})

	t.Run("reversed dates", func(t *testing.T) {
		d := template10()
		start, end := date(2024, time.May, 2), date(2024, time.May, 1)
		d.StartDate, d.EndDate = &start, &end
		assert.ErrorIs(t, d.Validate(), ErrInvalidDateRange)
	})
}

func TestNewClientSnapshot(t *testing.T) {
	now := date(2024, time.May, 1)
	tpl := template10()

	cd, err := NewClientSnapshot("cd1", tpl, "c1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, cd.RemainingUses())

	t.Run("template edits do not reach the snapshot", func(t *testing.T) {
		tpl.Percentage = decimal.NewFromInt(50)
		tpl.NumberOfUses = 100
		assert.True(t, cd.Percentage().Equal(decimal.NewFromInt(10)))
		assert.Equal(t, 2, cd.NumberOfUses())
	})

	t.Run("missing template", func(t *testing.T) {
		_, err := NewClientSnapshot("cd2", nil, "c1", now)
		assert.ErrorIs(t, err, ErrDiscountNotFound)
	})
}

func TestClientDiscount_Usage(t *testing.T) {
	now := date(2024, time.May, 1)
	cd, err := NewClientSnapshot("cd1", template10(), "c1", now)
	require.NoError(t, err)

	require.NoError(t, cd.RecordUsage(now))
	require.NoError(t, cd.RecordUsage(now))
	assert.False(t, cd.IsUsableAt(now))
	assert.ErrorIs(t, cd.RecordUsage(now), ErrDiscountExhausted)
	assert.Equal(t, 2, cd.UsageCount())
}

func TestClientDiscount_IsValidAt(t *testing.T) {
	start, end := date(2024, time.May, 1), date(2024, time.May, 31)
	cd := ReconstructClientDiscount(ClientDiscountState{ID: "cd1", StartDate: &start, EndDate: &end, NumberOfUses: 1})

	assert.False(t, cd.IsValidAt(date(2024, time.April, 30)))
	assert.True(t, cd.IsValidAt(start))
	assert.True(t, cd.IsValidAt(end))
	assert.False(t, cd.IsValidAt(date(2024, time.June, 1)))

	open := ReconstructClientDiscount(ClientDiscountState{ID: "cd2", NumberOfUses: 1})
	assert.True(t, open.IsValidAt(date(1990, time.January, 1)))
}

func TestClientDiscount_ApplyTo(t *testing.T) {
	cd := ReconstructClientDiscount(ClientDiscountState{Percentage: decimal.NewFromInt(10)})
	got := cd.ApplyTo(MustMoney("1000", "USD"))
	assert.True(t, got.Equals(MustMoney("900", "USD")))
}
