package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyRooms() *Service {
	return &Service{ID: "rooms-m", Title: "Rooms", Type: ServiceTypeRooms, Period: 1, PeriodUnit: PeriodMonth, IsEnabled: true, IsDefault: true}
}

func TestNewClientService(t *testing.T) {
	now := date(2024, time.January, 31)

	t.Run("active when begin is not in the future", func(t *testing.T) {
		cs, err := NewClientService("cs1", "c1", monthlyRooms(), 3, "US", now, now)
		require.NoError(t, err)
		assert.Equal(t, ClientServiceActive, cs.Status())
		assert.Equal(t, date(2024, time.February, 29), cs.End())
		assert.True(t, cs.NeedsPricing())
		assert.True(t, cs.Changes().HasChanges())
		assert.Len(t, cs.DomainEvents(), 1)
	})

	t.Run("pending when begin is in the future", func(t *testing.T) {
		cs, err := NewClientService("cs1", "c1", monthlyRooms(), 3, "US", now.AddDate(0, 0, 1), now)
		require.NoError(t, err)
		assert.True(t, cs.IsPending())
	})

	t.Run("invalid quantity or country", func(t *testing.T) {
		_, err := NewClientService("cs1", "c1", monthlyRooms(), 0, "US", now, now)
		assert.ErrorIs(t, err, ErrInvalidCountryOrQuantity)
		_, err = NewClientService("cs1", "c1", monthlyRooms(), 1, "", now, now)
		assert.ErrorIs(t, err, ErrInvalidCountryOrQuantity)
	})

	t.Run("disabled service is a configuration error", func(t *testing.T) {
		svc := monthlyRooms()
		svc.IsEnabled = false
		_, err := NewClientService("cs1", "c1", svc, 1, "US", now, now)
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestClientService_RollForward(t *testing.T) {
	begin := date(2024, time.January, 1)
	now := date(2024, time.January, 29)
	cs, err := NewClientService("cs1", "c1", monthlyRooms(), 2, "US", begin, begin)
	require.NoError(t, err)
	cs.SetPrice(MustMoney("20", "USD"), begin)
	cs.MarkPaid(begin)
	cs.Changes().Clear()
	cs.ClearEvents()

	t.Run("moves the window and resets billing state", func(t *testing.T) {
		require.NoError(t, cs.RollForward(monthlyRooms(), now))
		assert.Equal(t, date(2024, time.February, 1), cs.Begin())
		assert.Equal(t, date(2024, time.March, 1), cs.End())
		assert.False(t, cs.IsPaid())
		assert.True(t, cs.NeedsPricing())
		assert.True(t, cs.Changes().Dirty(FieldBegin))
		require.Len(t, cs.DomainEvents(), 1)
		assert.Equal(t, "client_service.rolled", cs.DomainEvents()[0].EventType())
	})

	t.Run("replacement swaps the service", func(t *testing.T) {
		repl := monthlyRooms()
		repl.ID = "rooms-y"
		repl.PeriodUnit = PeriodYear
		require.NoError(t, cs.RollForward(repl, now))
		assert.Equal(t, "rooms-y", cs.ServiceID())
		assert.Equal(t, date(2025, time.March, 1), cs.End())
	})

	t.Run("type mismatch rejected", func(t *testing.T) {
		other := &Service{ID: "o", Type: ServiceTypeOther, Period: 1, PeriodUnit: PeriodMonth, IsEnabled: true}
		assert.ErrorIs(t, cs.RollForward(other, now), ErrConfiguration)
	})

	t.Run("disabled service cannot roll", func(t *testing.T) {
		cs.Disable(now)
		assert.ErrorIs(t, cs.RollForward(monthlyRooms(), now), ErrClientServiceDisabled)
	})
}

func TestClientService_Activate(t *testing.T) {
	now := date(2024, time.March, 1)
	cs, err := NewClientService("cs1", "c1", monthlyRooms(), 2, "US", now.AddDate(0, 0, 5), now)
	require.NoError(t, err)

	require.NoError(t, cs.Activate(now))
	assert.True(t, cs.IsCurrent())
	assert.ErrorIs(t, cs.Activate(now), ErrNotPending)
}

func TestClientService_SetQuantity(t *testing.T) {
	now := date(2024, time.March, 1)
	cs, err := NewClientService("cs1", "c1", monthlyRooms(), 2, "US", now, now)
	require.NoError(t, err)
	cs.SetPrice(MustMoney("20", "USD"), now)

	require.NoError(t, cs.SetQuantity(4, now))
	assert.Equal(t, 4, cs.Quantity())
	assert.True(t, cs.NeedsPricing())
	assert.ErrorIs(t, cs.SetQuantity(0, now), ErrInvalidCountryOrQuantity)
}

func TestClientService_Disable(t *testing.T) {
	now := date(2024, time.March, 1)
	cs, err := NewClientService("cs1", "c1", monthlyRooms(), 2, "US", now, now)
	require.NoError(t, err)
	cs.ClearEvents()

	cs.Disable(now)
	cs.Disable(now)
	assert.False(t, cs.IsEnabled())
	assert.Equal(t, ClientServiceArchive, cs.Status())
	assert.Len(t, cs.DomainEvents(), 1)
}

func TestClient_RecomputeRoomLimit(t *testing.T) {
	now := date(2024, time.March, 1)
	a, _ := NewClientService("a", "c1", monthlyRooms(), 3, "US", now, now)
	b, _ := NewClientService("b", "c1", monthlyRooms(), 5, "US", now.AddDate(0, 1, 0), now)
	flat := &Service{ID: "f", Type: ServiceTypeOther, Period: 1, PeriodUnit: PeriodMonth, IsEnabled: true}
	c, _ := NewClientService("c", "c1", flat, 7, "US", now, now)

	client := &Client{ID: "c1", Name: "Acme", CountryID: "US"}
	assert.True(t, client.RecomputeRoomLimit([]*ClientService{a, b, c}))
	assert.Equal(t, 3, client.RoomLimit)
	assert.False(t, client.RecomputeRoomLimit([]*ClientService{a, b, c}))
}
