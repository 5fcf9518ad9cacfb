package activate_pending

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/testutil"
)

func TestActivatePending(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	rooms := env.CreateService(t, "rooms-monthly", domain.ServiceTypeRooms, testutil.Default())
	env.CreateBasePrice(t, rooms.ID, "10", "EUR", true)
	env.CreateClient(t, "c1", "DE")

	env.Subscribe(t, "current", "c1", rooms, 2, testutil.Start.AddDate(0, 0, -20))
	env.Subscribe(t, "next", "c1", rooms, 5, testutil.Start.AddDate(0, 0, 2))

	interactor := NewInteractor(env.Repos, env.Pricer, env.Clock, env.Logger)

	t.Run("nothing before begin", func(t *testing.T) {
		res, err := interactor.Execute(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Activated)
		assert.Equal(t, domain.ClientServiceNext, env.ClientService(t, "next").Status())
	})

	t.Run("activates and replaces current", func(t *testing.T) {
		env.Clock.AdvanceDays(2)

		res, err := interactor.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Activated)
		assert.Equal(t, 1, res.Disabled)

		next := env.ClientService(t, "next")
		assert.Equal(t, domain.ClientServiceActive, next.Status())
		assert.True(t, next.IsCurrent())

		current := env.ClientService(t, "current")
		assert.False(t, current.IsEnabled())
		assert.Equal(t, domain.ClientServiceArchive, current.Status())

		client, err := env.Repos.Clients.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, 5, client.RoomLimit)
		assert.Contains(t, env.PendingEventTypes(t), "client_service.activated")
	})

	t.Run("second pass is a no-op", func(t *testing.T) {
		env.Clock.Advance(time.Minute)
		res, err := interactor.Execute(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Activated)
	})
}

func TestActivatePending_KeepsOtherTypes(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	rooms := env.CreateService(t, "rooms-monthly", domain.ServiceTypeRooms, testutil.Default())
	env.CreateBasePrice(t, rooms.ID, "10", "EUR", true)
	support := env.CreateService(t, "support", domain.ServiceTypeOther)
	env.CreateBasePrice(t, support.ID, "5", "EUR", false)
	env.CreateClient(t, "c1", "DE")

	env.Subscribe(t, "support", "c1", support, 1, testutil.Start)
	env.Subscribe(t, "rooms", "c1", rooms, 3, testutil.Start.Add(time.Hour))
	env.Clock.Advance(2 * time.Hour)

	res, err := NewInteractor(env.Repos, env.Pricer, env.Clock, env.Logger).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Activated)
	assert.Zero(t, res.Disabled)
	assert.True(t, env.ClientService(t, "support").IsCurrent())
}
