package update_client_service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/create_order"
	"github.com/light-bringer/tariff-billing/internal/testutil"
)

func TestUpdateClientService_RepricesOpenOrders(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	rooms := env.CreateService(t, "rooms-monthly", domain.ServiceTypeRooms, testutil.Default())
	env.CreateBasePrice(t, rooms.ID, "10", "EUR", true)
	env.CreatePrice(t, rooms.ID, nil, testutil.IntPtr(4), nil, "6", "EUR", true)
	support := env.CreateService(t, "support", domain.ServiceTypeOther)
	env.CreateBasePrice(t, support.ID, "5", "EUR", false)
	env.CreateClient(t, "c1", "DE")
	env.Subscribe(t, "rooms", "c1", rooms, 2, testutil.Start)
	env.Subscribe(t, "support", "c1", support, 1, testutil.Start)

	order, err := create_order.NewInteractor(env.Repos, env.Pricer, env.Clock).Execute(ctx, &create_order.Request{
		ClientID:         "c1",
		ClientServiceIDs: []string{"rooms", "support"},
	})
	require.NoError(t, err)
	require.True(t, order.Price.Equals(domain.MustMoney("25", "EUR")))

	interactor := NewInteractor(env.Repos, env.Pricer, env.Clock)

	resp, err := interactor.Execute(ctx, &Request{ClientServiceID: "rooms", Quantity: testutil.IntPtr(5)})
	require.NoError(t, err)
	// Units 1..3 at the base price, 4..5 at the tier price.
	assert.True(t, resp.Price.Equals(domain.MustMoney("42", "EUR")))

	stored, err := env.Repos.Orders.GetByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.True(t, stored.Price().Equals(domain.MustMoney("47", "EUR")))

	client, err := env.Repos.Clients.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 5, client.RoomLimit)

	t.Run("disabling drops the service from the total", func(t *testing.T) {
		resp, err := interactor.Execute(ctx, &Request{ClientServiceID: "support", Disable: true})
		require.NoError(t, err)
		assert.False(t, resp.IsEnabled)

		stored, err := env.Repos.Orders.GetByID(ctx, order.OrderID)
		require.NoError(t, err)
		assert.True(t, stored.Price().Equals(domain.MustMoney("42", "EUR")))
	})

	t.Run("rejects invalid quantity", func(t *testing.T) {
		_, err := interactor.Execute(ctx, &Request{ClientServiceID: "rooms", Quantity: testutil.IntPtr(0)})
		assert.ErrorIs(t, err, domain.ErrInvalidCountryOrQuantity)
	})
}
