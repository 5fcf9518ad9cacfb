package notify_expiring_orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/create_order"
	"github.com/light-bringer/tariff-billing/internal/testutil"
)

func TestNotifyExpiringOrders(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	rooms := env.CreateService(t, "rooms-monthly", domain.ServiceTypeRooms, testutil.Default())
	env.CreateBasePrice(t, rooms.ID, "10", "EUR", true)
	env.CreateClient(t, "c1", "DE")
	env.Subscribe(t, "soon", "c1", rooms, 1, testutil.Start.AddDate(0, 0, 2))
	env.CreateClient(t, "c2", "DE")
	env.Subscribe(t, "later", "c2", rooms, 1, testutil.Start.AddDate(0, 0, 20))

	orders := create_order.NewInteractor(env.Repos, env.Pricer, env.Clock)
	soon, err := orders.Execute(ctx, &create_order.Request{ClientID: "c1", ClientServiceIDs: []string{"soon"}})
	require.NoError(t, err)
	_, err = orders.Execute(ctx, &create_order.Request{ClientID: "c2", ClientServiceIDs: []string{"later"}})
	require.NoError(t, err)

	interactor := NewInteractor(env.Repos, env.Clock, env.Logger, 3)

	notified, err := interactor.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)

	order, err := env.Repos.Orders.GetByID(ctx, soon.OrderID)
	require.NoError(t, err)
	assert.NotNil(t, order.NotifiedAt())
	assert.Contains(t, env.PendingEventTypes(t), "notification."+domain.TemplateOrderWillExpire)

	notified, err = interactor.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, notified, "an order is notified once")
}
