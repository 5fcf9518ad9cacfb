package pay_order

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/create_order"
	"github.com/light-bringer/tariff-billing/internal/testutil"
)

const lease = 2 * time.Minute

type fakeGateway struct {
	err     error
	charged []string
}

func (g *fakeGateway) Charge(_ context.Context, order *domain.Order) (*contracts.ChargeResult, error) {
	g.charged = append(g.charged, order.ID())
	if g.err != nil {
		return &contracts.ChargeResult{SubscriptionID: "sub-pending"}, g.err
	}
	return &contracts.ChargeResult{TransactionID: "tx-1", SubscriptionID: "sub-1"}, nil
}

func (g *fakeGateway) CancelSubscription(context.Context, string) (bool, error) {
	return true, nil
}

func setup(t *testing.T) (*testutil.Env, string) {
	t.Helper()
	env := testutil.NewEnv(t)
	rooms := env.CreateService(t, "rooms-monthly", domain.ServiceTypeRooms, testutil.Default())
	env.CreateBasePrice(t, rooms.ID, "10", "EUR", true)
	env.CreateClient(t, "c1", "DE")
	env.Subscribe(t, "cs1", "c1", rooms, 1, testutil.Start)

	resp, err := create_order.NewInteractor(env.Repos, env.Pricer, env.Clock).Execute(context.Background(), &create_order.Request{
		ClientID:         "c1",
		ClientServiceIDs: []string{"cs1"},
	})
	require.NoError(t, err)
	return env, resp.OrderID
}

func TestPayOrder(t *testing.T) {
	ctx := context.Background()
	env, orderID := setup(t)
	gateway := &fakeGateway{}

	resp, err := NewInteractor(env.Repos, gateway, env.Clock, env.Logger, lease).Execute(ctx, &Request{OrderID: orderID})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", resp.TransactionID)
	assert.True(t, resp.Price.Equals(domain.MustMoney("10", "EUR")))

	order, err := env.Repos.Orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, order.Status())
	assert.Equal(t, "sub-1", order.GatewaySubscriptionID())
	assert.True(t, env.ClientService(t, "cs1").IsPaid())
	assert.Contains(t, env.PendingEventTypes(t), "notification."+domain.TemplateOrderPaid)

	_, err = NewInteractor(env.Repos, gateway, env.Clock, env.Logger, lease).Execute(ctx, &Request{OrderID: orderID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Len(t, gateway.charged, 1, "paid orders are never charged again")
}

func TestPayOrder_ChargeFailureKeepsProcessing(t *testing.T) {
	ctx := context.Background()
	env, orderID := setup(t)
	gateway := &fakeGateway{err: errors.New("card declined")}
	interactor := NewInteractor(env.Repos, gateway, env.Clock, env.Logger, lease)

	_, err := interactor.Execute(ctx, &Request{OrderID: orderID})
	require.ErrorIs(t, err, domain.ErrPaymentFailed)

	order, err := env.Repos.Orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderProcessing, order.Status())
	assert.Equal(t, "sub-pending", order.GatewaySubscriptionID())
	assert.False(t, env.ClientService(t, "cs1").IsPaid())

	gateway.err = nil
	_, err = interactor.Execute(ctx, &Request{OrderID: orderID})
	require.NoError(t, err)
	assert.Len(t, gateway.charged, 2)
}

// blockingGateway holds the first charge until released and counts calls.
type blockingGateway struct {
	calls   atomic.Int32
	keys    []string
	entered chan struct{}
	release chan struct{}
}

func (g *blockingGateway) Charge(_ context.Context, order *domain.Order) (*contracts.ChargeResult, error) {
	if g.calls.Add(1) == 1 {
		g.keys = append(g.keys, order.ChargeAttemptID())
		close(g.entered)
		<-g.release
	}
	return &contracts.ChargeResult{TransactionID: "tx-1"}, nil
}

func (g *blockingGateway) CancelSubscription(context.Context, string) (bool, error) {
	return false, nil
}

func TestPayOrder_ConcurrentAttemptIsRejected(t *testing.T) {
	ctx := context.Background()
	env, orderID := setup(t)
	gateway := &blockingGateway{entered: make(chan struct{}), release: make(chan struct{})}
	interactor := NewInteractor(env.Repos, gateway, env.Clock, env.Logger, lease)

	done := make(chan error, 1)
	go func() {
		_, err := interactor.Execute(ctx, &Request{OrderID: orderID})
		done <- err
	}()
	<-gateway.entered

	_, err := interactor.Execute(ctx, &Request{OrderID: orderID})
	assert.ErrorIs(t, err, domain.ErrChargeInProgress)

	close(gateway.release)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, gateway.calls.Load())
	require.Len(t, gateway.keys, 1)
	assert.NotEmpty(t, gateway.keys[0])

	order, err := env.Repos.Orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, order.Status())
}

func TestPayOrder_StaleAttemptIsRetriedWithSameKey(t *testing.T) {
	ctx := context.Background()
	env, orderID := setup(t)

	// An attempt that never finished, e.g. the process died mid-charge.
	err := env.Repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := env.Repos.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.BeginCharge("stale-key", lease, env.Clock.Now()); err != nil {
			return err
		}
		return env.Repos.Orders.Save(ctx, order)
	})
	require.NoError(t, err)

	gateway := &fakeGateway{}
	interactor := NewInteractor(env.Repos, gateway, env.Clock, env.Logger, lease)

	_, err = interactor.Execute(ctx, &Request{OrderID: orderID})
	require.ErrorIs(t, err, domain.ErrChargeInProgress)
	assert.Empty(t, gateway.charged)

	env.Clock.Advance(lease)
	_, err = interactor.Execute(ctx, &Request{OrderID: orderID})
	require.NoError(t, err)
	assert.Len(t, gateway.charged, 1)

	order, err := env.Repos.Orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "stale-key", order.ChargeAttemptID())
}
