package cancel_order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/testutil"
)

type fakeGateway struct {
	cancelled []string
}

func (g *fakeGateway) Charge(context.Context, *domain.Order) (*contracts.ChargeResult, error) {
	return &contracts.ChargeResult{}, nil
}

func (g *fakeGateway) CancelSubscription(_ context.Context, id string) (bool, error) {
	g.cancelled = append(g.cancelled, id)
	return true, nil
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	env.CreateClient(t, "c1", "DE")

	order, err := domain.NewOrder("o1", "c1", []string{"cs1"}, testutil.BaseCurrency, env.Clock.Now())
	require.NoError(t, err)
	require.NoError(t, order.BeginCharge("attempt-1", time.Minute, env.Clock.Now()))
	order.SetGatewaySubscription("sub-1", env.Clock.Now())
	require.NoError(t, env.Repos.Orders.Save(ctx, order))

	gateway := &fakeGateway{}
	interactor := NewInteractor(env.Repos, gateway, env.Clock, env.Logger)

	require.NoError(t, interactor.Execute(ctx, &Request{OrderID: "o1"}))

	stored, err := env.Repos.Orders.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCanceled, stored.Status())
	assert.Equal(t, []string{"sub-1"}, gateway.cancelled)

	err = interactor.Execute(ctx, &Request{OrderID: "o1"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Len(t, gateway.cancelled, 1)

	err = interactor.Execute(ctx, &Request{OrderID: "missing"})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
