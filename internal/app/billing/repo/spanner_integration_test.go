//go:build integration

package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/advance_billing"
	"github.com/light-bringer/tariff-billing/internal/models/m_order"
	"github.com/light-bringer/tariff-billing/internal/models/m_order_client_service"
	"github.com/light-bringer/tariff-billing/internal/models/m_service"
	"github.com/light-bringer/tariff-billing/internal/testutil"
)

func TestSpannerRepositories_RoundTrip(t *testing.T) {
	ctx := context.Background()
	env, _ := testutil.NewSpannerEnv(t)

	svc := env.CreateService(t, "rooms-monthly", domain.ServiceTypeRooms, testutil.Default())
	env.CreatePrice(t, svc.ID, testutil.StrPtr("DE"), testutil.IntPtr(1), testutil.IntPtr(5), "9.5", "EUR", true)
	env.CreateClient(t, "c1", "DE")
	env.Subscribe(t, "cs1", "c1", svc, 3, testutil.Start)

	entries, err := env.Repos.PriceEntries.ListByService(ctx, svc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Price.Equals(domain.MustMoney("9.5", "EUR")))
	assert.Equal(t, "DE", *entries[0].CountryID)

	cs := env.ClientService(t, "cs1")
	price, ok := cs.Price()
	require.True(t, ok)
	assert.True(t, price.Equals(domain.MustMoney("28.5", "EUR")))

	_, err = env.Repos.Orders.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	_, err = env.Repos.Services.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)
}

func TestSpannerRepositories_Rollback(t *testing.T) {
	ctx := context.Background()
	env, client := testutil.NewSpannerEnv(t)
	boom := errors.New("boom")

	err := env.Repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		svc := &domain.Service{ID: "s1", Title: "Rooms", Type: domain.ServiceTypeRooms, Period: 1, PeriodUnit: domain.PeriodMonth, IsEnabled: true}
		if err := env.Repos.Services.Save(ctx, svc); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	testutil.AssertRowCount(t, client, m_service.TableName, 0)
}

func TestSpannerRepositories_AdvanceBilling(t *testing.T) {
	ctx := context.Background()
	env, client := testutil.NewSpannerEnv(t)

	svc := env.CreateService(t, "rooms-monthly", domain.ServiceTypeRooms, testutil.Default())
	env.CreateBasePrice(t, svc.ID, "10", "EUR", true)
	env.CreateClient(t, "c1", "DE")
	env.Subscribe(t, "cs1", "c1", svc, 2, testutil.Start.AddDate(0, -1, 0))

	interactor := advance_billing.NewInteractor(env.Repos, env.Pricer, env.Clock, env.Logger, 5)

	res, err := interactor.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Orders)
	testutil.AssertRowCount(t, client, m_order.TableName, 1)
	testutil.AssertRowCount(t, client, m_order_client_service.TableName, 1)

	orders := env.InFlightOrders(t, "c1")
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Price().Equals(domain.MustMoney("20", "EUR")))

	pending, err := env.Repos.Outbox.ListPending(ctx, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, pending)
	for _, e := range pending {
		assert.Equal(t, contracts.OutboxPending, e.Status)
	}

	res, err = interactor.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Orders, "a billed service is not billed twice")
}
