package create_client_service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/testutil"
)

func setup(t *testing.T) (*testutil.Env, *Interactor) {
	env := testutil.NewEnv(t)
	rooms := env.CreateService(t, "rooms-monthly", domain.ServiceTypeRooms, testutil.Default())
	env.CreateBasePrice(t, rooms.ID, "10", "EUR", true)
	env.CreatePrice(t, rooms.ID, testutil.StrPtr("CH"), nil, nil, "15", "CHF", true)
	env.CreateClient(t, "c1", "DE")
	return env, NewInteractor(env.Repos, env.Pricer, env.Clock)
}

func TestCreateClientService(t *testing.T) {
	ctx := context.Background()
	env, interactor := setup(t)

	first, err := interactor.Execute(ctx, &Request{ClientID: "c1", ServiceID: "rooms-monthly", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.ClientServiceActive, first.Status)
	require.NotNil(t, first.Price)
	assert.True(t, first.Price.Equals(domain.MustMoney("20", "EUR")))

	second, err := interactor.Execute(ctx, &Request{ClientID: "c1", ServiceID: "rooms-monthly", Quantity: 3, CountryID: "CH"})
	require.NoError(t, err)
	assert.True(t, second.Price.Equals(domain.MustMoney("45", "CHF")))

	assert.False(t, env.ClientService(t, first.ClientServiceID).IsEnabled(), "prior same-type service is disabled")

	client, err := env.Repos.Clients.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, client.RoomLimit)
}

func TestCreateClientService_FutureBeginIsScheduled(t *testing.T) {
	ctx := context.Background()
	env, interactor := setup(t)

	current, err := interactor.Execute(ctx, &Request{ClientID: "c1", ServiceID: "rooms-monthly", Quantity: 1})
	require.NoError(t, err)

	begin := testutil.Start.AddDate(0, 1, 0)
	next, err := interactor.Execute(ctx, &Request{ClientID: "c1", ServiceID: "rooms-monthly", Quantity: 4, Begin: &begin})
	require.NoError(t, err)
	assert.Equal(t, domain.ClientServiceNext, next.Status)
	assert.True(t, env.ClientService(t, current.ClientServiceID).IsCurrent())

	newer, err := interactor.Execute(ctx, &Request{ClientID: "c1", ServiceID: "rooms-monthly", Quantity: 6, Begin: &begin})
	require.NoError(t, err)
	assert.False(t, env.ClientService(t, next.ClientServiceID).IsEnabled(), "newer pending service replaces the older one")
	assert.True(t, env.ClientService(t, newer.ClientServiceID).IsPending())
}

func TestCreateClientService_Trial(t *testing.T) {
	ctx := context.Background()
	env, interactor := setup(t)

	_, err := interactor.Execute(ctx, &Request{ClientID: "c1", Trial: true, ServiceType: domain.ServiceTypeRooms, Quantity: 1})
	require.ErrorIs(t, err, domain.ErrNoTrialService)
	require.ErrorIs(t, err, domain.ErrConfiguration)

	trial := env.CreateService(t, "rooms-trial", domain.ServiceTypeRooms, testutil.Trial())
	env.CreateBasePrice(t, trial.ID, "0", "EUR", true)

	resp, err := interactor.Execute(ctx, &Request{ClientID: "c1", Trial: true, ServiceType: domain.ServiceTypeRooms, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, trial.ID, env.ClientService(t, resp.ClientServiceID).ServiceID())
	assert.True(t, resp.Price.IsZero())
}

func TestCreateClientService_Errors(t *testing.T) {
	ctx := context.Background()
	env, interactor := setup(t)
	unpriced := env.CreateService(t, "unpriced", domain.ServiceTypeOther)

	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"missing quantity", &Request{ClientID: "c1", ServiceID: "rooms-monthly"}, domain.ErrInvalidCountryOrQuantity},
		{"unknown client", &Request{ClientID: "nobody", ServiceID: "rooms-monthly", Quantity: 1}, domain.ErrClientNotFound},
		{"unknown service", &Request{ClientID: "c1", ServiceID: "missing", Quantity: 1}, domain.ErrServiceNotFound},
		{"empty price table", &Request{ClientID: "c1", ServiceID: unpriced.ID, Quantity: 1}, domain.ErrEmptyPrices},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interactor.Execute(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
