// Package testutil builds billing fixtures on top of the in-memory store
// or the Spanner emulator.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain/services"
	"github.com/light-bringer/tariff-billing/internal/app/billing/repo/memory"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Start is the default fixture time.
var Start = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

// BaseCurrency is the fixture base currency.
const BaseCurrency domain.Currency = "EUR"

// Env wires the billing engine to an in-memory store and a mock clock.
type Env struct {
	Store      *memory.Store
	Repos      contracts.Repositories
	Clock      *clock.MockClock
	Logger     *zap.Logger
	Resolver   *services.PriceTableResolver
	Calculator *services.PriceCalculator
	Discounts  *services.DiscountEngine
	Aggregator *services.OrderAggregator
	Pricer     *shared.Pricer
}

// NewEnv creates an empty environment at Start.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	store := memory.NewStore()
	env := newEnv(store.Repositories())
	env.Store = store
	return env
}

func newEnv(repos contracts.Repositories) *Env {
	logger := zap.NewNop()
	resolver := services.NewPriceTableResolver()
	calculator := services.NewPriceCalculator(resolver, logger)
	discounts := services.NewDiscountEngine(logger)
	aggregator := services.NewOrderAggregator(discounts, nil, BaseCurrency, nil, logger)

	return &Env{
		Repos:      repos,
		Clock:      clock.NewMockClock(Start),
		Logger:     logger,
		Resolver:   resolver,
		Calculator: calculator,
		Discounts:  discounts,
		Aggregator: aggregator,
		Pricer:     shared.NewPricer(repos, calculator, aggregator),
	}
}

// ServiceOption tweaks a fixture service.
type ServiceOption func(*domain.Service)

// Default marks the service as the type's default.
func Default() ServiceOption { return func(s *domain.Service) { s.IsDefault = true } }

// Trial marks the service as a trial.
func Trial() ServiceOption { return func(s *domain.Service) { s.IsTrial = true } }

// Disabled retires the service.
func Disabled() ServiceOption { return func(s *domain.Service) { s.IsEnabled = false } }

// Period sets the billing period.
func Period(n int, unit domain.PeriodUnit) ServiceOption {
	return func(s *domain.Service) { s.Period, s.PeriodUnit = n, unit }
}

// CreateService stores a monthly enabled service.
func (e *Env) CreateService(t *testing.T, id string, st domain.ServiceType, opts ...ServiceOption) *domain.Service {
	t.Helper()

	svc := &domain.Service{
		ID:         id,
		Title:      id,
		Type:       st,
		Period:     1,
		PeriodUnit: domain.PeriodMonth,
		IsEnabled:  true,
		CreatedAt:  e.Clock.Now(),
		UpdatedAt:  e.Clock.Now(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	require.NoError(t, e.Repos.Services.Save(context.Background(), svc))
	return svc
}

// CreateBasePrice stores an unbounded entry for the fallback scope.
func (e *Env) CreateBasePrice(t *testing.T, serviceID, amount string, currency domain.Currency, forUnit bool) *domain.PriceEntry {
	t.Helper()
	return e.CreatePrice(t, serviceID, nil, nil, nil, amount, currency, forUnit)
}

// CreatePrice stores a price entry.
func (e *Env) CreatePrice(t *testing.T, serviceID string, country *string, from, to *int, amount string, currency domain.Currency, forUnit bool) *domain.PriceEntry {
	t.Helper()

	entry := &domain.PriceEntry{
		ID:         uuid.New().String(),
		ServiceID:  serviceID,
		CountryID:  country,
		PeriodFrom: from,
		PeriodTo:   to,
		Price:      domain.MustMoney(amount, currency),
		ForUnit:    forUnit,
		IsEnabled:  true,
		CreatedAt:  e.Clock.Now(),
		UpdatedAt:  e.Clock.Now(),
	}
	require.NoError(t, e.Repos.PriceEntries.Save(context.Background(), entry))
	return entry
}

// CreateClient stores a client.
func (e *Env) CreateClient(t *testing.T, id, country string) *domain.Client {
	t.Helper()

	c := &domain.Client{
		ID:        id,
		Name:      id,
		Email:     id + "@example.com",
		Language:  "en",
		CountryID: country,
		CreatedAt: e.Clock.Now(),
		UpdatedAt: e.Clock.Now(),
	}
	require.NoError(t, e.Repos.Clients.Save(context.Background(), c))
	return c
}

// Subscribe stores a priced client service beginning at begin.
func (e *Env) Subscribe(t *testing.T, id, clientID string, svc *domain.Service, quantity int, begin time.Time) *domain.ClientService {
	t.Helper()

	ctx := context.Background()
	client, err := e.Repos.Clients.GetByID(ctx, clientID)
	require.NoError(t, err)

	cs, err := domain.NewClientService(id, clientID, svc, quantity, client.CountryID, begin, e.Clock.Now())
	require.NoError(t, err)
	require.NoError(t, e.Pricer.PriceClientService(ctx, cs, e.Clock.Now()))
	require.NoError(t, e.Repos.ClientServices.Save(ctx, cs))
	return cs
}

// AssignDiscount stores a discount snapshot for the client.
func (e *Env) AssignDiscount(t *testing.T, clientID string, percentage int64, uses int) *domain.ClientDiscount {
	t.Helper()

	template := &domain.Discount{
		ID:           uuid.New().String(),
		Code:         "FIXTURE",
		Title:        "fixture",
		Percentage:   decimal.NewFromInt(percentage),
		NumberOfUses: uses,
		IsEnabled:    true,
		CreatedAt:    e.Clock.Now(),
	}
	cd, err := domain.NewClientSnapshot(uuid.New().String(), template, clientID, e.Clock.Now())
	require.NoError(t, err)
	require.NoError(t, e.Repos.ClientDiscounts.Save(context.Background(), cd))
	return cd
}

// ClientService reloads a client service.
func (e *Env) ClientService(t *testing.T, id string) *domain.ClientService {
	t.Helper()
	cs, err := e.Repos.ClientServices.GetByID(context.Background(), id)
	require.NoError(t, err)
	return cs
}

// InFlightOrders lists the client's unpaid orders.
func (e *Env) InFlightOrders(t *testing.T, clientID string) []*domain.Order {
	t.Helper()
	orders, err := e.Repos.Orders.ListInFlightByClient(context.Background(), clientID)
	require.NoError(t, err)
	return orders
}

// PendingEventTypes lists the types of undelivered outbox events.
func (e *Env) PendingEventTypes(t *testing.T) []string {
	t.Helper()
	events, err := e.Repos.Outbox.ListPending(context.Background(), 0)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.EventType)
	}
	return types
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StrPtr returns a pointer to v.
func StrPtr(v string) *string { return &v }
