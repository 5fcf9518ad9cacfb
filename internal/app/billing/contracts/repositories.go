package contracts

import (
	"context"
	"time"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

// Transactor runs fn as one atomic unit. Rows read through repositories
// inside fn stay locked until it returns; writes are applied only if fn
// returns nil. Nested calls join the outer transaction.
//
// Writes buffered inside fn are not visible to reads in the same fn.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ServiceRepository persists the tariff catalog.
type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	List(ctx context.Context) ([]*domain.Service, error)
	ListByType(ctx context.Context, t domain.ServiceType) ([]*domain.Service, error)
	Save(ctx context.Context, svc *domain.Service) error
}

// PriceEntryRepository persists service price tables.
type PriceEntryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.PriceEntry, error)
	// ListByService returns every entry of the service, enabled or not.
	ListByService(ctx context.Context, serviceID string) ([]*domain.PriceEntry, error)
	Save(ctx context.Context, entry *domain.PriceEntry) error
}

// ClientRepository persists clients.
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	Save(ctx context.Context, client *domain.Client) error
}

// ClientServiceRepository persists client subscriptions.
type ClientServiceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ClientService, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.ClientService, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.ClientService, error)
	// ListEnding returns enabled active services whose end is at or before until.
	ListEnding(ctx context.Context, until time.Time) ([]*domain.ClientService, error)
	// ListStarting returns enabled next services whose begin is at or before until.
	ListStarting(ctx context.Context, until time.Time) ([]*domain.ClientService, error)
	Save(ctx context.Context, cs *domain.ClientService) error
}

// OrderRepository persists orders together with their membership.
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListInFlight returns new and processing orders.
	ListInFlight(ctx context.Context) ([]*domain.Order, error)
	ListInFlightByClient(ctx context.Context, clientID string) ([]*domain.Order, error)
	// ListBilledByClient returns every order of the client that was not canceled.
	ListBilledByClient(ctx context.Context, clientID string) ([]*domain.Order, error)
	Save(ctx context.Context, order *domain.Order) error
}

// DiscountRepository persists discount templates.
type DiscountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Discount, error)
	GetByCode(ctx context.Context, code string) (*domain.Discount, error)
	Save(ctx context.Context, d *domain.Discount) error
}

// ClientDiscountRepository persists client discount snapshots. A client
// holds at most one snapshot.
type ClientDiscountRepository interface {
	// GetByClient returns the client's snapshot or nil when none is assigned.
	GetByClient(ctx context.Context, clientID string) (*domain.ClientDiscount, error)
	Save(ctx context.Context, cd *domain.ClientDiscount) error
	DeleteByClient(ctx context.Context, clientID string) error
}

// Repositories bundles every repository of one storage backend together
// with its transactor.
type Repositories struct {
	Tx              Transactor
	Services        ServiceRepository
	PriceEntries    PriceEntryRepository
	Clients         ClientRepository
	ClientServices  ClientServiceRepository
	Orders          OrderRepository
	Discounts       DiscountRepository
	ClientDiscounts ClientDiscountRepository
	Outbox          OutboxRepository
}
