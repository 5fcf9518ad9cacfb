// Package shared holds the persistence and pricing steps that several
// billing interactors run inside their transactions.
package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

// UnitOfWork collects the aggregates touched by one transaction and writes
// them together with their domain events. Aggregates are saved in tracking
// order; tracking the same aggregate twice keeps the first position.
type UnitOfWork struct {
	repos contracts.Repositories

	clients         []*domain.Client
	clientServices  []*domain.ClientService
	orders          []*domain.Order
	clientDiscounts []*domain.ClientDiscount
	events          []domain.DomainEvent
	seen            map[string]bool
}

// NewUnitOfWork creates an empty unit of work.
func NewUnitOfWork(repos contracts.Repositories) *UnitOfWork {
	return &UnitOfWork{repos: repos, seen: make(map[string]bool)}
}

func (u *UnitOfWork) first(kind, id string) bool {
	key := kind + "/" + id
	if u.seen[key] {
		return false
	}
	u.seen[key] = true
	return true
}

// TrackClient schedules a client save.
func (u *UnitOfWork) TrackClient(c *domain.Client) {
	if u.first("client", c.ID) {
		u.clients = append(u.clients, c)
	}
}

// TrackClientServices schedules client service saves.
func (u *UnitOfWork) TrackClientServices(items ...*domain.ClientService) {
	for _, cs := range items {
		if u.first("client_service", cs.ID()) {
			u.clientServices = append(u.clientServices, cs)
		}
	}
}

// TrackOrder schedules an order save.
func (u *UnitOfWork) TrackOrder(o *domain.Order) {
	if u.first("order", o.ID()) {
		u.orders = append(u.orders, o)
	}
}

// TrackClientDiscount schedules a discount snapshot save.
func (u *UnitOfWork) TrackClientDiscount(cd *domain.ClientDiscount) {
	if cd != nil && u.first("client_discount", cd.ID()) {
		u.clientDiscounts = append(u.clientDiscounts, cd)
	}
}

// Record adds events that do not belong to a tracked aggregate.
func (u *UnitOfWork) Record(events ...domain.DomainEvent) {
	u.events = append(u.events, events...)
}

// Commit saves every tracked aggregate and appends their events to the
// outbox. It must run inside the transaction that loaded the aggregates.
func (u *UnitOfWork) Commit(ctx context.Context, now time.Time) error {
	events := make([]domain.DomainEvent, 0, len(u.events))

	for _, c := range u.clients {
		if err := u.repos.Clients.Save(ctx, c); err != nil {
			return fmt.Errorf("save client %s: %w", c.ID, err)
		}
	}
	for _, cs := range u.clientServices {
		if err := u.repos.ClientServices.Save(ctx, cs); err != nil {
			return fmt.Errorf("save client service %s: %w", cs.ID(), err)
		}
		events = append(events, cs.DomainEvents()...)
		cs.ClearEvents()
	}
	for _, o := range u.orders {
		if err := u.repos.Orders.Save(ctx, o); err != nil {
			return fmt.Errorf("save order %s: %w", o.ID(), err)
		}
		events = append(events, o.DomainEvents()...)
		o.ClearEvents()
	}
	for _, cd := range u.clientDiscounts {
		if err := u.repos.ClientDiscounts.Save(ctx, cd); err != nil {
			return fmt.Errorf("save client discount %s: %w", cd.ID(), err)
		}
	}
	events = append(events, u.events...)
	u.events = nil

	if len(events) == 0 {
		return nil
	}
	outbox, err := contracts.EnrichEvents(events, now)
	if err != nil {
		return err
	}
	return u.repos.Outbox.Append(ctx, outbox...)
}
