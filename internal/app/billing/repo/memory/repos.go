package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

// Services returns the service repository.
func (s *Store) Services() contracts.ServiceRepository { return &serviceRepo{s} }

// PriceEntries returns the price entry repository.
func (s *Store) PriceEntries() contracts.PriceEntryRepository { return &priceEntryRepo{s} }

// Clients returns the client repository.
func (s *Store) Clients() contracts.ClientRepository { return &clientRepo{s} }

// ClientServices returns the client service repository.
func (s *Store) ClientServices() contracts.ClientServiceRepository { return &clientServiceRepo{s} }

// Orders returns the order repository.
func (s *Store) Orders() contracts.OrderRepository { return &orderRepo{s} }

// Discounts returns the discount template repository.
func (s *Store) Discounts() contracts.DiscountRepository { return &discountRepo{s} }

// ClientDiscounts returns the client discount repository.
func (s *Store) ClientDiscounts() contracts.ClientDiscountRepository { return &clientDiscountRepo{s} }

// Outbox returns the outbox repository.
func (s *Store) Outbox() contracts.OutboxRepository { return &outboxRepo{s} }

func byCreated[T any](items []T, created func(T) time.Time, id func(T) string) {
	slices.SortFunc(items, func(a, b T) int {
		if c := created(a).Compare(created(b)); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})
}

type serviceRepo struct{ s *Store }

func (r *serviceRepo) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	var out *domain.Service
	err := r.s.run(ctx, func(t *tables) error {
		svc, ok := t.services[id]
		if !ok {
			return domain.ErrServiceNotFound
		}
		out = &svc
		return nil
	})
	return out, err
}

func (r *serviceRepo) List(ctx context.Context) ([]*domain.Service, error) {
	return r.filter(ctx, func(*domain.Service) bool { return true })
}

func (r *serviceRepo) ListByType(ctx context.Context, st domain.ServiceType) ([]*domain.Service, error) {
	return r.filter(ctx, func(svc *domain.Service) bool { return svc.Type == st })
}

func (r *serviceRepo) filter(ctx context.Context, keep func(*domain.Service) bool) ([]*domain.Service, error) {
	var out []*domain.Service
	err := r.s.run(ctx, func(t *tables) error {
		for _, svc := range t.services {
			if keep(&svc) {
				out = append(out, &svc)
			}
		}
		return nil
	})
	byCreated(out, func(s *domain.Service) time.Time { return s.CreatedAt }, func(s *domain.Service) string { return s.ID })
	return out, err
}

func (r *serviceRepo) Save(ctx context.Context, svc *domain.Service) error {
	return r.s.run(ctx, func(t *tables) error {
		t.services[svc.ID] = *svc
		return nil
	})
}

type priceEntryRepo struct{ s *Store }

func (r *priceEntryRepo) GetByID(ctx context.Context, id string) (*domain.PriceEntry, error) {
	var out *domain.PriceEntry
	err := r.s.run(ctx, func(t *tables) error {
		e, ok := t.entries[id]
		if !ok {
			return domain.ErrPriceEntryNotFound
		}
		e = copyPriceEntry(e)
		out = &e
		return nil
	})
	return out, err
}

func (r *priceEntryRepo) ListByService(ctx context.Context, serviceID string) ([]*domain.PriceEntry, error) {
	var out []*domain.PriceEntry
	err := r.s.run(ctx, func(t *tables) error {
		for _, e := range t.entries {
			if e.ServiceID == serviceID {
				e = copyPriceEntry(e)
				out = append(out, &e)
			}
		}
		return nil
	})
	byCreated(out, func(e *domain.PriceEntry) time.Time { return e.CreatedAt }, func(e *domain.PriceEntry) string { return e.ID })
	return out, err
}

func (r *priceEntryRepo) Save(ctx context.Context, e *domain.PriceEntry) error {
	return r.s.run(ctx, func(t *tables) error {
		t.entries[e.ID] = copyPriceEntry(*e)
		return nil
	})
}

type clientRepo struct{ s *Store }

func (r *clientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	var out *domain.Client
	err := r.s.run(ctx, func(t *tables) error {
		c, ok := t.clients[id]
		if !ok {
			return domain.ErrClientNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *clientRepo) Save(ctx context.Context, c *domain.Client) error {
	return r.s.run(ctx, func(t *tables) error {
		t.clients[c.ID] = *c
		return nil
	})
}

type clientServiceRepo struct{ s *Store }

func (r *clientServiceRepo) GetByID(ctx context.Context, id string) (*domain.ClientService, error) {
	var out *domain.ClientService
	err := r.s.run(ctx, func(t *tables) error {
		st, ok := t.clientServices[id]
		if !ok {
			return domain.ErrClientServiceNotFound
		}
		out = domain.ReconstructClientService(st)
		return nil
	})
	return out, err
}

func (r *clientServiceRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.ClientService, error) {
	return r.filter(ctx, func(st domain.ClientServiceState) bool { return slices.Contains(ids, st.ID) })
}

func (r *clientServiceRepo) ListByClient(ctx context.Context, clientID string) ([]*domain.ClientService, error) {
	return r.filter(ctx, func(st domain.ClientServiceState) bool { return st.ClientID == clientID })
}

func (r *clientServiceRepo) ListEnding(ctx context.Context, until time.Time) ([]*domain.ClientService, error) {
	return r.filter(ctx, func(st domain.ClientServiceState) bool {
		return st.IsEnabled && st.Status == domain.ClientServiceActive && !st.End.After(until)
	})
}

func (r *clientServiceRepo) ListStarting(ctx context.Context, until time.Time) ([]*domain.ClientService, error) {
	return r.filter(ctx, func(st domain.ClientServiceState) bool {
		return st.IsEnabled && st.Status == domain.ClientServiceNext && !st.Begin.After(until)
	})
}

func (r *clientServiceRepo) filter(ctx context.Context, keep func(domain.ClientServiceState) bool) ([]*domain.ClientService, error) {
	var states []domain.ClientServiceState
	err := r.s.run(ctx, func(t *tables) error {
		for _, st := range t.clientServices {
			if keep(st) {
				states = append(states, st)
			}
		}
		return nil
	})
	byCreated(states, func(s domain.ClientServiceState) time.Time { return s.CreatedAt }, func(s domain.ClientServiceState) string { return s.ID })

	out := make([]*domain.ClientService, 0, len(states))
	for _, st := range states {
		out = append(out, domain.ReconstructClientService(st))
	}
	return out, err
}

func (r *clientServiceRepo) Save(ctx context.Context, cs *domain.ClientService) error {
	if !cs.Changes().HasChanges() {
		return nil
	}
	return r.s.run(ctx, func(t *tables) error {
		t.clientServices[cs.ID()] = cs.State()
		return nil
	})
}

type orderRepo struct{ s *Store }

func (r *orderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var out *domain.Order
	err := r.s.run(ctx, func(t *tables) error {
		st, ok := t.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		out = domain.ReconstructOrder(st)
		return nil
	})
	return out, err
}

func (r *orderRepo) ListInFlight(ctx context.Context) ([]*domain.Order, error) {
	return r.filter(ctx, func(st domain.OrderState) bool { return st.Status.IsInFlight() })
}

func (r *orderRepo) ListInFlightByClient(ctx context.Context, clientID string) ([]*domain.Order, error) {
	return r.filter(ctx, func(st domain.OrderState) bool {
		return st.ClientID == clientID && st.Status.IsInFlight()
	})
}

func (r *orderRepo) ListBilledByClient(ctx context.Context, clientID string) ([]*domain.Order, error) {
	return r.filter(ctx, func(st domain.OrderState) bool {
		return st.ClientID == clientID && st.Status != domain.OrderCanceled
	})
}

func (r *orderRepo) filter(ctx context.Context, keep func(domain.OrderState) bool) ([]*domain.Order, error) {
	var states []domain.OrderState
	err := r.s.run(ctx, func(t *tables) error {
		for _, st := range t.orders {
			if keep(st) {
				states = append(states, st)
			}
		}
		return nil
	})
	byCreated(states, func(s domain.OrderState) time.Time { return s.CreatedAt }, func(s domain.OrderState) string { return s.ID })

	out := make([]*domain.Order, 0, len(states))
	for _, st := range states {
		out = append(out, domain.ReconstructOrder(st))
	}
	return out, err
}

func (r *orderRepo) Save(ctx context.Context, o *domain.Order) error {
	if !o.Changes().HasChanges() {
		return nil
	}
	return r.s.run(ctx, func(t *tables) error {
		t.orders[o.ID()] = o.State()
		return nil
	})
}

type discountRepo struct{ s *Store }

func (r *discountRepo) GetByID(ctx context.Context, id string) (*domain.Discount, error) {
	var out *domain.Discount
	err := r.s.run(ctx, func(t *tables) error {
		d, ok := t.discounts[id]
		if !ok {
			return domain.ErrDiscountNotFound
		}
		d = copyDiscount(d)
		out = &d
		return nil
	})
	return out, err
}

func (r *discountRepo) GetByCode(ctx context.Context, code string) (*domain.Discount, error) {
	var out *domain.Discount
	err := r.s.run(ctx, func(t *tables) error {
		for _, d := range t.discounts {
			if d.Code == code {
				d = copyDiscount(d)
				out = &d
				return nil
			}
		}
		return domain.ErrDiscountNotFound
	})
	return out, err
}

func (r *discountRepo) Save(ctx context.Context, d *domain.Discount) error {
	return r.s.run(ctx, func(t *tables) error {
		for _, other := range t.discounts {
			if other.Code == d.Code && other.ID != d.ID {
				return fmt.Errorf("discount code %q already exists", d.Code)
			}
		}
		t.discounts[d.ID] = copyDiscount(*d)
		return nil
	})
}

type clientDiscountRepo struct{ s *Store }

func (r *clientDiscountRepo) GetByClient(ctx context.Context, clientID string) (*domain.ClientDiscount, error) {
	var out *domain.ClientDiscount
	err := r.s.run(ctx, func(t *tables) error {
		for _, st := range t.clientDiscounts {
			if st.ClientID == clientID {
				out = domain.ReconstructClientDiscount(st)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *clientDiscountRepo) Save(ctx context.Context, cd *domain.ClientDiscount) error {
	if !cd.Changes().HasChanges() {
		return nil
	}
	return r.s.run(ctx, func(t *tables) error {
		st := cd.State()
		for _, other := range t.clientDiscounts {
			if other.ClientID == st.ClientID && other.ID != st.ID {
				return fmt.Errorf("client %s already has a discount", st.ClientID)
			}
		}
		t.clientDiscounts[st.ID] = st
		return nil
	})
}

func (r *clientDiscountRepo) DeleteByClient(ctx context.Context, clientID string) error {
	return r.s.run(ctx, func(t *tables) error {
		for id, st := range t.clientDiscounts {
			if st.ClientID == clientID {
				delete(t.clientDiscounts, id)
			}
		}
		return nil
	})
}

type outboxRepo struct{ s *Store }

func (r *outboxRepo) Append(ctx context.Context, events ...*contracts.OutboxEvent) error {
	return r.s.run(ctx, func(t *tables) error {
		for _, e := range events {
			t.outbox[e.EventID] = copyOutboxEvent(*e)
		}
		return nil
	})
}

func (r *outboxRepo) ListPending(ctx context.Context, limit int) ([]*contracts.OutboxEvent, error) {
	var out []*contracts.OutboxEvent
	err := r.s.run(ctx, func(t *tables) error {
		for _, e := range t.outbox {
			if e.Status == contracts.OutboxPending {
				e = copyOutboxEvent(e)
				out = append(out, &e)
			}
		}
		return nil
	})
	byCreated(out, func(e *contracts.OutboxEvent) time.Time { return e.CreatedAt }, func(e *contracts.OutboxEvent) string { return e.EventID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *outboxRepo) MarkCompleted(ctx context.Context, eventIDs []string, at time.Time) error {
	return r.s.run(ctx, func(t *tables) error {
		for _, id := range eventIDs {
			e, ok := t.outbox[id]
			if !ok {
				continue
			}
			e.Status = contracts.OutboxCompleted
			e.ProcessedAt = &at
			t.outbox[id] = e
		}
		return nil
	})
}

func (r *outboxRepo) MarkFailed(ctx context.Context, eventID string, reason string) error {
	return r.s.run(ctx, func(t *tables) error {
		e, ok := t.outbox[eventID]
		if !ok {
			return fmt.Errorf("outbox event %s not found", eventID)
		}
		e.RetryCount++
		e.ErrorMessage = reason
		if e.RetryCount >= contracts.MaxOutboxRetries {
			e.Status = contracts.OutboxFailed
		}
		t.outbox[eventID] = e
		return nil
	})
}

func (r *outboxRepo) PurgeCompleted(ctx context.Context, cutoff time.Time) (int, error) {
	var purged int
	err := r.s.run(ctx, func(t *tables) error {
		for id, e := range t.outbox {
			if e.Status == contracts.OutboxCompleted && e.ProcessedAt != nil && e.ProcessedAt.Before(cutoff) {
				delete(t.outbox, id)
				purged++
			}
		}
		return nil
	})
	return purged, err
}

// Repositories wires every repository of the store.
func (s *Store) Repositories() contracts.Repositories {
	return contracts.Repositories{
		Tx:              s,
		Services:        s.Services(),
		PriceEntries:    s.PriceEntries(),
		Clients:         s.Clients(),
		ClientServices:  s.ClientServices(),
		Orders:          s.Orders(),
		Discounts:       s.Discounts(),
		ClientDiscounts: s.ClientDiscounts(),
		Outbox:          s.Outbox(),
	}
}
