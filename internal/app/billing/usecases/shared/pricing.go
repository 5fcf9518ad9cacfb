package shared

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain/services"
)

// Pricer prices client services and keeps their orders in step.
type Pricer struct {
	repos      contracts.Repositories
	calculator *services.PriceCalculator
	aggregator *services.OrderAggregator
}

// NewPricer creates a new Pricer.
func NewPricer(repos contracts.Repositories, calculator *services.PriceCalculator, aggregator *services.OrderAggregator) *Pricer {
	return &Pricer{repos: repos, calculator: calculator, aggregator: aggregator}
}

// Aggregator returns the order aggregator.
func (p *Pricer) Aggregator() *services.OrderAggregator {
	return p.aggregator
}

// PriceClientService calculates the price of cs against the current price
// table of its service.
func (p *Pricer) PriceClientService(ctx context.Context, cs *domain.ClientService, now time.Time) error {
	svc, err := p.repos.Services.GetByID(ctx, cs.ServiceID())
	if err != nil {
		return fmt.Errorf("price client service %s: %w", cs.ID(), err)
	}
	entries, err := p.repos.PriceEntries.ListByService(ctx, svc.ID)
	if err != nil {
		return fmt.Errorf("price client service %s: %w", cs.ID(), err)
	}
	price, err := p.calculator.Calc(services.CalcRequest{
		Service:       svc,
		Entries:       entries,
		ClientService: cs,
	})
	if err != nil {
		return fmt.Errorf("price client service %s: %w", cs.ID(), err)
	}
	cs.SetPrice(price, now)
	return nil
}

// PricePending prices every enabled service whose price is pending.
func (p *Pricer) PricePending(ctx context.Context, items []*domain.ClientService, now time.Time) error {
	for _, cs := range items {
		if !cs.IsEnabled() || !cs.NeedsPricing() {
			continue
		}
		if err := p.PriceClientService(ctx, cs, now); err != nil {
			return err
		}
	}
	return nil
}

// Recompute aggregates order from members and tracks the order and the
// consumed discount in uow.
func (p *Pricer) Recompute(uow *UnitOfWork, order *domain.Order, members []*domain.ClientService, cd *domain.ClientDiscount, now time.Time) (services.Recomputation, error) {
	res, err := p.aggregator.Recompute(order, members, cd, now)
	if err != nil {
		return services.Recomputation{}, fmt.Errorf("recompute order %s: %w", order.ID(), err)
	}
	uow.TrackOrder(order)
	if res.DiscountUsed {
		uow.TrackClientDiscount(cd)
		uow.Record(&domain.DiscountUsedEvent{
			ClientDiscountID: cd.ID(),
			ClientID:         cd.ClientID(),
			OrderID:          order.ID(),
			UsageCount:       cd.UsageCount(),
		})
	}
	return res, nil
}

// RecomputeAffected recomputes the client's in-flight orders that contain
// any of changed. Loaded members are replaced by their changed in-memory
// copies because buffered writes are not readable in the same transaction.
func (p *Pricer) RecomputeAffected(ctx context.Context, uow *UnitOfWork, clientID string, changed []*domain.ClientService, now time.Time) error {
	if len(changed) == 0 {
		return nil
	}
	orders, err := p.repos.Orders.ListInFlightByClient(ctx, clientID)
	if err != nil {
		return err
	}

	var affected []*domain.Order
	for _, o := range orders {
		if slices.ContainsFunc(changed, func(cs *domain.ClientService) bool { return o.Contains(cs.ID()) }) {
			affected = append(affected, o)
		}
	}
	if len(affected) == 0 {
		return nil
	}

	cd, err := p.repos.ClientDiscounts.GetByClient(ctx, clientID)
	if err != nil {
		return err
	}
	for _, o := range affected {
		members, err := p.LoadMembers(ctx, o, changed)
		if err != nil {
			return err
		}
		if err := p.PricePending(ctx, members, now); err != nil {
			return err
		}
		uow.TrackClientServices(members...)
		if _, err := p.Recompute(uow, o, members, cd, now); err != nil {
			return err
		}
	}
	return nil
}

// LoadMembers loads the order's client services, preferring the given
// in-memory copies over stored rows.
func (p *Pricer) LoadMembers(ctx context.Context, order *domain.Order, overrides []*domain.ClientService) ([]*domain.ClientService, error) {
	loaded, err := p.repos.ClientServices.ListByIDs(ctx, order.ClientServiceIDs())
	if err != nil {
		return nil, fmt.Errorf("load members of order %s: %w", order.ID(), err)
	}
	for i, cs := range loaded {
		if idx := slices.IndexFunc(overrides, func(o *domain.ClientService) bool { return o.ID() == cs.ID() }); idx >= 0 {
			loaded[i] = overrides[idx]
		}
	}
	return loaded, nil
}
