package recompute_order

import (
	"context"
	"fmt"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request names the order to recompute and optional membership changes.
type Request struct {
	OrderID string
	Add     []string
	Remove  []string
}

// Response carries the order after recomputation.
type Response struct {
	Status    domain.OrderStatus
	Price     domain.Money
	Frozen    bool
	Corrupted bool
}

// Interactor handles the recompute order use case.
type Interactor struct {
	repos  contracts.Repositories
	pricer *shared.Pricer
	clock  clock.Clock
}

// NewInteractor creates a new recompute order interactor.
func NewInteractor(repos contracts.Repositories, pricer *shared.Pricer, clock clock.Clock) *Interactor {
	return &Interactor{repos: repos, pricer: pricer, clock: clock}
}

// Execute applies membership changes and recomputes the order total.
// Terminal orders are returned unchanged.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: order ID is required", domain.ErrValidation)
	}

	var resp *Response
	err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()

		order, err := i.repos.Orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if order.IsTerminal() {
			resp = &Response{
				Status:    order.Status(),
				Price:     order.Price(),
				Frozen:    true,
				Corrupted: order.Status() == domain.OrderCorrupted,
			}
			return nil
		}

		for _, id := range req.Add {
			if err := order.AddClientService(id, now); err != nil {
				return err
			}
		}
		for _, id := range req.Remove {
			if err := order.RemoveClientService(id, now); err != nil {
				return err
			}
		}
		if len(order.ClientServiceIDs()) == 0 {
			return domain.ErrEmptyOrder
		}

		members, err := i.pricer.LoadMembers(ctx, order, nil)
		if err != nil {
			return err
		}
		if len(members) != len(order.ClientServiceIDs()) {
			return fmt.Errorf("%w: order %s references a missing service", domain.ErrClientServiceNotFound, order.ID())
		}
		cd, err := i.repos.ClientDiscounts.GetByClient(ctx, order.ClientID())
		if err != nil {
			return err
		}
		if err := i.pricer.PricePending(ctx, members, now); err != nil {
			return err
		}

		uow := shared.NewUnitOfWork(i.repos)
		uow.TrackClientServices(members...)
		rec, err := i.pricer.Recompute(uow, order, members, cd, now)
		if err != nil {
			return err
		}
		if err := uow.Commit(ctx, now); err != nil {
			return err
		}
		resp = &Response{Status: order.Status(), Price: rec.Price, Corrupted: rec.Corrupted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
