package create_order

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request lists the client services to bill ad hoc.
type Request struct {
	ClientID         string
	ClientServiceIDs []string
}

// Response describes the created order.
type Response struct {
	OrderID string
	Status  domain.OrderStatus
	Price   domain.Money
}

// Interactor handles the create order use case.
type Interactor struct {
	repos  contracts.Repositories
	pricer *shared.Pricer
	clock  clock.Clock
}

// NewInteractor creates a new create order interactor.
func NewInteractor(repos contracts.Repositories, pricer *shared.Pricer, clock clock.Clock) *Interactor {
	return &Interactor{repos: repos, pricer: pricer, clock: clock}
}

// Execute creates an order over enabled services of the client that are
// not yet part of an unpaid order.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.ClientID == "" {
		return nil, fmt.Errorf("%w: client ID is required", domain.ErrValidation)
	}
	if len(req.ClientServiceIDs) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	var resp *Response
	err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()

		if _, err := i.repos.Clients.GetByID(ctx, req.ClientID); err != nil {
			return err
		}
		members, err := i.repos.ClientServices.ListByIDs(ctx, req.ClientServiceIDs)
		if err != nil {
			return err
		}
		found := make(map[string]bool, len(members))
		for _, cs := range members {
			found[cs.ID()] = true
			if cs.ClientID() != req.ClientID {
				return fmt.Errorf("%w: %s", domain.ErrForeignService, cs.ID())
			}
			if !cs.IsEnabled() {
				return fmt.Errorf("%w: %s", domain.ErrClientServiceDisabled, cs.ID())
			}
		}
		for _, id := range req.ClientServiceIDs {
			if !found[id] {
				return fmt.Errorf("%w: %s", domain.ErrClientServiceNotFound, id)
			}
		}

		inFlight, err := i.repos.Orders.ListInFlightByClient(ctx, req.ClientID)
		if err != nil {
			return err
		}
		for _, o := range inFlight {
			for _, id := range req.ClientServiceIDs {
				if o.Contains(id) {
					return fmt.Errorf("%w: %s in order %s", domain.ErrOrderAlreadyExists, id, o.ID())
				}
			}
		}
		cd, err := i.repos.ClientDiscounts.GetByClient(ctx, req.ClientID)
		if err != nil {
			return err
		}

		if err := i.pricer.PricePending(ctx, members, now); err != nil {
			return err
		}
		order, err := domain.NewOrder(uuid.New().String(), req.ClientID, req.ClientServiceIDs, i.pricer.Aggregator().BaseCurrency(), now)
		if err != nil {
			return err
		}

		uow := shared.NewUnitOfWork(i.repos)
		uow.TrackClientServices(members...)
		if _, err := i.pricer.Recompute(uow, order, members, cd, now); err != nil {
			return err
		}
		order.RecordNotification(domain.TemplateOrderCreated, now)
		if err := uow.Commit(ctx, now); err != nil {
			return err
		}
		resp = &Response{OrderID: order.ID(), Status: order.Status(), Price: order.Price()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
