package update_client_service

import (
	"context"
	"fmt"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request contains the fields of a client service that may change.
type Request struct {
	ClientServiceID string
	Quantity        *int
	// Disable archives the service.
	Disable bool
}

// Response carries the service state after the update.
type Response struct {
	Quantity  int
	IsEnabled bool
	Price     *domain.Money
}

// Interactor handles the update client service use case.
type Interactor struct {
	repos  contracts.Repositories
	pricer *shared.Pricer
	clock  clock.Clock
}

// NewInteractor creates a new update client service interactor.
func NewInteractor(repos contracts.Repositories, pricer *shared.Pricer, clock clock.Clock) *Interactor {
	return &Interactor{repos: repos, pricer: pricer, clock: clock}
}

// Execute applies the change, reprices the service and recomputes the
// in-flight orders that contain it.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.ClientServiceID == "" {
		return nil, fmt.Errorf("%w: client service ID is required", domain.ErrValidation)
	}

	var resp *Response
	err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()

		cs, err := i.repos.ClientServices.GetByID(ctx, req.ClientServiceID)
		if err != nil {
			return err
		}
		client, err := i.repos.Clients.GetByID(ctx, cs.ClientID())
		if err != nil {
			return err
		}
		siblings, err := i.repos.ClientServices.ListByClient(ctx, cs.ClientID())
		if err != nil {
			return err
		}

		if req.Quantity != nil {
			if err := cs.SetQuantity(*req.Quantity, now); err != nil {
				return err
			}
		}
		if req.Disable {
			cs.Disable(now)
		}
		if !cs.Changes().HasChanges() {
			resp = response(cs)
			return nil
		}
		if err := i.pricer.PricePending(ctx, []*domain.ClientService{cs}, now); err != nil {
			return err
		}

		uow := shared.NewUnitOfWork(i.repos)
		uow.TrackClientServices(cs)
		for idx, s := range siblings {
			if s.ID() == cs.ID() {
				siblings[idx] = cs
			}
		}
		if client.RecomputeRoomLimit(siblings) {
			uow.TrackClient(client)
		}
		if err := i.pricer.RecomputeAffected(ctx, uow, cs.ClientID(), []*domain.ClientService{cs}, now); err != nil {
			return err
		}
		if err := uow.Commit(ctx, now); err != nil {
			return err
		}
		resp = response(cs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func response(cs *domain.ClientService) *Response {
	r := &Response{Quantity: cs.Quantity(), IsEnabled: cs.IsEnabled()}
	if p, ok := cs.Price(); ok {
		r.Price = &p
	}
	return r
}
