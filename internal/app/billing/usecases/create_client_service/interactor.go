package create_client_service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request contains the data needed to subscribe a client to a service.
type Request struct {
	ClientID string
	// ServiceID is the catalog service. It is ignored when Trial is set.
	ServiceID string
	// Trial subscribes to the enabled trial service of ServiceType.
	Trial       bool
	ServiceType domain.ServiceType
	Quantity    int
	// CountryID defaults to the client's country.
	CountryID string
	// Begin defaults to now; a future begin schedules a "next" service.
	Begin *time.Time
}

// Response describes the created subscription.
type Response struct {
	ClientServiceID string
	Status          domain.ClientServiceStatus
	Price           *domain.Money
}

// Interactor handles the create client service use case.
type Interactor struct {
	repos  contracts.Repositories
	pricer *shared.Pricer
	clock  clock.Clock
}

// NewInteractor creates a new create client service interactor.
func NewInteractor(repos contracts.Repositories, pricer *shared.Pricer, clock clock.Clock) *Interactor {
	return &Interactor{repos: repos, pricer: pricer, clock: clock}
}

// Execute creates the subscription. An active subscription disables the
// client's current service of the same type; a scheduled one replaces the
// previously scheduled service of that type.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.ClientID == "" {
		return nil, fmt.Errorf("%w: client ID is required", domain.ErrValidation)
	}
	if !req.Trial && req.ServiceID == "" {
		return nil, fmt.Errorf("%w: service ID is required", domain.ErrValidation)
	}

	var resp *Response
	err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()

		client, err := i.repos.Clients.GetByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		if client.IsArchived {
			return domain.ErrClientArchived
		}
		svc, err := i.resolveService(ctx, req)
		if err != nil {
			return err
		}
		existing, err := i.repos.ClientServices.ListByClient(ctx, client.ID)
		if err != nil {
			return err
		}

		country := req.CountryID
		if country == "" {
			country = client.CountryID
		}
		begin := now
		if req.Begin != nil {
			begin = *req.Begin
		}

		cs, err := domain.NewClientService(uuid.New().String(), client.ID, svc, req.Quantity, country, begin, now)
		if err != nil {
			return err
		}
		if err := i.pricer.PriceClientService(ctx, cs, now); err != nil {
			return err
		}

		var replaced []*domain.ClientService
		for _, prev := range existing {
			if prev.ServiceType() != cs.ServiceType() {
				continue
			}
			if (cs.IsCurrent() && prev.IsCurrent()) || (cs.IsPending() && prev.IsPending()) {
				prev.Disable(now)
				replaced = append(replaced, prev)
			}
		}

		uow := shared.NewUnitOfWork(i.repos)
		uow.TrackClientServices(cs)
		uow.TrackClientServices(replaced...)
		if client.RecomputeRoomLimit(append(existing, cs)) {
			uow.TrackClient(client)
		}
		if err := i.pricer.RecomputeAffected(ctx, uow, client.ID, replaced, now); err != nil {
			return err
		}
		if err := uow.Commit(ctx, now); err != nil {
			return err
		}

		resp = &Response{ClientServiceID: cs.ID(), Status: cs.Status()}
		if p, ok := cs.Price(); ok {
			resp.Price = &p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (i *Interactor) resolveService(ctx context.Context, req *Request) (*domain.Service, error) {
	if !req.Trial {
		return i.repos.Services.GetByID(ctx, req.ServiceID)
	}
	if !req.ServiceType.Valid() {
		return nil, fmt.Errorf("%w: %w %q", domain.ErrValidation, domain.ErrUnknownServiceType, req.ServiceType)
	}
	catalog, err := i.repos.Services.ListByType(ctx, req.ServiceType)
	if err != nil {
		return nil, err
	}
	return domain.PickTrial(req.ServiceType, catalog)
}
