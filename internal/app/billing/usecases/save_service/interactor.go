package save_service

import (
	"context"

	"github.com/google/uuid"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request describes a catalog service. An empty ID creates a new one.
type Request struct {
	ID         string
	Title      string
	Type       domain.ServiceType
	Period     int
	PeriodUnit domain.PeriodUnit
	IsDefault  bool
	IsEnabled  bool
	IsTrial    bool
}

// Interactor handles the save service use case.
type Interactor struct {
	repos contracts.Repositories
	clock clock.Clock
}

// NewInteractor creates a new save service interactor.
func NewInteractor(repos contracts.Repositories, clock clock.Clock) *Interactor {
	return &Interactor{repos: repos, clock: clock}
}

// Execute validates and stores the service, keeping at most one enabled
// default per type.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	var id string
	err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()

		svc := &domain.Service{ID: req.ID, CreatedAt: now}
		if req.ID != "" {
			loaded, err := i.repos.Services.GetByID(ctx, req.ID)
			if err != nil {
				return err
			}
			svc = loaded
		} else {
			svc.ID = uuid.New().String()
		}
		svc.Title = req.Title
		svc.Type = req.Type
		svc.Period = req.Period
		svc.PeriodUnit = req.PeriodUnit
		svc.IsDefault = req.IsDefault
		svc.IsEnabled = req.IsEnabled
		svc.IsTrial = req.IsTrial
		svc.UpdatedAt = now

		if err := svc.Validate(); err != nil {
			return err
		}
		existing, err := i.repos.Services.ListByType(ctx, svc.Type)
		if err != nil {
			return err
		}
		if err := domain.CheckDefaultUnique(svc, existing); err != nil {
			return err
		}
		if err := i.repos.Services.Save(ctx, svc); err != nil {
			return err
		}
		id = svc.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
