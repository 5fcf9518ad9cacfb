package assign_discount

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request names the client and the discount template to snapshot.
type Request struct {
	ClientID string
	Code     string
}

// Interactor handles the assign discount use case.
type Interactor struct {
	repos contracts.Repositories
	clock clock.Clock
}

// NewInteractor creates a new assign discount interactor.
func NewInteractor(repos contracts.Repositories, clock clock.Clock) *Interactor {
	return &Interactor{repos: repos, clock: clock}
}

// Execute replaces the client's snapshot with a fresh copy of the template.
// Orders already carrying the old snapshot keep their price.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	if req.ClientID == "" || req.Code == "" {
		return "", fmt.Errorf("%w: client ID and discount code are required", domain.ErrValidation)
	}

	var id string
	err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()

		client, err := i.repos.Clients.GetByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		if client.IsArchived {
			return domain.ErrClientArchived
		}
		template, err := i.repos.Discounts.GetByCode(ctx, req.Code)
		if err != nil {
			return err
		}
		if !template.IsEnabled {
			return fmt.Errorf("%w: discount %s is disabled", domain.ErrValidation, template.Code)
		}

		cd, err := domain.NewClientSnapshot(uuid.New().String(), template, client.ID, now)
		if err != nil {
			return err
		}
		if err := i.repos.ClientDiscounts.DeleteByClient(ctx, client.ID); err != nil {
			return err
		}
		if err := i.repos.ClientDiscounts.Save(ctx, cd); err != nil {
			return err
		}
		id = cd.ID()
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
