package save_discount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request describes a discount template. An empty ID creates a new one.
type Request struct {
	ID           string
	Code         string
	Title        string
	Percentage   string
	StartDate    *time.Time
	EndDate      *time.Time
	NumberOfUses int
	IsEnabled    bool
}

// Interactor handles the save discount use case. Edits never reach
// snapshots already assigned to clients.
type Interactor struct {
	repos contracts.Repositories
	clock clock.Clock
}

// NewInteractor creates a new save discount interactor.
func NewInteractor(repos contracts.Repositories, clock clock.Clock) *Interactor {
	return &Interactor{repos: repos, clock: clock}
}

// Execute validates and stores the template.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	pct, err := decimal.NewFromString(req.Percentage)
	if err != nil {
		return "", domain.ErrInvalidPercentage
	}

	var id string
	err = i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()

		d := &domain.Discount{ID: req.ID, CreatedAt: now}
		if req.ID != "" {
			loaded, err := i.repos.Discounts.GetByID(ctx, req.ID)
			if err != nil {
				return err
			}
			d = loaded
		} else {
			d.ID = uuid.New().String()
		}
		d.Code = req.Code
		d.Title = req.Title
		d.Percentage = pct
		d.StartDate = req.StartDate
		d.EndDate = req.EndDate
		d.NumberOfUses = req.NumberOfUses
		d.IsEnabled = req.IsEnabled
		d.UpdatedAt = now

		if err := d.Validate(); err != nil {
			return err
		}
		other, err := i.repos.Discounts.GetByCode(ctx, d.Code)
		switch {
		case err == nil && other.ID != d.ID:
			return fmt.Errorf("%w: discount code %q already exists", domain.ErrValidation, d.Code)
		case err != nil && !errors.Is(err, domain.ErrDiscountNotFound):
			return err
		}
		if err := i.repos.Discounts.Save(ctx, d); err != nil {
			return err
		}
		id = d.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
