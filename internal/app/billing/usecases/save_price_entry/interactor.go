package save_price_entry

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain/services"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request describes a price tier. An empty ID creates a new entry.
type Request struct {
	ID         string
	ServiceID  string
	CountryID  *string
	PeriodFrom *int
	PeriodTo   *int
	Amount     string
	Currency   string
	ForUnit    bool
	IsEnabled  bool
}

// Interactor handles the save price entry use case.
type Interactor struct {
	repos    contracts.Repositories
	resolver *services.PriceTableResolver
	clock    clock.Clock
}

// NewInteractor creates a new save price entry interactor.
func NewInteractor(repos contracts.Repositories, resolver *services.PriceTableResolver, clock clock.Clock) *Interactor {
	return &Interactor{repos: repos, resolver: resolver, clock: clock}
}

// Execute validates the entry against the rest of the service's price
// table and stores it.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return "", err
	}
	price, err := domain.NewMoneyFromString(req.Amount, currency)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	var id string
	err = i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()

		if _, err := i.repos.Services.GetByID(ctx, req.ServiceID); err != nil {
			return err
		}

		entry := &domain.PriceEntry{
			ID:        req.ID,
			CreatedAt: now,
		}
		if req.ID != "" {
			loaded, err := i.repos.PriceEntries.GetByID(ctx, req.ID)
			if err != nil {
				return err
			}
			if loaded.ServiceID != req.ServiceID {
				return fmt.Errorf("%w: price entry %s belongs to service %s", domain.ErrValidation, loaded.ID, loaded.ServiceID)
			}
			entry = loaded
		} else {
			entry.ID = uuid.New().String()
		}
		entry.ServiceID = req.ServiceID
		entry.CountryID = req.CountryID
		entry.PeriodFrom = req.PeriodFrom
		entry.PeriodTo = req.PeriodTo
		entry.Price = price
		entry.ForUnit = req.ForUnit
		entry.IsEnabled = req.IsEnabled
		entry.UpdatedAt = now

		existing, err := i.repos.PriceEntries.ListByService(ctx, req.ServiceID)
		if err != nil {
			return err
		}
		if err := i.resolver.Validate(entry, existing); err != nil {
			return err
		}
		if err := i.repos.PriceEntries.Save(ctx, entry); err != nil {
			return err
		}
		id = entry.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
