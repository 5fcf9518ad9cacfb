package create_client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain/services"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request contains the data needed to register a client.
type Request struct {
	Name      string
	Email     string
	Language  string
	CountryID string
	// DiscountCode optionally attaches a discount snapshot.
	DiscountCode string
}

// Response identifies the created client.
type Response struct {
	ClientID         string
	ClientDiscountID string
}

// Interactor handles the create client use case.
type Interactor struct {
	repos     contracts.Repositories
	discounts *services.DiscountEngine
	clock     clock.Clock
	logger    *zap.Logger
}

// NewInteractor creates a new create client interactor.
func NewInteractor(repos contracts.Repositories, discounts *services.DiscountEngine, clock clock.Clock, logger *zap.Logger) *Interactor {
	return &Interactor{repos: repos, discounts: discounts, clock: clock, logger: logger}
}

// Execute registers the client. Discount problems never fail the
// registration; the client is created without a discount instead.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Response, error) {
	now := i.clock.Now()
	client := &domain.Client{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Language:  req.Language,
		CountryID: req.CountryID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := client.Validate(); err != nil {
		return nil, err
	}

	resp := &Response{ClientID: client.ID}
	err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		resp.ClientDiscountID = ""
		uow := shared.NewUnitOfWork(i.repos)
		uow.TrackClient(client)

		if cd := i.snapshot(ctx, req.DiscountCode, client.ID); cd != nil {
			uow.TrackClientDiscount(cd)
			resp.ClientDiscountID = cd.ID()
		}
		return uow.Commit(ctx, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return resp, nil
}

func (i *Interactor) snapshot(ctx context.Context, code, clientID string) *domain.ClientDiscount {
	if code == "" {
		return nil
	}
	template, err := i.repos.Discounts.GetByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, domain.ErrDiscountNotFound) {
			i.logger.Error("failed to load discount", zap.String("code", code), zap.Error(err))
		} else {
			i.logger.Warn("unknown discount code", zap.String("code", code))
		}
		return nil
	}
	if !template.IsEnabled {
		i.logger.Warn("discount is disabled", zap.String("code", code))
		return nil
	}
	return i.discounts.Snapshot(uuid.New().String(), template, clientID, i.clock.Now())
}
