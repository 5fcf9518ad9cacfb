package activate_pending

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Result summarizes one activation pass.
type Result struct {
	Activated int
	Disabled  int
	Failed    int
}

// Interactor turns scheduled "next" services into active ones once their
// begin has passed.
type Interactor struct {
	repos  contracts.Repositories
	pricer *shared.Pricer
	clock  clock.Clock
	logger *zap.Logger
}

// NewInteractor creates a new activate pending interactor.
func NewInteractor(repos contracts.Repositories, pricer *shared.Pricer, clock clock.Clock, logger *zap.Logger) *Interactor {
	return &Interactor{repos: repos, pricer: pricer, clock: clock, logger: logger}
}

// Execute activates due pending services client by client.
func (i *Interactor) Execute(ctx context.Context) (*Result, error) {
	now := i.clock.Now()

	starting, err := i.repos.ClientServices.ListStarting(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending services: %w", err)
	}

	var clientIDs []string
	seen := make(map[string]bool)
	for _, cs := range starting {
		if !seen[cs.ClientID()] {
			seen[cs.ClientID()] = true
			clientIDs = append(clientIDs, cs.ClientID())
		}
	}

	res := &Result{}
	for _, clientID := range clientIDs {
		var activated, disabled int
		err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			activated, disabled, err = i.activateClient(ctx, clientID, now)
			return err
		})
		if err != nil {
			res.Failed++
			i.logger.Error("activation failed for client",
				zap.String("client_id", clientID),
				zap.Error(err),
			)
			continue
		}
		res.Activated += activated
		res.Disabled += disabled
	}

	if res.Activated > 0 || res.Failed > 0 {
		i.logger.Info("pending services activated",
			zap.Int("activated", res.Activated),
			zap.Int("disabled", res.Disabled),
			zap.Int("failed", res.Failed),
		)
	}
	return res, nil
}

func (i *Interactor) activateClient(ctx context.Context, clientID string, now time.Time) (int, int, error) {
	client, err := i.repos.Clients.GetByID(ctx, clientID)
	if err != nil {
		return 0, 0, err
	}
	services, err := i.repos.ClientServices.ListByClient(ctx, clientID)
	if err != nil {
		return 0, 0, err
	}

	var activated, disabled []*domain.ClientService
	for _, next := range services {
		if !next.IsPending() || next.Begin().After(now) {
			continue
		}
		for _, prev := range services {
			if prev.ID() != next.ID() && prev.IsCurrent() && prev.ServiceType() == next.ServiceType() {
				prev.Disable(now)
				disabled = append(disabled, prev)
			}
		}
		if err := next.Activate(now); err != nil {
			return 0, 0, err
		}
		activated = append(activated, next)
	}
	if len(activated) == 0 {
		return 0, 0, nil
	}

	if err := i.pricer.PricePending(ctx, activated, now); err != nil {
		return 0, 0, err
	}

	uow := shared.NewUnitOfWork(i.repos)
	uow.TrackClientServices(activated...)
	uow.TrackClientServices(disabled...)
	if client.RecomputeRoomLimit(services) {
		uow.TrackClient(client)
	}
	changed := append(append([]*domain.ClientService{}, activated...), disabled...)
	if err := i.pricer.RecomputeAffected(ctx, uow, clientID, changed, now); err != nil {
		return 0, 0, err
	}
	if err := uow.Commit(ctx, now); err != nil {
		return 0, 0, err
	}
	return len(activated), len(disabled), nil
}
