package disable_unpaid_services

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

// Result summarizes one sweep.
type Result struct {
	Disabled int
	Canceled int
	Failed   int
}

// Interactor disables the services of unpaid orders once the grace period
// after their begin has passed.
type Interactor struct {
	repos     contracts.Repositories
	clock     clock.Clock
	logger    *zap.Logger
	graceDays int
}

// NewInteractor creates a new disable unpaid services interactor.
func NewInteractor(repos contracts.Repositories, clock clock.Clock, logger *zap.Logger, graceDays int) *Interactor {
	return &Interactor{repos: repos, clock: clock, logger: logger, graceDays: graceDays}
}

// Execute disables overdue members order by order. An order left without
// enabled members is canceled.
func (i *Interactor) Execute(ctx context.Context) (*Result, error) {
	now := i.clock.Now()

	orders, err := i.repos.Orders.ListInFlight(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid orders: %w", err)
	}

	res := &Result{}
	for _, candidate := range orders {
		var disabled int
		var canceled bool
		err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			disabled, canceled, err = i.sweep(ctx, candidate.ID(), now)
			return err
		})
		if err != nil {
			res.Failed++
			i.logger.Error("disabling unpaid services failed",
				zap.String("order_id", candidate.ID()),
				zap.Error(err),
			)
			continue
		}
		res.Disabled += disabled
		if canceled {
			res.Canceled++
		}
	}

	if res.Disabled > 0 {
		i.logger.Info("unpaid services disabled",
			zap.Int("disabled", res.Disabled),
			zap.Int("canceled_orders", res.Canceled),
		)
	}
	return res, nil
}

func (i *Interactor) sweep(ctx context.Context, orderID string, now time.Time) (int, bool, error) {
	order, err := i.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return 0, false, err
	}
	if !order.Status().IsInFlight() {
		return 0, false, nil
	}
	members, err := i.repos.ClientServices.ListByIDs(ctx, order.ClientServiceIDs())
	if err != nil {
		return 0, false, err
	}

	var disabled []*domain.ClientService
	enabled := 0
	for _, cs := range members {
		if !cs.IsEnabled() {
			continue
		}
		if cs.IsPaid() || now.Before(cs.Begin().AddDate(0, 0, i.graceDays)) {
			enabled++
			continue
		}
		cs.Disable(now)
		disabled = append(disabled, cs)
	}
	if len(disabled) == 0 {
		return 0, false, nil
	}

	client, err := i.repos.Clients.GetByID(ctx, order.ClientID())
	if err != nil {
		return 0, false, err
	}
	siblings, err := i.repos.ClientServices.ListByClient(ctx, order.ClientID())
	if err != nil {
		return 0, false, err
	}
	for idx, s := range siblings {
		for _, cs := range disabled {
			if s.ID() == cs.ID() {
				siblings[idx] = cs
			}
		}
	}

	uow := shared.NewUnitOfWork(i.repos)
	uow.TrackClientServices(disabled...)
	if client.RecomputeRoomLimit(siblings) {
		uow.TrackClient(client)
	}

	canceled := false
	if enabled == 0 && order.Status() == domain.OrderNew {
		if err := order.Cancel(now); err != nil {
			return 0, false, err
		}
		canceled = true
	}
	order.RecordNotification(domain.TemplateServicesDisabled, now)
	uow.TrackOrder(order)

	if err := uow.Commit(ctx, now); err != nil {
		return 0, false, err
	}
	return len(disabled), canceled, nil
}
