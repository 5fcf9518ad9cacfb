package notify_expiring_orders

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

// Interactor queues one "order will expire" notification per unpaid order
// whose services start within the notice window.
type Interactor struct {
	repos      contracts.Repositories
	clock      clock.Clock
	logger     *zap.Logger
	notifyDays int
}

// NewInteractor creates a new notify expiring orders interactor.
func NewInteractor(repos contracts.Repositories, clock clock.Clock, logger *zap.Logger, notifyDays int) *Interactor {
	return &Interactor{repos: repos, clock: clock, logger: logger, notifyDays: notifyDays}
}

// Execute returns the number of notified orders.
func (i *Interactor) Execute(ctx context.Context) (int, error) {
	now := i.clock.Now()
	until := now.AddDate(0, 0, i.notifyDays)

	orders, err := i.repos.Orders.ListInFlight(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unpaid orders: %w", err)
	}

	notified := 0
	for _, candidate := range orders {
		if candidate.NotifiedAt() != nil {
			continue
		}
		var sent bool
		err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			sent, err = i.notify(ctx, candidate.ID(), now, until)
			return err
		})
		if err != nil {
			i.logger.Error("expiry notification failed",
				zap.String("order_id", candidate.ID()),
				zap.Error(err),
			)
			continue
		}
		if sent {
			notified++
		}
	}
	return notified, nil
}

func (i *Interactor) notify(ctx context.Context, orderID string, now, until time.Time) (bool, error) {
	order, err := i.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if !order.Status().IsInFlight() || order.NotifiedAt() != nil {
		return false, nil
	}
	members, err := i.repos.ClientServices.ListByIDs(ctx, order.ClientServiceIDs())
	if err != nil {
		return false, err
	}

	var earliest time.Time
	for _, cs := range members {
		if !cs.IsEnabled() {
			continue
		}
		if earliest.IsZero() || cs.Begin().Before(earliest) {
			earliest = cs.Begin()
		}
	}
	if earliest.IsZero() || earliest.After(until) {
		return false, nil
	}

	order.RecordNotification(domain.TemplateOrderWillExpire, now)
	order.MarkNotified(now)
	uow := shared.NewUnitOfWork(i.repos)
	uow.TrackOrder(order)
	return true, uow.Commit(ctx, now)
}
