package cancel_order

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request names the order to cancel.
type Request struct {
	OrderID string
}

// Interactor handles the cancel order use case.
type Interactor struct {
	repos   contracts.Repositories
	gateway contracts.PaymentGateway
	clock   clock.Clock
	logger  *zap.Logger
}

// NewInteractor creates a new cancel order interactor.
func NewInteractor(repos contracts.Repositories, gateway contracts.PaymentGateway, clock clock.Clock, logger *zap.Logger) *Interactor {
	return &Interactor{repos: repos, gateway: gateway, clock: clock, logger: logger}
}

// Execute cancels the order. A recorded gateway subscription is cancelled
// after the commit; a gateway failure is logged and does not undo it.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	if req.OrderID == "" {
		return fmt.Errorf("%w: order ID is required", domain.ErrValidation)
	}

	var subscriptionID string
	err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()

		order, err := i.repos.Orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if err := order.Cancel(now); err != nil {
			return err
		}
		subscriptionID = order.GatewaySubscriptionID()

		uow := shared.NewUnitOfWork(i.repos)
		uow.TrackOrder(order)
		return uow.Commit(ctx, now)
	})
	if err != nil {
		return err
	}

	if subscriptionID == "" {
		return nil
	}
	ok, err := i.gateway.CancelSubscription(ctx, subscriptionID)
	if err != nil || !ok {
		i.logger.Warn("gateway subscription not cancelled",
			zap.String("order_id", req.OrderID),
			zap.String("subscription_id", subscriptionID),
			zap.Bool("acknowledged", ok),
			zap.Error(err),
		)
	}
	return nil
}
