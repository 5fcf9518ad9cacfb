package pay_order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Request names the order to charge.
type Request struct {
	OrderID string
}

// Response describes the successful payment.
type Response struct {
	TransactionID string
	Price         domain.Money
}

// Interactor handles the pay order use case.
type Interactor struct {
	repos   contracts.Repositories
	gateway contracts.PaymentGateway
	clock   clock.Clock
	logger  *zap.Logger
	lease   time.Duration
}

// NewInteractor creates a new pay order interactor. lease bounds how long an
// unfinished charge keeps other callers from charging the same order.
func NewInteractor(repos contracts.Repositories, gateway contracts.PaymentGateway, clock clock.Clock, logger *zap.Logger, lease time.Duration) *Interactor {
	return &Interactor{repos: repos, gateway: gateway, clock: clock, logger: logger, lease: lease}
}

// Execute opens a charge attempt, charges the order and marks it paid.
// The gateway is called outside any transaction. Only one attempt per order
// runs at a time; a failed charge closes its attempt and leaves the order in
// processing so that it can be retried.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: order ID is required", domain.ErrValidation)
	}

	var order *domain.Order
	err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = i.repos.Orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if err := order.BeginCharge(uuid.New().String(), i.lease, i.clock.Now()); err != nil {
			return err
		}
		uow := shared.NewUnitOfWork(i.repos)
		uow.TrackOrder(order)
		return uow.Commit(ctx, i.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	charge, err := i.gateway.Charge(ctx, order)
	if err != nil {
		i.logger.Warn("order charge failed",
			zap.String("order_id", order.ID()),
			zap.String("client_id", order.ClientID()),
			zap.Error(err),
		)
		var subscriptionID string
		if charge != nil {
			subscriptionID = charge.SubscriptionID
		}
		i.abortCharge(ctx, req.OrderID, subscriptionID)
		return nil, fmt.Errorf("%w: %w", domain.ErrPaymentFailed, err)
	}

	err = i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()

		order, err := i.repos.Orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		members, err := i.repos.ClientServices.ListByIDs(ctx, order.ClientServiceIDs())
		if err != nil {
			return err
		}
		if err := order.MarkPaid(now); err != nil {
			return err
		}
		if charge.SubscriptionID != "" {
			order.SetGatewaySubscription(charge.SubscriptionID, now)
		}
		for _, cs := range members {
			if cs.IsEnabled() {
				cs.MarkPaid(now)
			}
		}

		uow := shared.NewUnitOfWork(i.repos)
		uow.TrackOrder(order)
		uow.TrackClientServices(members...)
		return uow.Commit(ctx, now)
	})
	if err != nil {
		// The money is taken; the order must be reconciled by hand.
		i.logger.Error("charged order could not be marked paid",
			zap.String("order_id", req.OrderID),
			zap.String("transaction_id", charge.TransactionID),
			zap.Error(err),
		)
		return nil, err
	}

	i.logger.Info("order paid",
		zap.String("order_id", order.ID()),
		zap.String("transaction_id", charge.TransactionID),
	)
	return &Response{TransactionID: charge.TransactionID, Price: order.Price()}, nil
}

// abortCharge closes the failed attempt and keeps a subscription opened by
// the charge so that cancelling the order can close it.
func (i *Interactor) abortCharge(ctx context.Context, orderID, subscriptionID string) {
	err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := i.clock.Now()
		order, err := i.repos.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		order.AbortCharge(now)
		if subscriptionID != "" {
			order.SetGatewaySubscription(subscriptionID, now)
		}
		return i.repos.Orders.Save(ctx, order)
	})
	if err != nil {
		i.logger.Error("failed to close charge attempt",
			zap.String("order_id", orderID),
			zap.String("subscription_id", subscriptionID),
			zap.Error(err),
		)
	}
}
