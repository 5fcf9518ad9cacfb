package contracts

import (
	"context"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

// RateProvider returns the exchange rate from base to target. A missing
// rate is reported as domain.ErrRateUnavailable, never as zero.
type RateProvider = domain.RateSource

// ChargeResult describes a successful gateway charge.
type ChargeResult struct {
	TransactionID  string
	SubscriptionID string
}

// PaymentGateway is the opaque charge/cancel capability of a payment provider.
type PaymentGateway interface {
	Charge(ctx context.Context, order *domain.Order) (*ChargeResult, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (bool, error)
}

// EventPublisher delivers outbox events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events []*OutboxEvent) error
}
