package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

// DiscountApplication is the outcome of DiscountEngine.Apply.
type DiscountApplication struct {
	Price   domain.Money
	Applied bool
	// RecordUsage is set when the discount reached this order for the
	// first time and one use must be consumed.
	RecordUsage bool
}

// DiscountEngine applies client discount snapshots to prices.
type DiscountEngine struct {
	logger *zap.Logger
}

// NewDiscountEngine creates a new DiscountEngine.
func NewDiscountEngine(logger *zap.Logger) *DiscountEngine {
	return &DiscountEngine{logger: logger}
}

// Apply reduces price by the snapshot percentage. A discount already
// recorded on the order stays applied, even to a zero total, without checks
// and without consuming another use.
func (e *DiscountEngine) Apply(cd *domain.ClientDiscount, price domain.Money, alreadyApplied bool, now time.Time) DiscountApplication {
	unchanged := DiscountApplication{Price: price}
	if cd == nil {
		return unchanged
	}
	if alreadyApplied {
		return DiscountApplication{Price: cd.ApplyTo(price), Applied: true}
	}
	if price.IsZero() || !cd.IsUsableAt(now) {
		return unchanged
	}
	return DiscountApplication{Price: cd.ApplyTo(price), Applied: true, RecordUsage: true}
}

// RecordUsage consumes one use of the snapshot.
func (e *DiscountEngine) RecordUsage(cd *domain.ClientDiscount, now time.Time) error {
	return cd.RecordUsage(now)
}

// Snapshot copies template into a client-scoped discount. Failures are
// logged and yield nil so that callers can carry on without a discount.
func (e *DiscountEngine) Snapshot(id string, template *domain.Discount, clientID string, now time.Time) *domain.ClientDiscount {
	cd, err := domain.NewClientSnapshot(id, template, clientID, now)
	if err != nil {
		e.logger.Warn("discount snapshot skipped",
			zap.String("client_id", clientID),
			zap.Error(err),
		)
		return nil
	}
	return cd
}
