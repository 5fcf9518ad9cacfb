package relay_outbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Result summarizes one relay run.
type Result struct {
	Published int
	Failed    int
	Purged    int
}

// Interactor publishes pending outbox events and purges delivered ones.
type Interactor struct {
	outbox    contracts.OutboxRepository
	publisher contracts.EventPublisher
	clock     clock.Clock
	logger    *zap.Logger
	batchSize int
	retention time.Duration
}

// NewInteractor creates a new relay outbox interactor. Completed events
// older than retention are deleted; a zero retention keeps them.
func NewInteractor(
	outbox contracts.OutboxRepository,
	publisher contracts.EventPublisher,
	clock clock.Clock,
	logger *zap.Logger,
	batchSize int,
	retention time.Duration,
) *Interactor {
	return &Interactor{
		outbox:    outbox,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		batchSize: batchSize,
		retention: retention,
	}
}

// Execute delivers one batch. A failed publish counts a retry on every
// event of the batch.
func (i *Interactor) Execute(ctx context.Context) (*Result, error) {
	res := &Result{}

	events, err := i.outbox.ListPending(ctx, i.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending events: %w", err)
	}

	if len(events) > 0 {
		if publishErr := i.publisher.Publish(ctx, events); publishErr != nil {
			i.logger.Warn("outbox publish failed",
				zap.Int("events", len(events)),
				zap.Error(publishErr),
			)
			for _, e := range events {
				if err := i.outbox.MarkFailed(ctx, e.EventID, publishErr.Error()); err != nil {
					return res, fmt.Errorf("failed to mark event %s failed: %w", e.EventID, err)
				}
				res.Failed++
			}
		} else {
			ids := make([]string, 0, len(events))
			for _, e := range events {
				ids = append(ids, e.EventID)
			}
			if err := i.outbox.MarkCompleted(ctx, ids, i.clock.Now()); err != nil {
				return res, fmt.Errorf("failed to mark events completed: %w", err)
			}
			res.Published = len(ids)
		}
	}

	if i.retention > 0 {
		purged, err := i.outbox.PurgeCompleted(ctx, i.clock.Now().Add(-i.retention))
		if err != nil {
			return res, fmt.Errorf("failed to purge outbox: %w", err)
		}
		res.Purged = purged
	}

	if res.Published > 0 || res.Failed > 0 || res.Purged > 0 {
		i.logger.Info("outbox relayed",
			zap.Int("published", res.Published),
			zap.Int("failed", res.Failed),
			zap.Int("purged", res.Purged),
		)
	}
	return res, nil
}
