package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

// Outbox event statuses.
const (
	OutboxPending   = "pending"
	OutboxCompleted = "completed"
	OutboxFailed    = "failed"
)

// MaxOutboxRetries is the number of failed deliveries after which an event
// is no longer retried.
const MaxOutboxRetries = 5

// OutboxEvent represents an enriched domain event ready for persistence.
type OutboxEvent struct {
	EventID      string
	EventType    string
	AggregateID  string
	Payload      string // JSON
	Status       string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
	RetryCount   int64
	ErrorMessage string
}

// OutboxRepository stores domain events next to the state change that
// produced them.
type OutboxRepository interface {
	// Append writes events in the caller's transaction.
	Append(ctx context.Context, events ...*OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkCompleted(ctx context.Context, eventIDs []string, at time.Time) error
	MarkFailed(ctx context.Context, eventID string, reason string) error
	// PurgeCompleted deletes completed events processed before cutoff.
	PurgeCompleted(ctx context.Context, cutoff time.Time) (int, error)
}

// EnrichEvent converts a domain event to an outbox event with metadata.
func EnrichEvent(event domain.DomainEvent, at time.Time) (*OutboxEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", event.EventType(), err)
	}
	return &OutboxEvent{
		EventID:     uuid.New().String(),
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		Payload:     string(payload),
		Status:      OutboxPending,
		CreatedAt:   at,
	}, nil
}

// EnrichEvents converts a batch of domain events.
func EnrichEvents(events []domain.DomainEvent, at time.Time) ([]*OutboxEvent, error) {
	out := make([]*OutboxEvent, 0, len(events))
	for _, e := range events {
		oe, err := EnrichEvent(e, at)
		if err != nil {
			return nil, err
		}
		out = append(out, oe)
	}
	return out, nil
}
