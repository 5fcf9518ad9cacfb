package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/models/m_outbox"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
	"github.com/light-bringer/tariff-billing/internal/pkg/query"
)

// OutboxRepo implements OutboxRepository for Spanner.
type OutboxRepo struct {
	committer *committer.Committer
	model     *m_outbox.Model
}

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo(c *committer.Committer) contracts.OutboxRepository {
	return &OutboxRepo{committer: c, model: m_outbox.NewModel()}
}

// Append buffers insert mutations for the events.
func (r *OutboxRepo) Append(ctx context.Context, events ...*contracts.OutboxEvent) error {
	muts := make([]*spanner.Mutation, 0, len(events))
	for _, e := range events {
		var payload spanner.NullJSON
		if e.Payload != "" {
			var v interface{}
			if err := json.Unmarshal([]byte(e.Payload), &v); err != nil {
				return fmt.Errorf("invalid payload for %s: %w", e.EventType, err)
			}
			payload = spanner.NullJSON{Value: v, Valid: true}
		}
		mut, err := r.model.InsertMut(&m_outbox.Data{
			EventID:     e.EventID,
			EventType:   e.EventType,
			AggregateID: e.AggregateID,
			Payload:     payload,
			Status:      e.Status,
			CreatedAt:   e.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to build outbox mutation: %w", err)
		}
		muts = append(muts, mut)
	}
	return r.committer.Buffer(ctx, muts...)
}

// ListPending returns the oldest pending events.
func (r *OutboxRepo) ListPending(ctx context.Context, limit int) ([]*contracts.OutboxEvent, error) {
	stmt := query.From(m_outbox.TableName).
		Select(m_outbox.Columns...).
		Where(query.Eq(m_outbox.Status, m_outbox.StatusPending)).
		OrderBy(m_outbox.CreatedAt, query.Asc).
		ThenBy(m_outbox.EventID, query.Asc).
		Limit(int64(limit)).
		Build()
	return readAll(ctx, r.committer.Reader(ctx), stmt, decodeOutboxEvent)
}

// MarkCompleted flags events as delivered.
func (r *OutboxRepo) MarkCompleted(ctx context.Context, eventIDs []string, at time.Time) error {
	muts := make([]*spanner.Mutation, 0, len(eventIDs))
	for _, id := range eventIDs {
		muts = append(muts, r.model.CompletedMut(id, at))
	}
	return r.committer.Buffer(ctx, muts...)
}

// MarkFailed records a delivery failure. The event stays pending until it
// has failed contracts.MaxOutboxRetries times.
func (r *OutboxRepo) MarkFailed(ctx context.Context, eventID string, reason string) error {
	return r.committer.WithinTransaction(ctx, func(ctx context.Context) error {
		row, err := r.committer.Reader(ctx).ReadRow(ctx, m_outbox.TableName, spanner.Key{eventID}, []string{m_outbox.RetryCount})
		if err != nil {
			return fmt.Errorf("failed to read outbox event: %w", err)
		}
		var retries int64
		if err := row.Column(0, &retries); err != nil {
			return fmt.Errorf("failed to parse retry count: %w", err)
		}
		return r.committer.Buffer(ctx, r.model.RetryMut(eventID, retries+1, contracts.MaxOutboxRetries, reason))
	})
}

// PurgeCompleted deletes completed events processed before cutoff.
func (r *OutboxRepo) PurgeCompleted(ctx context.Context, cutoff time.Time) (int, error) {
	var purged int
	err := r.committer.WithinTransaction(ctx, func(ctx context.Context) error {
		stmt := query.From(m_outbox.TableName).
			Select(m_outbox.EventID).
			Where(
				query.Eq(m_outbox.Status, m_outbox.StatusCompleted),
				query.Lt(m_outbox.ProcessedAt, cutoff),
			).
			Build()
		ids, err := readAll(ctx, r.committer.Reader(ctx), stmt, func(row *spanner.Row) (string, error) {
			var id string
			if err := row.Column(0, &id); err != nil {
				return "", err
			}
			return id, nil
		})
		if err != nil {
			return err
		}
		muts := make([]*spanner.Mutation, 0, len(ids))
		for _, id := range ids {
			muts = append(muts, r.model.DeleteMut(id))
		}
		purged = len(ids)
		return r.committer.Buffer(ctx, muts...)
	})
	return purged, err
}

func decodeOutboxEvent(row *spanner.Row) (*contracts.OutboxEvent, error) {
	var data m_outbox.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse outbox event: %w", err)
	}
	var payload string
	if data.Payload.Valid {
		b, err := json.Marshal(data.Payload.Value)
		if err != nil {
			return nil, fmt.Errorf("outbox event %s: %w", data.EventID, err)
		}
		payload = string(b)
	}
	return &contracts.OutboxEvent{
		EventID:      data.EventID,
		EventType:    data.EventType,
		AggregateID:  data.AggregateID,
		Payload:      payload,
		Status:       data.Status,
		CreatedAt:    data.CreatedAt,
		ProcessedAt:  timePtr(data.ProcessedAt),
		RetryCount:   data.RetryCount,
		ErrorMessage: data.ErrorMessage.StringVal,
	}, nil
}
