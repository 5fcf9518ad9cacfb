package m_outbox

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the outbox_events table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation for a newly recorded event.
func (m *Model) InsertMut(data *Data) (*spanner.Mutation, error) {
	return spanner.InsertStruct(TableName, data)
}

// CompletedMut marks an event as delivered at the given time.
func (m *Model) CompletedMut(eventID string, at time.Time) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{EventID, Status, ProcessedAt},
		[]interface{}{eventID, StatusCompleted, at},
	)
}

// RetryMut records a failed delivery attempt. The event gives up once
// retries reaches maxRetries.
func (m *Model) RetryMut(eventID string, retries, maxRetries int64, reason string) *spanner.Mutation {
	status := StatusPending
	if retries >= maxRetries {
		status = StatusFailed
	}
	return spanner.Update(TableName,
		[]string{EventID, Status, RetryCount, ErrorMessage},
		[]interface{}{eventID, status, retries, reason},
	)
}

// DeleteMut creates a Spanner mutation for deleting an outbox event.
func (m *Model) DeleteMut(eventID string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{eventID})
}
