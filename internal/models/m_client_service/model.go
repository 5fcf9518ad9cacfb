package m_client_service

import (
	"sort"

	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the client_services table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut creates a Spanner mutation writing the whole row.
func (m *Model) UpsertMut(data *Data) (*spanner.Mutation, error) {
	return spanner.InsertOrUpdateStruct(TableName, data)
}

// UpdateMut creates a Spanner mutation for updating specific fields.
// The updates map should contain column names as keys and new values.
func (m *Model) UpdateMut(clientServiceID string, updates map[string]interface{}) *spanner.Mutation {
	if len(updates) == 0 {
		return nil
	}

	cols := make([]string, 0, len(updates))
	for col := range updates {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	columns := append([]string{ClientServiceID}, cols...)
	values := []interface{}{clientServiceID}
	for _, col := range cols {
		values = append(values, updates[col])
	}
	return spanner.Update(TableName, columns, values)
}
