package m_discount

import "cloud.google.com/go/spanner"

// Model provides a facade for type-safe operations on the discounts table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut creates a Spanner mutation writing the whole row.
func (m *Model) UpsertMut(data *Data) (*spanner.Mutation, error) {
	return spanner.InsertOrUpdateStruct(TableName, data)
}
