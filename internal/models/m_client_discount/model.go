package m_client_discount

import "cloud.google.com/go/spanner"

// Model provides a facade for type-safe operations on the client_discounts table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut creates a Spanner mutation writing the whole row.
func (m *Model) UpsertMut(data *Data) (*spanner.Mutation, error) {
	return spanner.InsertOrUpdateStruct(TableName, data)
}

// UsageMut updates only the usage counter of a snapshot.
func (m *Model) UsageMut(clientDiscountID string, usageCount int64, updatedAt interface{}) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{ClientDiscountID, UsageCount, UpdatedAt},
		[]interface{}{clientDiscountID, usageCount, updatedAt},
	)
}

// DeleteMut creates a Spanner mutation deleting a snapshot.
func (m *Model) DeleteMut(clientDiscountID string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{clientDiscountID})
}
