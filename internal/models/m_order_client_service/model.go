package m_order_client_service

import "cloud.google.com/go/spanner"

// Model provides a facade for type-safe operations on the order_client_services table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// ReplaceMuts rewrites the membership of an order.
func (m *Model) ReplaceMuts(orderID string, clientServiceIDs []string) []*spanner.Mutation {
	muts := make([]*spanner.Mutation, 0, len(clientServiceIDs)+1)
	muts = append(muts, spanner.Delete(TableName, spanner.Key{orderID}.AsPrefix()))
	for _, id := range clientServiceIDs {
		muts = append(muts, spanner.InsertOrUpdate(TableName, Columns, []interface{}{orderID, id}))
	}
	return muts
}
