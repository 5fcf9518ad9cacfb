package get_order

import (
	"context"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

// Request contains the order ID to retrieve.
type Request struct {
	OrderID string
}

// Response is an order with its member services.
type Response struct {
	Order   *domain.Order
	Members []*domain.ClientService
}

// Query handles the get order query use case.
type Query struct {
	orders         contracts.OrderRepository
	clientServices contracts.ClientServiceRepository
}

// NewQuery creates a new get order query.
func NewQuery(orders contracts.OrderRepository, clientServices contracts.ClientServiceRepository) *Query {
	return &Query{
		orders:         orders,
		clientServices: clientServices,
	}
}

// Execute retrieves an order by ID.
func (q *Query) Execute(ctx context.Context, req *Request) (*Response, error) {
	order, err := q.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	members, err := q.clientServices.ListByIDs(ctx, order.ClientServiceIDs())
	if err != nil {
		return nil, err
	}
	return &Response{Order: order, Members: members}, nil
}
