package quote_price

import (
	"context"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain/services"
)

// Request contains the inputs of a price quote.
type Request struct {
	ServiceID string
	Quantity  int
	Country   string
	// Currency optionally converts the quote; empty keeps the table currency.
	Currency string
}

// Response is a calculated quote.
type Response struct {
	Price     domain.Money
	Converted *domain.Money
}

// Query handles the quote price query use case.
type Query struct {
	catalog    contracts.ServiceRepository
	entries    contracts.PriceEntryRepository
	calculator *services.PriceCalculator
	rates      contracts.RateProvider
}

// NewQuery creates a new quote price query.
func NewQuery(
	catalog contracts.ServiceRepository,
	entries contracts.PriceEntryRepository,
	calculator *services.PriceCalculator,
	rates contracts.RateProvider,
) *Query {
	return &Query{
		catalog:    catalog,
		entries:    entries,
		calculator: calculator,
		rates:      rates,
	}
}

// Execute prices quantity units of the service for the country.
func (q *Query) Execute(ctx context.Context, req *Request) (*Response, error) {
	svc, err := q.catalog.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	entries, err := q.entries.ListByService(ctx, svc.ID)
	if err != nil {
		return nil, err
	}

	price, err := q.calculator.Calc(services.CalcRequest{
		Service:  svc,
		Entries:  entries,
		Quantity: &req.Quantity,
		Country:  &req.Country,
	})
	if err != nil {
		return nil, err
	}

	resp := &Response{Price: price}
	if req.Currency == "" {
		return resp, nil
	}
	target, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	converted, err := price.Convert(ctx, target, q.rates)
	if err != nil {
		return nil, err
	}
	converted = converted.Round(2)
	resp.Converted = &converted
	return resp, nil
}
