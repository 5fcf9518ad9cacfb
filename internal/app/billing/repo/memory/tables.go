package memory

import (
	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

type tables struct {
	services        map[string]domain.Service
	entries         map[string]domain.PriceEntry
	clients         map[string]domain.Client
	clientServices  map[string]domain.ClientServiceState
	orders          map[string]domain.OrderState
	discounts       map[string]domain.Discount
	clientDiscounts map[string]domain.ClientDiscountState
	outbox          map[string]contracts.OutboxEvent
}

func newTables() *tables {
	return &tables{
		services:        map[string]domain.Service{},
		entries:         map[string]domain.PriceEntry{},
		clients:         map[string]domain.Client{},
		clientServices:  map[string]domain.ClientServiceState{},
		orders:          map[string]domain.OrderState{},
		discounts:       map[string]domain.Discount{},
		clientDiscounts: map[string]domain.ClientDiscountState{},
		outbox:          map[string]contracts.OutboxEvent{},
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyPriceEntry(e domain.PriceEntry) domain.PriceEntry {
	e.CountryID = copyPtr(e.CountryID)
	e.PeriodFrom = copyPtr(e.PeriodFrom)
	e.PeriodTo = copyPtr(e.PeriodTo)
	return e
}

func copyDiscount(d domain.Discount) domain.Discount {
	d.StartDate = copyPtr(d.StartDate)
	d.EndDate = copyPtr(d.EndDate)
	return d
}

func copyOutboxEvent(e contracts.OutboxEvent) contracts.OutboxEvent {
	e.ProcessedAt = copyPtr(e.ProcessedAt)
	return e
}
