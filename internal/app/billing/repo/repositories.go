package repo

import (
	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
)

// NewRepositories wires every Spanner repository to one committer.
func NewRepositories(c *committer.Committer) contracts.Repositories {
	return contracts.Repositories{
		Tx:              c,
		Services:        NewServiceRepo(c),
		PriceEntries:    NewPriceEntryRepo(c),
		Clients:         NewClientRepo(c),
		ClientServices:  NewClientServiceRepo(c),
		Orders:          NewOrderRepo(c),
		Discounts:       NewDiscountRepo(c),
		ClientDiscounts: NewClientDiscountRepo(c),
		Outbox:          NewOutboxRepo(c),
	}
}
