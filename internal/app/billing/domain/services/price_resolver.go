package services

import (
	"fmt"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

// UnitPrice is the price entry charged for one unit position.
type UnitPrice struct {
	Unit  int
	Entry *domain.PriceEntry
}

// PriceTableResolver picks the tiered price entries that apply to a
// quantity of a service in a country.
type PriceTableResolver struct{}

// NewPriceTableResolver creates a new PriceTableResolver.
func NewPriceTableResolver() *PriceTableResolver {
	return &PriceTableResolver{}
}

// Scope returns the enabled entries of svc that apply to country. If any
// enabled entry exists for the country, only those are used; otherwise the
// all-countries set is used. The two sets are never mixed.
func (r *PriceTableResolver) Scope(svc *domain.Service, entries []*domain.PriceEntry, country string) []*domain.PriceEntry {
	var local, fallback []*domain.PriceEntry
	for _, e := range entries {
		if e.ServiceID != svc.ID || !e.IsEnabled {
			continue
		}
		switch {
		case e.CountryID == nil:
			fallback = append(fallback, e)
		case *e.CountryID == country:
			local = append(local, e)
		}
	}
	if len(local) > 0 {
		return local
	}
	return fallback
}

// Resolve returns the entry charged for each unit position in 1..quantity,
// in unit order. A unit is priced by the bounded entry containing it, or by
// the scope's base entry when no bounded entry does. Unit-based services only
// fall back to a for_unit base. Units covered by neither are omitted, so they
// contribute nothing.
func (r *PriceTableResolver) Resolve(svc *domain.Service, entries []*domain.PriceEntry, country string, quantity int) ([]UnitPrice, error) {
	if quantity <= 0 || country == "" {
		return nil, domain.ErrInvalidCountryOrQuantity
	}

	scoped := r.Scope(svc, entries, country)
	if len(scoped) == 0 {
		return nil, fmt.Errorf("%w: service %s, country %s", domain.ErrEmptyPrices, svc.ID, country)
	}

	var base *domain.PriceEntry
	bounded := make([]*domain.PriceEntry, 0, len(scoped))
	for _, e := range scoped {
		if e.IsBase() {
			if e.ForUnit || (base == nil && !svc.Type.IsUnitBased()) {
				base = e
			}
			continue
		}
		bounded = append(bounded, e)
	}

	out := make([]UnitPrice, 0, quantity)
	for unit := 1; unit <= quantity; unit++ {
		if e := findContaining(bounded, unit); e != nil {
			out = append(out, UnitPrice{Unit: unit, Entry: e})
			continue
		}
		if base != nil {
			out = append(out, UnitPrice{Unit: unit, Entry: base})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no entry covers units 1..%d of service %s", domain.ErrEmptyPrices, quantity, svc.ID)
	}
	return out, nil
}

// Validate checks a created or updated entry against the rest of its table.
func (r *PriceTableResolver) Validate(candidate *domain.PriceEntry, existing []*domain.PriceEntry) error {
	return candidate.ValidateAgainst(existing)
}

func findContaining(entries []*domain.PriceEntry, unit int) *domain.PriceEntry {
	for _, e := range entries {
		if e.Contains(unit) {
			return e
		}
	}
	return nil
}
