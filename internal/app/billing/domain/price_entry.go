package domain

import (
	"fmt"
	"time"
)

// PriceEntry is one tier of a service's price table. A nil CountryID is the
// "all countries" fallback scope. Nil period bounds are unbounded.
type PriceEntry struct {
	ID         string
	ServiceID  string
	CountryID  *string
	PeriodFrom *int
	PeriodTo   *int
	Price      Money
	ForUnit    bool
	IsEnabled  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsBase reports whether the entry has no period bounds.
func (e *PriceEntry) IsBase() bool {
	return e.PeriodFrom == nil && e.PeriodTo == nil
}

// Scope returns the country scope key; "" is the fallback scope.
func (e *PriceEntry) Scope() string {
	if e.CountryID == nil {
		return ""
	}
	return *e.CountryID
}

// SameScope reports whether both entries price the same (service, country).
func (e *PriceEntry) SameScope(other *PriceEntry) bool {
	return e.ServiceID == other.ServiceID && e.Scope() == other.Scope()
}

// Contains reports whether unit position r falls inside the entry's range.
func (e *PriceEntry) Contains(r int) bool {
	if e.PeriodFrom != nil && r < *e.PeriodFrom {
		return false
	}
	if e.PeriodTo != nil && r > *e.PeriodTo {
		return false
	}
	return true
}

// Overlaps reports whether two ranges intersect. Ranges are disjoint only
// when one's upper bound is strictly below the other's lower bound; a nil
// bound never separates.
func (e *PriceEntry) Overlaps(other *PriceEntry) bool {
	if e.PeriodTo != nil && other.PeriodFrom != nil && *e.PeriodTo < *other.PeriodFrom {
		return false
	}
	if other.PeriodTo != nil && e.PeriodFrom != nil && *other.PeriodTo < *e.PeriodFrom {
		return false
	}
	return true
}

// Validate checks the entry on its own.
func (e *PriceEntry) Validate() error {
	if e.ServiceID == "" {
		return fmt.Errorf("%w: service is required", ErrValidation)
	}
	if e.PeriodFrom != nil && e.PeriodTo != nil && *e.PeriodFrom > *e.PeriodTo {
		return ErrInvalidPeriodRange
	}
	if e.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if !e.Price.Currency().Valid() {
		return ErrInvalidCurrency
	}
	return nil
}

// ValidateAgainst checks the entry against the other entries of the table.
// Disabled entries are not constrained.
func (e *PriceEntry) ValidateAgainst(existing []*PriceEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if !e.IsEnabled {
		return nil
	}
	for _, other := range existing {
		if other.ID == e.ID || !other.IsEnabled || !e.SameScope(other) {
			continue
		}
		switch {
		case e.IsBase() && other.IsBase():
			return ErrBasePriceExists
		case e.IsBase() || other.IsBase():
			continue
		case e.Overlaps(other):
			return fmt.Errorf("%w: conflicts with %s", ErrPeriodOverlap, other.ID)
		}
	}
	return nil
}

// Describe renders the range for logs and notes.
func (e *PriceEntry) Describe() string {
	bound := func(p *int) string {
		if p == nil {
			return "*"
		}
		return fmt.Sprint(*p)
	}
	return fmt.Sprintf("[%s..%s] %s", bound(e.PeriodFrom), bound(e.PeriodTo), e.Price)
}
