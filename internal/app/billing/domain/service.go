package domain

import (
	"fmt"
	"time"
)

// ServiceType is the closed set of tariff kinds. Each type has exactly one
// calculator strategy.
type ServiceType string

const (
	// ServiceTypeRooms is billed per unit (room/seat).
	ServiceTypeRooms ServiceType = "rooms"
	// ServiceTypeOther is a flat-rate service.
	ServiceTypeOther ServiceType = "other"
)

// ServiceTypes lists every known type.
var ServiceTypes = []ServiceType{ServiceTypeRooms, ServiceTypeOther}

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeRooms, ServiceTypeOther:
		return true
	}
	return false
}

// IsUnitBased reports whether the type is priced per unit.
func (t ServiceType) IsUnitBased() bool {
	return t == ServiceTypeRooms
}

// DefaultExempt reports whether the type may carry several defaults.
func (t ServiceType) DefaultExempt() bool {
	return t == ServiceTypeOther
}

// PeriodUnit is the calendar unit of a billing period.
type PeriodUnit string

const (
	PeriodMonth PeriodUnit = "month"
	PeriodYear  PeriodUnit = "year"
)

// Valid reports whether u is a known period unit.
func (u PeriodUnit) Valid() bool {
	return u == PeriodMonth || u == PeriodYear
}

// Service is a tariff definition from the catalog.
type Service struct {
	ID         string
	Title      string
	Type       ServiceType
	Period     int
	PeriodUnit PeriodUnit
	IsDefault  bool
	IsEnabled  bool
	IsTrial    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the service definition.
func (s *Service) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidServiceSetup)
	}
	if !s.Type.Valid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidServiceSetup, ErrUnknownServiceType, s.Type)
	}
	if s.Period < 0 {
		return fmt.Errorf("%w: period must not be negative", ErrInvalidServiceSetup)
	}
	if !s.PeriodUnit.Valid() {
		return fmt.Errorf("%w: unknown period unit %q", ErrInvalidServiceSetup, s.PeriodUnit)
	}
	return nil
}

// IsOneOff reports whether the service has a zero-length period and
// therefore never renews.
func (s *Service) IsOneOff() bool {
	return s.Period == 0
}

// AddPeriod returns t advanced by one service period.
func (s *Service) AddPeriod(t time.Time) time.Time {
	switch s.PeriodUnit {
	case PeriodYear:
		return AddMonths(t, 12*s.Period)
	default:
		return AddMonths(t, s.Period)
	}
}

// AddMonths adds calendar months to t. When the target month is shorter
// the day is clamped to its last day, so Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, months int) time.Time {
	if months == 0 {
		return t
	}
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CheckDefaultUnique enforces at most one enabled default service per type.
// The flat type is exempt.
func CheckDefaultUnique(candidate *Service, existing []*Service) error {
	if !candidate.IsDefault || !candidate.IsEnabled || candidate.Type.DefaultExempt() {
		return nil
	}
	for _, s := range existing {
		if s.ID == candidate.ID {
			continue
		}
		if s.Type == candidate.Type && s.IsDefault && s.IsEnabled {
			return fmt.Errorf("%w: %s", ErrDefaultExists, s.ID)
		}
	}
	return nil
}

// PickDefault returns the enabled default service of type t.
func PickDefault(t ServiceType, services []*Service) (*Service, error) {
	for _, s := range services {
		if s.Type == t && s.IsDefault && s.IsEnabled && !s.IsTrial {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoDefaultService, t)
}

// PickTrial returns the enabled trial service of type t.
func PickTrial(t ServiceType, services []*Service) (*Service, error) {
	for _, s := range services {
		if s.Type == t && s.IsTrial && s.IsEnabled {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoTrialService, t)
}
