package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var discountCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var hundred = decimal.NewFromInt(100)

// FieldUsageCount tracks consumed discount uses.
const FieldUsageCount = "usage_count"

// Discount is a reusable discount template. Clients never reference it
// directly; they get a ClientDiscount snapshot.
type Discount struct {
	ID           string
	Code         string
	Title        string
	Percentage   decimal.Decimal
	StartDate    *time.Time
	EndDate      *time.Time
	NumberOfUses int
	IsEnabled    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the template fields.
func (d *Discount) Validate() error {
	if !discountCodePattern.MatchString(d.Code) {
		return ErrInvalidDiscountCode
	}
	return validateDiscountTerms(d.Percentage, d.StartDate, d.EndDate, d.NumberOfUses)
}

func validateDiscountTerms(pct decimal.Decimal, start, end *time.Time, uses int) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return ErrInvalidPercentage
	}
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidDateRange
	}
	if uses < 0 {
		return ErrInvalidUsageLimit
	}
	return nil
}

// ClientDiscountState is the persisted shape of a ClientDiscount.
type ClientDiscountState struct {
	ID           string
	ClientID     string
	DiscountID   string
	Code         string
	Title        string
	Percentage   decimal.Decimal
	StartDate    *time.Time
	EndDate      *time.Time
	NumberOfUses int
	UsageCount   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ClientDiscount is a client-owned copy of a Discount taken at assignment
// time. Later edits to the template do not reach the snapshot.
type ClientDiscount struct {
	state   ClientDiscountState
	changes *ChangeTracker
}

// NewClientSnapshot copies every template field except identity and audit
// fields into a new client-scoped discount.
func NewClientSnapshot(id string, template *Discount, clientID string, now time.Time) (*ClientDiscount, error) {
	if template == nil {
		return nil, ErrDiscountNotFound
	}
	if clientID == "" {
		return nil, fmt.Errorf("%w: client is required", ErrValidation)
	}
	if err := template.Validate(); err != nil {
		return nil, err
	}
	s := ClientDiscountState{
		ID:           id,
		ClientID:     clientID,
		DiscountID:   template.ID,
		Code:         template.Code,
		Title:        template.Title,
		Percentage:   template.Percentage,
		StartDate:    copyTime(template.StartDate),
		EndDate:      copyTime(template.EndDate),
		NumberOfUses: template.NumberOfUses,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	cd := &ClientDiscount{state: s, changes: NewChangeTracker()}
	cd.changes.MarkDirty(FieldNew)
	return cd, nil
}

// ReconstructClientDiscount rebuilds a snapshot from storage.
func ReconstructClientDiscount(s ClientDiscountState) *ClientDiscount {
	s.StartDate = copyTime(s.StartDate)
	s.EndDate = copyTime(s.EndDate)
	return &ClientDiscount{state: s, changes: NewChangeTracker()}
}

// State returns a copy of the persisted shape.
func (cd *ClientDiscount) State() ClientDiscountState {
	s := cd.state
	s.StartDate = copyTime(s.StartDate)
	s.EndDate = copyTime(s.EndDate)
	return s
}

func (cd *ClientDiscount) ID() string                  { return cd.state.ID }
func (cd *ClientDiscount) ClientID() string            { return cd.state.ClientID }
func (cd *ClientDiscount) Percentage() decimal.Decimal { return cd.state.Percentage }
func (cd *ClientDiscount) UsageCount() int             { return cd.state.UsageCount }
func (cd *ClientDiscount) NumberOfUses() int           { return cd.state.NumberOfUses }
func (cd *ClientDiscount) Changes() *ChangeTracker     { return cd.changes }

// RemainingUses returns how many more orders may consume the discount.
func (cd *ClientDiscount) RemainingUses() int {
	return cd.state.NumberOfUses - cd.state.UsageCount
}

// IsValidAt reports whether t falls inside the validity window. Unset
// bounds are open.
func (cd *ClientDiscount) IsValidAt(t time.Time) bool {
	if cd.state.StartDate != nil && t.Before(*cd.state.StartDate) {
		return false
	}
	if cd.state.EndDate != nil && t.After(*cd.state.EndDate) {
		return false
	}
	return true
}

// IsUsableAt reports whether a new order may consume the discount at t.
func (cd *ClientDiscount) IsUsableAt(t time.Time) bool {
	return cd.RemainingUses() > 0 && cd.IsValidAt(t)
}

// ApplyTo reduces price by the discount percentage.
// Formula: price * (100 - percentage) / 100
func (cd *ClientDiscount) ApplyTo(price Money) Money {
	factor := hundred.Sub(cd.state.Percentage).Div(hundred)
	return price.MultiplyBy(factor)
}

// RecordUsage consumes one use.
func (cd *ClientDiscount) RecordUsage(now time.Time) error {
	if cd.RemainingUses() <= 0 {
		return ErrDiscountExhausted
	}
	cd.state.UsageCount++
	cd.state.UpdatedAt = now
	cd.changes.MarkDirty(FieldUsageCount)
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
