package domain

import (
	"fmt"
	"time"
)

// Field names for change tracking
const (
	FieldServiceID = "service_id"
	FieldQuantity  = "quantity"
	FieldStatus    = "status"
	FieldEnabled   = "is_enabled"
	FieldPaid      = "is_paid"
	FieldBegin     = "begin"
	FieldEnd       = "end"
	FieldPrice     = "price"
)

// ClientServiceStatus is the lifecycle status of a client service.
type ClientServiceStatus string

const (
	ClientServiceActive     ClientServiceStatus = "active"
	ClientServiceNext       ClientServiceStatus = "next"
	ClientServiceProcessing ClientServiceStatus = "processing"
	ClientServiceArchive    ClientServiceStatus = "archive"
)

// ClientServiceState is the persisted shape of a ClientService.
type ClientServiceState struct {
	ID          string
	ClientID    string
	ServiceID   string
	ServiceType ServiceType
	Quantity    int
	Status      ClientServiceStatus
	IsEnabled   bool
	IsPaid      bool
	Begin       time.Time
	End         time.Time
	Price       *Money
	CountryID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClientService is a client's subscription to a catalog service for one
// billing window. A nil price means the price is pending recomputation.
type ClientService struct {
	state   ClientServiceState
	changes *ChangeTracker
	events  []DomainEvent
}

// NewClientService subscribes a client to svc starting at begin. A begin in
// the future yields a pending "next" service.
func NewClientService(id, clientID string, svc *Service, quantity int, countryID string, begin, now time.Time) (*ClientService, error) {
	if quantity <= 0 || countryID == "" {
		return nil, ErrInvalidCountryOrQuantity
	}
	if !svc.IsEnabled {
		return nil, fmt.Errorf("%w: service %s is disabled", ErrConfiguration, svc.ID)
	}

	status := ClientServiceActive
	if begin.After(now) {
		status = ClientServiceNext
	}

	cs := &ClientService{
		state: ClientServiceState{
			ID:          id,
			ClientID:    clientID,
			ServiceID:   svc.ID,
			ServiceType: svc.Type,
			Quantity:    quantity,
			Status:      status,
			IsEnabled:   true,
			Begin:       begin,
			End:         svc.AddPeriod(begin),
			CountryID:   countryID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		changes: NewChangeTracker(),
	}
	cs.changes.MarkDirty(FieldNew, FieldServiceID, FieldQuantity, FieldStatus, FieldEnabled, FieldPaid, FieldBegin, FieldEnd, FieldPrice)

	cs.recordEvent(&ClientServiceCreatedEvent{
		ClientServiceID: id,
		ClientID:        clientID,
		ServiceID:       svc.ID,
		Status:          string(status),
		Begin:           cs.state.Begin,
		End:             cs.state.End,
	})
	return cs, nil
}

// ReconstructClientService rebuilds a ClientService from storage.
func ReconstructClientService(s ClientServiceState) *ClientService {
	if s.Price != nil {
		p := *s.Price
		s.Price = &p
	}
	return &ClientService{state: s, changes: NewChangeTracker()}
}

// State returns a copy of the persisted shape.
func (cs *ClientService) State() ClientServiceState {
	s := cs.state
	if s.Price != nil {
		p := *s.Price
		s.Price = &p
	}
	return s
}

// Getters
func (cs *ClientService) ID() string                  { return cs.state.ID }
func (cs *ClientService) ClientID() string            { return cs.state.ClientID }
func (cs *ClientService) ServiceID() string           { return cs.state.ServiceID }
func (cs *ClientService) ServiceType() ServiceType    { return cs.state.ServiceType }
func (cs *ClientService) Quantity() int               { return cs.state.Quantity }
func (cs *ClientService) Status() ClientServiceStatus { return cs.state.Status }
func (cs *ClientService) IsEnabled() bool             { return cs.state.IsEnabled }
func (cs *ClientService) IsPaid() bool                { return cs.state.IsPaid }
func (cs *ClientService) Begin() time.Time            { return cs.state.Begin }
func (cs *ClientService) End() time.Time              { return cs.state.End }
func (cs *ClientService) CountryID() string           { return cs.state.CountryID }
func (cs *ClientService) Changes() *ChangeTracker     { return cs.changes }
func (cs *ClientService) DomainEvents() []DomainEvent { return cs.events }

// Price returns the calculated price, or false while it is pending.
func (cs *ClientService) Price() (Money, bool) {
	if cs.state.Price == nil {
		return Money{}, false
	}
	return *cs.state.Price, true
}

// NeedsPricing reports whether the price must be recalculated.
func (cs *ClientService) NeedsPricing() bool {
	return cs.state.Price == nil
}

// IsPending reports whether this is a scheduled successor.
func (cs *ClientService) IsPending() bool {
	return cs.state.IsEnabled && cs.state.Status == ClientServiceNext
}

// IsCurrent reports whether the service counts toward current billing.
func (cs *ClientService) IsCurrent() bool {
	return cs.state.IsEnabled && cs.state.Status == ClientServiceActive
}

// SetPrice stores a freshly calculated price.
func (cs *ClientService) SetPrice(price Money, now time.Time) {
	if cs.state.Price != nil && cs.state.Price.Equals(price) {
		return
	}
	cs.state.Price = &price
	cs.touch(now, FieldPrice)
}

// ResetPrice marks the price as pending recomputation.
func (cs *ClientService) ResetPrice(now time.Time) {
	if cs.state.Price == nil {
		return
	}
	cs.state.Price = nil
	cs.touch(now, FieldPrice)
}

// SetQuantity changes the unit count and invalidates the price.
func (cs *ClientService) SetQuantity(quantity int, now time.Time) error {
	if quantity <= 0 {
		return ErrInvalidCountryOrQuantity
	}
	if !cs.state.IsEnabled {
		return ErrClientServiceDisabled
	}
	if quantity == cs.state.Quantity {
		return nil
	}
	cs.state.Quantity = quantity
	cs.touch(now, FieldQuantity)
	cs.ResetPrice(now)
	return nil
}

// RollForward moves the service into its next billing window using the
// calendar period of svc. svc may differ from the current service when a
// trial or retired tariff is replaced by the type's default.
func (cs *ClientService) RollForward(svc *Service, now time.Time) error {
	if !cs.state.IsEnabled {
		return ErrClientServiceDisabled
	}
	if cs.state.Status == ClientServiceNext {
		return fmt.Errorf("roll %s: pending services are not rolled", cs.state.ID)
	}
	if svc.Type != cs.state.ServiceType {
		return fmt.Errorf("%w: replacement %s has type %s, want %s", ErrConfiguration, svc.ID, svc.Type, cs.state.ServiceType)
	}

	if svc.ID != cs.state.ServiceID {
		cs.state.ServiceID = svc.ID
		cs.changes.MarkDirty(FieldServiceID)
	}
	cs.state.Begin = cs.state.End
	cs.state.End = svc.AddPeriod(cs.state.End)
	cs.state.IsPaid = false
	cs.state.Price = nil
	cs.touch(now, FieldBegin, FieldEnd, FieldPaid, FieldPrice)

	cs.recordEvent(&ClientServiceRolledEvent{
		ClientServiceID: cs.state.ID,
		ClientID:        cs.state.ClientID,
		ServiceID:       cs.state.ServiceID,
		Begin:           cs.state.Begin,
		End:             cs.state.End,
	})
	return nil
}

// Activate turns a pending service into the active one.
func (cs *ClientService) Activate(now time.Time) error {
	if !cs.IsPending() {
		return ErrNotPending
	}
	cs.state.Status = ClientServiceActive
	cs.touch(now, FieldStatus)
	cs.recordEvent(&ClientServiceActivatedEvent{
		ClientServiceID: cs.state.ID,
		ClientID:        cs.state.ClientID,
		ActivatedAt:     now,
	})
	return nil
}

// Disable archives the service. Disabling twice is a no-op.
func (cs *ClientService) Disable(now time.Time) {
	if !cs.state.IsEnabled {
		return
	}
	cs.state.IsEnabled = false
	cs.state.Status = ClientServiceArchive
	cs.touch(now, FieldEnabled, FieldStatus)
	cs.recordEvent(&ClientServiceDisabledEvent{
		ClientServiceID: cs.state.ID,
		ClientID:        cs.state.ClientID,
		DisabledAt:      now,
	})
}

// MarkPaid records payment for the current window.
func (cs *ClientService) MarkPaid(now time.Time) {
	if cs.state.IsPaid {
		return
	}
	cs.state.IsPaid = true
	cs.touch(now, FieldPaid)
}

func (cs *ClientService) touch(now time.Time, fields ...string) {
	cs.state.UpdatedAt = now
	cs.changes.MarkDirty(fields...)
}

func (cs *ClientService) recordEvent(event DomainEvent) {
	cs.events = append(cs.events, event)
}

// ClearEvents clears all recorded domain events (called after publishing).
func (cs *ClientService) ClearEvents() {
	cs.events = nil
}
