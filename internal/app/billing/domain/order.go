package domain

import (
	"fmt"
	"slices"
	"time"
)

// OrderStatus represents the lifecycle status of an order.
type OrderStatus string

const (
	OrderNew        OrderStatus = "new"
	OrderProcessing OrderStatus = "processing"
	OrderPaid       OrderStatus = "paid"
	OrderCanceled   OrderStatus = "canceled"
	OrderCorrupted  OrderStatus = "corrupted"
)

// IsTerminal reports whether no transition leaves the status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderPaid || s == OrderCanceled || s == OrderCorrupted
}

// IsInFlight reports whether the order is still awaiting payment.
func (s OrderStatus) IsInFlight() bool {
	return s == OrderNew || s == OrderProcessing
}

// Dirty fields of an order. Status and price share FieldStatus and
// FieldPrice with client services.
const (
	FieldMembers             = "client_services"
	FieldDiscountID          = "discount_id"
	FieldNotes               = "notes"
	FieldGatewaySubscription = "gateway_subscription_id"
	FieldNotifiedAt          = "notified_at"
	FieldChargeAttempt       = "charge_attempt"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderNew:        {OrderProcessing, OrderCanceled, OrderCorrupted},
	OrderProcessing: {OrderPaid, OrderCanceled, OrderCorrupted},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to OrderStatus) bool {
	return slices.Contains(orderTransitions[from], to)
}

// OrderState is the persisted shape of an Order.
type OrderState struct {
	ID                    string
	ClientID              string
	Status                OrderStatus
	Price                 Money
	ClientServiceIDs      []string
	DiscountID            *string
	Notes                 map[string]string
	GatewaySubscriptionID string
	ChargeAttemptID       string
	ChargeStartedAt       *time.Time
	NotifiedAt            *time.Time
	PaidAt                *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Order groups client services into one payable amount.
type Order struct {
	state   OrderState
	changes *ChangeTracker
	events  []DomainEvent
}

// NewOrder creates an order over the given client services. The price
// starts at zero in the base currency until the aggregator runs.
func NewOrder(id, clientID string, clientServiceIDs []string, base Currency, now time.Time) (*Order, error) {
	if len(clientServiceIDs) == 0 {
		return nil, ErrEmptyOrder
	}
	ids := slices.Clone(clientServiceIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	o := &Order{
		state: OrderState{
			ID:               id,
			ClientID:         clientID,
			Status:           OrderNew,
			Price:            Zero(base),
			ClientServiceIDs: ids,
			Notes:            map[string]string{},
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		changes: NewChangeTracker(),
	}
	o.changes.MarkDirty(FieldNew)
	o.recordEvent(&OrderCreatedEvent{
		OrderID:          id,
		ClientID:         clientID,
		ClientServiceIDs: slices.Clone(ids),
		CreatedAt:        now,
	})
	return o, nil
}

// ReconstructOrder rebuilds an order from storage.
func ReconstructOrder(s OrderState) *Order {
	return &Order{state: cloneOrderState(s), changes: NewChangeTracker()}
}

// State returns a copy of the persisted shape.
func (o *Order) State() OrderState {
	return cloneOrderState(o.state)
}

func cloneOrderState(s OrderState) OrderState {
	s.ClientServiceIDs = slices.Clone(s.ClientServiceIDs)
	notes := make(map[string]string, len(s.Notes))
	for k, v := range s.Notes {
		notes[k] = v
	}
	s.Notes = notes
	if s.DiscountID != nil {
		id := *s.DiscountID
		s.DiscountID = &id
	}
	s.NotifiedAt = copyTime(s.NotifiedAt)
	s.ChargeStartedAt = copyTime(s.ChargeStartedAt)
	s.PaidAt = copyTime(s.PaidAt)
	return s
}

// Getters
func (o *Order) ID() string                    { return o.state.ID }
func (o *Order) ClientID() string              { return o.state.ClientID }
func (o *Order) Status() OrderStatus           { return o.state.Status }
func (o *Order) Price() Money                  { return o.state.Price }
func (o *Order) ClientServiceIDs() []string    { return slices.Clone(o.state.ClientServiceIDs) }
func (o *Order) GatewaySubscriptionID() string { return o.state.GatewaySubscriptionID }
func (o *Order) NotifiedAt() *time.Time        { return copyTime(o.state.NotifiedAt) }
func (o *Order) ChargeAttemptID() string       { return o.state.ChargeAttemptID }
func (o *Order) CreatedAt() time.Time          { return o.state.CreatedAt }
func (o *Order) Changes() *ChangeTracker       { return o.changes }
func (o *Order) DomainEvents() []DomainEvent   { return o.events }

// Notes returns a copy of the localized notes.
func (o *Order) Notes() map[string]string {
	return cloneOrderState(OrderState{Notes: o.state.Notes}).Notes
}

// DiscountID returns the client discount recorded on the order, if any.
func (o *Order) DiscountID() (string, bool) {
	if o.state.DiscountID == nil {
		return "", false
	}
	return *o.state.DiscountID, true
}

// HasDiscount reports whether discount id was already applied to this order.
func (o *Order) HasDiscount(id string) bool {
	return o.state.DiscountID != nil && *o.state.DiscountID == id
}

// Contains reports whether the order includes the client service.
func (o *Order) Contains(clientServiceID string) bool {
	return slices.Contains(o.state.ClientServiceIDs, clientServiceID)
}

// IsTerminal reports whether the order is frozen.
func (o *Order) IsTerminal() bool {
	return o.state.Status.IsTerminal()
}

// AddClientService adds a member to a non-terminal order.
func (o *Order) AddClientService(id string, now time.Time) error {
	if o.IsTerminal() {
		return ErrOrderFrozen
	}
	if o.Contains(id) {
		return nil
	}
	o.state.ClientServiceIDs = append(o.state.ClientServiceIDs, id)
	slices.Sort(o.state.ClientServiceIDs)
	o.touch(now, FieldMembers)
	return nil
}

// RemoveClientService drops a member from a non-terminal order.
func (o *Order) RemoveClientService(id string, now time.Time) error {
	if o.IsTerminal() {
		return ErrOrderFrozen
	}
	idx := slices.Index(o.state.ClientServiceIDs, id)
	if idx < 0 {
		return nil
	}
	o.state.ClientServiceIDs = slices.Delete(o.state.ClientServiceIDs, idx, idx+1)
	o.touch(now, FieldMembers)
	return nil
}

// SetPrice stores the aggregated price and the discount that produced it.
func (o *Order) SetPrice(price Money, discountID *string, now time.Time) error {
	if o.IsTerminal() {
		return ErrOrderFrozen
	}
	o.state.Price = price
	o.state.DiscountID = discountID
	o.touch(now, FieldPrice, FieldDiscountID)
	return nil
}

// HasNotes reports whether localized notes were populated.
func (o *Order) HasNotes() bool {
	return len(o.state.Notes) > 0
}

// SetNotes populates localized notes once; later calls are ignored.
func (o *Order) SetNotes(notes map[string]string, now time.Time) {
	if o.HasNotes() || len(notes) == 0 {
		return
	}
	o.state.Notes = cloneOrderState(OrderState{Notes: notes}).Notes
	o.touch(now, FieldNotes)
}

// SetGatewaySubscription records the gateway subscription paying this order.
func (o *Order) SetGatewaySubscription(id string, now time.Time) {
	o.state.GatewaySubscriptionID = id
	o.touch(now, FieldGatewaySubscription)
}

// MarkNotified records that the expiry notification went out.
func (o *Order) MarkNotified(now time.Time) {
	o.state.NotifiedAt = &now
	o.touch(now, FieldNotifiedAt)
}

// BeginCharge opens a charge attempt, moving a new order into processing.
// A processing order whose attempt started less than lease ago is being
// charged by another caller and is rejected with ErrChargeInProgress. An
// expired attempt is reopened under the same attempt ID, which the gateway
// uses as its idempotency key.
func (o *Order) BeginCharge(attemptID string, lease time.Duration, now time.Time) error {
	switch o.state.Status {
	case OrderNew:
		if err := o.transition(OrderProcessing, now); err != nil {
			return err
		}
	case OrderProcessing:
		if started := o.state.ChargeStartedAt; started != nil && now.Before(started.Add(lease)) {
			return ErrChargeInProgress
		}
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.state.Status, OrderProcessing)
	}
	if o.state.ChargeAttemptID == "" {
		o.state.ChargeAttemptID = attemptID
	}
	o.state.ChargeStartedAt = &now
	o.touch(now, FieldChargeAttempt)
	return nil
}

// AbortCharge closes a failed attempt. The next attempt gets a new ID.
func (o *Order) AbortCharge(now time.Time) {
	if o.state.ChargeAttemptID == "" && o.state.ChargeStartedAt == nil {
		return
	}
	o.state.ChargeAttemptID = ""
	o.state.ChargeStartedAt = nil
	o.touch(now, FieldChargeAttempt)
}

// MarkPaid completes the order.
func (o *Order) MarkPaid(now time.Time) error {
	if err := o.transition(OrderPaid, now); err != nil {
		return err
	}
	o.state.PaidAt = &now
	o.state.ChargeStartedAt = nil
	o.touch(now, FieldChargeAttempt)
	o.recordEvent(NewNotification(o.state.ClientID, o.state.ID, TemplateOrderPaid, now))
	return nil
}

// Cancel cancels the order manually.
func (o *Order) Cancel(now time.Time) error {
	return o.transition(OrderCanceled, now)
}

// MarkCorrupted freezes the order after a currency conflict and forces its
// price to zero in the base currency.
func (o *Order) MarkCorrupted(base Currency, currencies []string, now time.Time) error {
	if err := o.transition(OrderCorrupted, now); err != nil {
		return err
	}
	o.state.Price = Zero(base)
	o.state.DiscountID = nil
	o.changes.MarkDirty(FieldPrice, FieldDiscountID)
	o.recordEvent(&OrderCorruptedEvent{
		OrderID:    o.state.ID,
		ClientID:   o.state.ClientID,
		Currencies: currencies,
		At:         now,
	})
	return nil
}

func (o *Order) transition(to OrderStatus, now time.Time) error {
	from := o.state.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	o.state.Status = to
	o.touch(now, FieldStatus)
	o.recordEvent(&OrderStatusChangedEvent{
		OrderID:   o.state.ID,
		ClientID:  o.state.ClientID,
		From:      string(from),
		To:        string(to),
		ChangedAt: now,
	})
	return nil
}

// RecordNotification queues a templated notification for the client.
func (o *Order) RecordNotification(template string, now time.Time) {
	o.recordEvent(NewNotification(o.state.ClientID, o.state.ID, template, now))
}

func (o *Order) touch(now time.Time, fields ...string) {
	o.state.UpdatedAt = now
	o.changes.MarkDirty(fields...)
}

func (o *Order) recordEvent(event DomainEvent) {
	o.events = append(o.events, event)
}

// ClearEvents clears all recorded domain events (called after publishing).
func (o *Order) ClearEvents() {
	o.events = nil
}
