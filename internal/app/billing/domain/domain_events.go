package domain

import "time"

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// Notification templates. The core decides that and what to notify;
// delivery belongs to whoever consumes the outbox.
const (
	TemplateOrderPaid        = "order_paid"
	TemplateOrderWillExpire  = "order_will_expire"
	TemplateServicesDisabled = "services_disabled"
	TemplateOrderCreated     = "order_created"
)

// ClientServiceCreatedEvent is emitted when a client subscribes to a service.
type ClientServiceCreatedEvent struct {
	ClientServiceID string
	ClientID        string
	ServiceID       string
	Status          string
	Begin           time.Time
	End             time.Time
}

func (e *ClientServiceCreatedEvent) EventType() string   { return "client_service.created" }
func (e *ClientServiceCreatedEvent) AggregateID() string { return e.ClientServiceID }

// ClientServiceActivatedEvent is emitted when a pending service becomes active.
type ClientServiceActivatedEvent struct {
	ClientServiceID string
	ClientID        string
	ActivatedAt     time.Time
}

func (e *ClientServiceActivatedEvent) EventType() string   { return "client_service.activated" }
func (e *ClientServiceActivatedEvent) AggregateID() string { return e.ClientServiceID }

// ClientServiceRolledEvent is emitted when a service moves into its next period.
type ClientServiceRolledEvent struct {
	ClientServiceID string
	ClientID        string
	ServiceID       string
	Begin           time.Time
	End             time.Time
}

func (e *ClientServiceRolledEvent) EventType() string   { return "client_service.rolled" }
func (e *ClientServiceRolledEvent) AggregateID() string { return e.ClientServiceID }

// ClientServiceDisabledEvent is emitted when a service stops being billable.
type ClientServiceDisabledEvent struct {
	ClientServiceID string
	ClientID        string
	DisabledAt      time.Time
}

func (e *ClientServiceDisabledEvent) EventType() string   { return "client_service.disabled" }
func (e *ClientServiceDisabledEvent) AggregateID() string { return e.ClientServiceID }

// OrderCreatedEvent is emitted when an order is created.
type OrderCreatedEvent struct {
	OrderID          string
	ClientID         string
	ClientServiceIDs []string
	CreatedAt        time.Time
}

func (e *OrderCreatedEvent) EventType() string   { return "order.created" }
func (e *OrderCreatedEvent) AggregateID() string { return e.OrderID }

// OrderStatusChangedEvent is emitted on every status transition.
type OrderStatusChangedEvent struct {
	OrderID   string
	ClientID  string
	From      string
	To        string
	ChangedAt time.Time
}

func (e *OrderStatusChangedEvent) EventType() string   { return "order.status_changed" }
func (e *OrderStatusChangedEvent) AggregateID() string { return e.OrderID }

// OrderCorruptedEvent is emitted when member prices span several currencies.
type OrderCorruptedEvent struct {
	OrderID    string
	ClientID   string
	Currencies []string
	At         time.Time
}

func (e *OrderCorruptedEvent) EventType() string   { return "order.corrupted" }
func (e *OrderCorruptedEvent) AggregateID() string { return e.OrderID }

// DiscountUsedEvent is emitted when a client discount is consumed by an order.
type DiscountUsedEvent struct {
	ClientDiscountID string
	ClientID         string
	OrderID          string
	UsageCount       int
}

func (e *DiscountUsedEvent) EventType() string   { return "client_discount.used" }
func (e *DiscountUsedEvent) AggregateID() string { return e.ClientDiscountID }

// NotificationRequestedEvent asks the notification collaborator to send a
// templated message to a client.
type NotificationRequestedEvent struct {
	ClientID    string
	OrderID     string
	Template    string
	RequestedAt time.Time
}

func (e *NotificationRequestedEvent) EventType() string   { return "notification." + e.Template }
func (e *NotificationRequestedEvent) AggregateID() string { return e.ClientID }

// NewNotification builds a notification request.
func NewNotification(clientID, orderID, template string, at time.Time) *NotificationRequestedEvent {
	return &NotificationRequestedEvent{
		ClientID:    clientID,
		OrderID:     orderID,
		Template:    template,
		RequestedAt: at,
	}
}
