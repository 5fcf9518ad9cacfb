package m_order

// Field name constants for the orders table.
const (
	TableName = "orders"

	OrderID               = "order_id"
	ClientID              = "client_id"
	Status                = "status"
	PriceAmount           = "price_amount"
	PriceCurrency         = "price_currency"
	ClientDiscountID      = "client_discount_id"
	Notes                 = "notes"
	GatewaySubscriptionID = "gateway_subscription_id"
	ChargeAttemptID       = "charge_attempt_id"
	ChargeStartedAt       = "charge_started_at"
	NotifiedAt            = "notified_at"
	PaidAt                = "paid_at"
	CreatedAt             = "created_at"
	UpdatedAt             = "updated_at"
)

// Columns lists every column in table order.
var Columns = []string{
	OrderID, ClientID, Status, PriceAmount, PriceCurrency, ClientDiscountID,
	Notes, GatewaySubscriptionID, ChargeAttemptID, ChargeStartedAt,
	NotifiedAt, PaidAt, CreatedAt, UpdatedAt,
}

// Order status values stored in the status column.
const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusPaid       = "paid"
	StatusCorrupted  = "corrupted"
)

// InFlightStatuses are the statuses of orders still awaiting payment.
var InFlightStatuses = []string{StatusNew, StatusProcessing}

// BilledStatuses are every status except canceled.
var BilledStatuses = []string{StatusNew, StatusProcessing, StatusPaid, StatusCorrupted}
