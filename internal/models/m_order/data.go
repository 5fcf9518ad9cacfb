package m_order

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the orders table.
type Data struct {
	OrderID               string             `spanner:"order_id"`
	ClientID              string             `spanner:"client_id"`
	Status                string             `spanner:"status"`
	PriceAmount           big.Rat            `spanner:"price_amount"`
	PriceCurrency         string             `spanner:"price_currency"`
	ClientDiscountID      spanner.NullString `spanner:"client_discount_id"`
	Notes                 spanner.NullJSON   `spanner:"notes"`
	GatewaySubscriptionID spanner.NullString `spanner:"gateway_subscription_id"`
	ChargeAttemptID       spanner.NullString `spanner:"charge_attempt_id"`
	ChargeStartedAt       spanner.NullTime   `spanner:"charge_started_at"`
	NotifiedAt            spanner.NullTime   `spanner:"notified_at"`
	PaidAt                spanner.NullTime   `spanner:"paid_at"`
	CreatedAt             time.Time          `spanner:"created_at"`
	UpdatedAt             time.Time          `spanner:"updated_at"`
}
