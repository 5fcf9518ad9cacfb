package m_client_service

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the client_services table.
// A NULL price means the price is pending recomputation.
type Data struct {
	ClientServiceID string              `spanner:"client_service_id"`
	ClientID        string              `spanner:"client_id"`
	ServiceID       string              `spanner:"service_id"`
	ServiceType     string              `spanner:"service_type"`
	Quantity        int64               `spanner:"quantity"`
	Status          string              `spanner:"status"`
	IsEnabled       bool                `spanner:"is_enabled"`
	IsPaid          bool                `spanner:"is_paid"`
	BeginAt         time.Time           `spanner:"begin_at"`
	EndAt           time.Time           `spanner:"end_at"`
	PriceAmount     spanner.NullNumeric `spanner:"price_amount"`
	PriceCurrency   spanner.NullString  `spanner:"price_currency"`
	CountryID       string              `spanner:"country_id"`
	CreatedAt       time.Time           `spanner:"created_at"`
	UpdatedAt       time.Time           `spanner:"updated_at"`
}
