package m_price_entry

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the price_entries table.
type Data struct {
	PriceEntryID  string             `spanner:"price_entry_id"`
	ServiceID     string             `spanner:"service_id"`
	CountryID     spanner.NullString `spanner:"country_id"`
	PeriodFrom    spanner.NullInt64  `spanner:"period_from"`
	PeriodTo      spanner.NullInt64  `spanner:"period_to"`
	PriceAmount   big.Rat            `spanner:"price_amount"`
	PriceCurrency string             `spanner:"price_currency"`
	ForUnit       bool               `spanner:"for_unit"`
	IsEnabled     bool               `spanner:"is_enabled"`
	CreatedAt     time.Time          `spanner:"created_at"`
	UpdatedAt     time.Time          `spanner:"updated_at"`
}
