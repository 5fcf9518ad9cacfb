package m_price_entry

// Field name constants for the price_entries table.
const (
	TableName = "price_entries"

	PriceEntryID  = "price_entry_id"
	ServiceID     = "service_id"
	CountryID     = "country_id"
	PeriodFrom    = "period_from"
	PeriodTo      = "period_to"
	PriceAmount   = "price_amount"
	PriceCurrency = "price_currency"
	ForUnit       = "for_unit"
	IsEnabled     = "is_enabled"
	CreatedAt     = "created_at"
	UpdatedAt     = "updated_at"
)

// Columns lists every column in table order.
var Columns = []string{
	PriceEntryID, ServiceID, CountryID, PeriodFrom, PeriodTo,
	PriceAmount, PriceCurrency, ForUnit, IsEnabled, CreatedAt, UpdatedAt,
}
