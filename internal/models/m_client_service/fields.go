package m_client_service

// Field name constants for the client_services table.
const (
	TableName = "client_services"

	ClientServiceID = "client_service_id"
	ClientID        = "client_id"
	ServiceID       = "service_id"
	ServiceType     = "service_type"
	Quantity        = "quantity"
	Status          = "status"
	IsEnabled       = "is_enabled"
	IsPaid          = "is_paid"
	BeginAt         = "begin_at"
	EndAt           = "end_at"
	PriceAmount     = "price_amount"
	PriceCurrency   = "price_currency"
	CountryID       = "country_id"
	CreatedAt       = "created_at"
	UpdatedAt       = "updated_at"
)

// Columns lists every column in table order.
var Columns = []string{
	ClientServiceID, ClientID, ServiceID, ServiceType, Quantity, Status,
	IsEnabled, IsPaid, BeginAt, EndAt, PriceAmount, PriceCurrency,
	CountryID, CreatedAt, UpdatedAt,
}
