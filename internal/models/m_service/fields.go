package m_service

// Field name constants for the services table.
const (
	TableName = "services"

	ServiceID   = "service_id"
	Title       = "title"
	ServiceType = "service_type"
	Period      = "period"
	PeriodUnit  = "period_unit"
	IsDefault   = "is_default"
	IsEnabled   = "is_enabled"
	IsTrial     = "is_trial"
	CreatedAt   = "created_at"
	UpdatedAt   = "updated_at"
)

// Columns lists every column in table order.
var Columns = []string{
	ServiceID, Title, ServiceType, Period, PeriodUnit,
	IsDefault, IsEnabled, IsTrial, CreatedAt, UpdatedAt,
}
