package m_service

import "time"

// Data represents the database model for the services table.
type Data struct {
	ServiceID   string    `spanner:"service_id"`
	Title       string    `spanner:"title"`
	ServiceType string    `spanner:"service_type"`
	Period      int64     `spanner:"period"`
	PeriodUnit  string    `spanner:"period_unit"`
	IsDefault   bool      `spanner:"is_default"`
	IsEnabled   bool      `spanner:"is_enabled"`
	IsTrial     bool      `spanner:"is_trial"`
	CreatedAt   time.Time `spanner:"created_at"`
	UpdatedAt   time.Time `spanner:"updated_at"`
}
