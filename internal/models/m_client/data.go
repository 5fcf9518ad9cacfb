package m_client

import "time"

// Data represents the database model for the clients table.
type Data struct {
	ClientID   string    `spanner:"client_id"`
	Name       string    `spanner:"name"`
	Email      string    `spanner:"email"`
	Language   string    `spanner:"language"`
	CountryID  string    `spanner:"country_id"`
	IsArchived bool      `spanner:"is_archived"`
	RoomLimit  int64     `spanner:"room_limit"`
	CreatedAt  time.Time `spanner:"created_at"`
	UpdatedAt  time.Time `spanner:"updated_at"`
}
