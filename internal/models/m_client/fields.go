package m_client

// Field name constants for the clients table.
const (
	TableName = "clients"

	ClientID   = "client_id"
	Name       = "name"
	Email      = "email"
	Language   = "language"
	CountryID  = "country_id"
	IsArchived = "is_archived"
	RoomLimit  = "room_limit"
	CreatedAt  = "created_at"
	UpdatedAt  = "updated_at"
)

// Columns lists every column in table order.
var Columns = []string{
	ClientID, Name, Email, Language, CountryID,
	IsArchived, RoomLimit, CreatedAt, UpdatedAt,
}
