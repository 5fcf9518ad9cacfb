package m_client_discount

// Field name constants for the client_discounts table.
const (
	TableName = "client_discounts"

	// ByClientIndex is the unique index enforcing one snapshot per client.
	ByClientIndex = "uq_client_discounts_client"

	ClientDiscountID = "client_discount_id"
	ClientID         = "client_id"
	DiscountID       = "discount_id"
	Code             = "code"
	Title            = "title"
	Percentage       = "percentage"
	StartDate        = "start_date"
	EndDate          = "end_date"
	NumberOfUses     = "number_of_uses"
	UsageCount       = "usage_count"
	CreatedAt        = "created_at"
	UpdatedAt        = "updated_at"
)

// Columns lists every column in table order.
var Columns = []string{
	ClientDiscountID, ClientID, DiscountID, Code, Title, Percentage,
	StartDate, EndDate, NumberOfUses, UsageCount, CreatedAt, UpdatedAt,
}
