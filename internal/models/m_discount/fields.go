package m_discount

// Field name constants for the discounts table.
const (
	TableName = "discounts"

	DiscountID   = "discount_id"
	Code         = "code"
	Title        = "title"
	Percentage   = "percentage"
	StartDate    = "start_date"
	EndDate      = "end_date"
	NumberOfUses = "number_of_uses"
	IsEnabled    = "is_enabled"
	CreatedAt    = "created_at"
	UpdatedAt    = "updated_at"
)

// Columns lists every column in table order.
var Columns = []string{
	DiscountID, Code, Title, Percentage, StartDate, EndDate,
	NumberOfUses, IsEnabled, CreatedAt, UpdatedAt,
}
