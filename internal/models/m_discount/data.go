package m_discount

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the discounts table.
type Data struct {
	DiscountID   string           `spanner:"discount_id"`
	Code         string           `spanner:"code"`
	Title        string           `spanner:"title"`
	Percentage   big.Rat          `spanner:"percentage"`
	StartDate    spanner.NullTime `spanner:"start_date"`
	EndDate      spanner.NullTime `spanner:"end_date"`
	NumberOfUses int64            `spanner:"number_of_uses"`
	IsEnabled    bool             `spanner:"is_enabled"`
	CreatedAt    time.Time        `spanner:"created_at"`
	UpdatedAt    time.Time        `spanner:"updated_at"`
}
