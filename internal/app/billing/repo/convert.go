package repo

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
)

// numericScale is the fractional precision of the Spanner NUMERIC type.
const numericScale = 9

func ratOf(d decimal.Decimal) big.Rat {
	return *d.Rat()
}

func decimalOf(r *big.Rat) (decimal.Decimal, error) {
	return decimal.NewFromString(r.FloatString(numericScale))
}

func moneyOf(amount *big.Rat, currency string) (domain.Money, error) {
	d, err := decimalOf(amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("invalid amount: %w", err)
	}
	return domain.NewMoney(d, domain.Currency(currency))
}

func nullString(p *string) spanner.NullString {
	if p == nil {
		return spanner.NullString{}
	}
	return spanner.NullString{StringVal: *p, Valid: true}
}

func stringPtr(n spanner.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.StringVal
	return &v
}

func nullInt(p *int) spanner.NullInt64 {
	if p == nil {
		return spanner.NullInt64{}
	}
	return spanner.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n spanner.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullTime(p *time.Time) spanner.NullTime {
	if p == nil {
		return spanner.NullTime{}
	}
	return spanner.NullTime{Time: *p, Valid: true}
}

func timePtr(n spanner.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

// readAll runs stmt and decodes every row with decode.
func readAll[T any](ctx context.Context, r committer.Reader, stmt spanner.Statement, decode func(*spanner.Row) (T, error)) ([]T, error) {
	iter := r.Query(ctx, stmt)
	defer iter.Stop()

	var out []T
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}
