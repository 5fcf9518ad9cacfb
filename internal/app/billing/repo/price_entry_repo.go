package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/models/m_price_entry"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
	"github.com/light-bringer/tariff-billing/internal/pkg/query"
)

// PriceEntryRepo implements PriceEntryRepository for Spanner.
type PriceEntryRepo struct {
	committer *committer.Committer
	model     *m_price_entry.Model
}

// NewPriceEntryRepo creates a new PriceEntryRepo.
func NewPriceEntryRepo(c *committer.Committer) contracts.PriceEntryRepository {
	return &PriceEntryRepo{committer: c, model: m_price_entry.NewModel()}
}

// GetByID retrieves a price entry by ID.
func (r *PriceEntryRepo) GetByID(ctx context.Context, id string) (*domain.PriceEntry, error) {
	row, err := r.committer.Reader(ctx).ReadRow(ctx, m_price_entry.TableName, spanner.Key{id}, m_price_entry.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrPriceEntryNotFound
		}
		return nil, fmt.Errorf("failed to read price entry: %w", err)
	}
	return decodePriceEntry(row)
}

// ListByService returns the full price table of a service.
func (r *PriceEntryRepo) ListByService(ctx context.Context, serviceID string) ([]*domain.PriceEntry, error) {
	stmt := query.From(m_price_entry.TableName).
		Select(m_price_entry.Columns...).
		Where(query.Eq(m_price_entry.ServiceID, serviceID)).
		OrderBy(m_price_entry.PeriodFrom, query.Asc).
		Build()
	return readAll(ctx, r.committer.Reader(ctx), stmt, decodePriceEntry)
}

// Save writes the entry.
func (r *PriceEntryRepo) Save(ctx context.Context, e *domain.PriceEntry) error {
	mut, err := r.model.UpsertMut(&m_price_entry.Data{
		PriceEntryID:  e.ID,
		ServiceID:     e.ServiceID,
		CountryID:     nullString(e.CountryID),
		PeriodFrom:    nullInt(e.PeriodFrom),
		PeriodTo:      nullInt(e.PeriodTo),
		PriceAmount:   ratOf(e.Price.Amount()),
		PriceCurrency: e.Price.Currency().String(),
		ForUnit:       e.ForUnit,
		IsEnabled:     e.IsEnabled,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to build price entry mutation: %w", err)
	}
	return r.committer.Buffer(ctx, mut)
}

func decodePriceEntry(row *spanner.Row) (*domain.PriceEntry, error) {
	var data m_price_entry.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse price entry: %w", err)
	}
	price, err := moneyOf(&data.PriceAmount, data.PriceCurrency)
	if err != nil {
		return nil, fmt.Errorf("price entry %s: %w", data.PriceEntryID, err)
	}
	return &domain.PriceEntry{
		ID:         data.PriceEntryID,
		ServiceID:  data.ServiceID,
		CountryID:  stringPtr(data.CountryID),
		PeriodFrom: intPtr(data.PeriodFrom),
		PeriodTo:   intPtr(data.PeriodTo),
		Price:      price,
		ForUnit:    data.ForUnit,
		IsEnabled:  data.IsEnabled,
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
	}, nil
}
