package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/models/m_client_discount"
	"github.com/light-bringer/tariff-billing/internal/models/m_discount"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
	"github.com/light-bringer/tariff-billing/internal/pkg/query"
)

// DiscountRepo implements DiscountRepository for Spanner.
type DiscountRepo struct {
	committer *committer.Committer
	model     *m_discount.Model
}

// NewDiscountRepo creates a new DiscountRepo.
func NewDiscountRepo(c *committer.Committer) contracts.DiscountRepository {
	return &DiscountRepo{committer: c, model: m_discount.NewModel()}
}

// GetByID retrieves a discount template by ID.
func (r *DiscountRepo) GetByID(ctx context.Context, id string) (*domain.Discount, error) {
	row, err := r.committer.Reader(ctx).ReadRow(ctx, m_discount.TableName, spanner.Key{id}, m_discount.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("failed to read discount: %w", err)
	}
	return decodeDiscount(row)
}

// GetByCode retrieves a discount template by its code.
func (r *DiscountRepo) GetByCode(ctx context.Context, code string) (*domain.Discount, error) {
	stmt := query.From(m_discount.TableName).
		Select(m_discount.Columns...).
		Where(query.Eq(m_discount.Code, code)).
		Limit(1).
		Build()
	found, err := readAll(ctx, r.committer.Reader(ctx), stmt, decodeDiscount)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, domain.ErrDiscountNotFound
	}
	return found[0], nil
}

// Save writes the template.
func (r *DiscountRepo) Save(ctx context.Context, d *domain.Discount) error {
	mut, err := r.model.UpsertMut(&m_discount.Data{
		DiscountID:   d.ID,
		Code:         d.Code,
		Title:        d.Title,
		Percentage:   ratOf(d.Percentage),
		StartDate:    nullTime(d.StartDate),
		EndDate:      nullTime(d.EndDate),
		NumberOfUses: int64(d.NumberOfUses),
		IsEnabled:    d.IsEnabled,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to build discount mutation: %w", err)
	}
	return r.committer.Buffer(ctx, mut)
}

func decodeDiscount(row *spanner.Row) (*domain.Discount, error) {
	var data m_discount.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse discount: %w", err)
	}
	pct, err := decimalOf(&data.Percentage)
	if err != nil {
		return nil, fmt.Errorf("discount %s: %w", data.DiscountID, err)
	}
	return &domain.Discount{
		ID:           data.DiscountID,
		Code:         data.Code,
		Title:        data.Title,
		Percentage:   pct,
		StartDate:    timePtr(data.StartDate),
		EndDate:      timePtr(data.EndDate),
		NumberOfUses: int(data.NumberOfUses),
		IsEnabled:    data.IsEnabled,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}, nil
}

// ClientDiscountRepo implements ClientDiscountRepository for Spanner.
type ClientDiscountRepo struct {
	committer *committer.Committer
	model     *m_client_discount.Model
}

// NewClientDiscountRepo creates a new ClientDiscountRepo.
func NewClientDiscountRepo(c *committer.Committer) contracts.ClientDiscountRepository {
	return &ClientDiscountRepo{committer: c, model: m_client_discount.NewModel()}
}

// GetByClient returns the client's snapshot, or nil when none is assigned.
func (r *ClientDiscountRepo) GetByClient(ctx context.Context, clientID string) (*domain.ClientDiscount, error) {
	stmt := query.From(m_client_discount.TableName).
		Select(m_client_discount.Columns...).
		Where(query.Eq(m_client_discount.ClientID, clientID)).
		Limit(1).
		Build()
	found, err := readAll(ctx, r.committer.Reader(ctx), stmt, decodeClientDiscount)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// Save writes a new snapshot whole and an existing one by its usage counter.
func (r *ClientDiscountRepo) Save(ctx context.Context, cd *domain.ClientDiscount) error {
	changes := cd.Changes()
	s := cd.State()

	switch {
	case changes.Dirty(domain.FieldNew):
		mut, err := r.model.UpsertMut(&m_client_discount.Data{
			ClientDiscountID: s.ID,
			ClientID:         s.ClientID,
			DiscountID:       s.DiscountID,
			Code:             s.Code,
			Title:            s.Title,
			Percentage:       ratOf(s.Percentage),
			StartDate:        nullTime(s.StartDate),
			EndDate:          nullTime(s.EndDate),
			NumberOfUses:     int64(s.NumberOfUses),
			UsageCount:       int64(s.UsageCount),
			CreatedAt:        s.CreatedAt,
			UpdatedAt:        s.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to build client discount mutation: %w", err)
		}
		return r.committer.Buffer(ctx, mut)
	case changes.Dirty(domain.FieldUsageCount):
		return r.committer.Buffer(ctx, r.model.UsageMut(s.ID, int64(s.UsageCount), s.UpdatedAt))
	}
	return nil
}

// DeleteByClient removes the client's snapshot if one exists.
func (r *ClientDiscountRepo) DeleteByClient(ctx context.Context, clientID string) error {
	cd, err := r.GetByClient(ctx, clientID)
	if err != nil || cd == nil {
		return err
	}
	return r.committer.Buffer(ctx, r.model.DeleteMut(cd.ID()))
}

func decodeClientDiscount(row *spanner.Row) (*domain.ClientDiscount, error) {
	var data m_client_discount.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse client discount: %w", err)
	}
	pct, err := decimalOf(&data.Percentage)
	if err != nil {
		return nil, fmt.Errorf("client discount %s: %w", data.ClientDiscountID, err)
	}
	return domain.ReconstructClientDiscount(domain.ClientDiscountState{
		ID:           data.ClientDiscountID,
		ClientID:     data.ClientID,
		DiscountID:   data.DiscountID,
		Code:         data.Code,
		Title:        data.Title,
		Percentage:   pct,
		StartDate:    timePtr(data.StartDate),
		EndDate:      timePtr(data.EndDate),
		NumberOfUses: int(data.NumberOfUses),
		UsageCount:   int(data.UsageCount),
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}), nil
}
