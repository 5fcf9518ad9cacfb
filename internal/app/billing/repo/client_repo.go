package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/models/m_client"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
)

// ClientRepo implements ClientRepository for Spanner.
type ClientRepo struct {
	committer *committer.Committer
	model     *m_client.Model
}

// NewClientRepo creates a new ClientRepo.
func NewClientRepo(c *committer.Committer) contracts.ClientRepository {
	return &ClientRepo{committer: c, model: m_client.NewModel()}
}

// GetByID retrieves a client by ID.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	row, err := r.committer.Reader(ctx).ReadRow(ctx, m_client.TableName, spanner.Key{id}, m_client.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to read client: %w", err)
	}

	var data m_client.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse client: %w", err)
	}
	return &domain.Client{
		ID:         data.ClientID,
		Name:       data.Name,
		Email:      data.Email,
		Language:   data.Language,
		CountryID:  data.CountryID,
		IsArchived: data.IsArchived,
		RoomLimit:  int(data.RoomLimit),
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
	}, nil
}

// Save writes the client.
func (r *ClientRepo) Save(ctx context.Context, c *domain.Client) error {
	mut, err := r.model.UpsertMut(&m_client.Data{
		ClientID:   c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Language:   c.Language,
		CountryID:  c.CountryID,
		IsArchived: c.IsArchived,
		RoomLimit:  int64(c.RoomLimit),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to build client mutation: %w", err)
	}
	return r.committer.Buffer(ctx, mut)
}
