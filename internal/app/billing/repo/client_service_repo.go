package repo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/models/m_client_service"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
	"github.com/light-bringer/tariff-billing/internal/pkg/query"
)

// ClientServiceRepo implements ClientServiceRepository for Spanner.
type ClientServiceRepo struct {
	committer *committer.Committer
	model     *m_client_service.Model
}

// NewClientServiceRepo creates a new ClientServiceRepo.
func NewClientServiceRepo(c *committer.Committer) contracts.ClientServiceRepository {
	return &ClientServiceRepo{committer: c, model: m_client_service.NewModel()}
}

// GetByID retrieves a client service by ID.
func (r *ClientServiceRepo) GetByID(ctx context.Context, id string) (*domain.ClientService, error) {
	row, err := r.committer.Reader(ctx).ReadRow(ctx, m_client_service.TableName, spanner.Key{id}, m_client_service.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrClientServiceNotFound
		}
		return nil, fmt.Errorf("failed to read client service: %w", err)
	}
	return decodeClientService(row)
}

// ListByIDs returns the client services with the given IDs. Unknown IDs are skipped.
func (r *ClientServiceRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.ClientService, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, query.In(m_client_service.ClientServiceID, ids))
}

// ListByClient returns every service of a client.
func (r *ClientServiceRepo) ListByClient(ctx context.Context, clientID string) ([]*domain.ClientService, error) {
	return r.list(ctx, query.Eq(m_client_service.ClientID, clientID))
}

// ListEnding returns enabled active services ending at or before until.
func (r *ClientServiceRepo) ListEnding(ctx context.Context, until time.Time) ([]*domain.ClientService, error) {
	return r.list(ctx,
		query.Eq(m_client_service.Status, string(domain.ClientServiceActive)),
		query.Eq(m_client_service.IsEnabled, true),
		query.Lte(m_client_service.EndAt, until),
	)
}

// ListStarting returns enabled next services beginning at or before until.
func (r *ClientServiceRepo) ListStarting(ctx context.Context, until time.Time) ([]*domain.ClientService, error) {
	return r.list(ctx,
		query.Eq(m_client_service.Status, string(domain.ClientServiceNext)),
		query.Eq(m_client_service.IsEnabled, true),
		query.Lte(m_client_service.BeginAt, until),
	)
}

func (r *ClientServiceRepo) list(ctx context.Context, conds ...query.Condition) ([]*domain.ClientService, error) {
	stmt := query.From(m_client_service.TableName).
		Select(m_client_service.Columns...).
		Where(conds...).
		OrderBy(m_client_service.CreatedAt, query.Asc).
		ThenBy(m_client_service.ClientServiceID, query.Asc).
		Build()
	return readAll(ctx, r.committer.Reader(ctx), stmt, decodeClientService)
}

// Save writes a new client service whole and an existing one by dirty fields.
func (r *ClientServiceRepo) Save(ctx context.Context, cs *domain.ClientService) error {
	changes := cs.Changes()
	if !changes.HasChanges() {
		return nil
	}
	s := cs.State()

	if changes.Dirty(domain.FieldNew) {
		mut, err := r.model.UpsertMut(clientServiceData(s))
		if err != nil {
			return fmt.Errorf("failed to build client service mutation: %w", err)
		}
		return r.committer.Buffer(ctx, mut)
	}

	updates := make(map[string]interface{})
	if changes.Dirty(domain.FieldServiceID) {
		updates[m_client_service.ServiceID] = s.ServiceID
	}
	if changes.Dirty(domain.FieldQuantity) {
		updates[m_client_service.Quantity] = int64(s.Quantity)
	}
	if changes.Dirty(domain.FieldStatus) {
		updates[m_client_service.Status] = string(s.Status)
	}
	if changes.Dirty(domain.FieldEnabled) {
		updates[m_client_service.IsEnabled] = s.IsEnabled
	}
	if changes.Dirty(domain.FieldPaid) {
		updates[m_client_service.IsPaid] = s.IsPaid
	}
	if changes.Dirty(domain.FieldBegin) {
		updates[m_client_service.BeginAt] = s.Begin
	}
	if changes.Dirty(domain.FieldEnd) {
		updates[m_client_service.EndAt] = s.End
	}
	if changes.Dirty(domain.FieldPrice) {
		amount, currency := priceColumns(s.Price)
		updates[m_client_service.PriceAmount] = amount
		updates[m_client_service.PriceCurrency] = currency
	}
	if len(updates) == 0 {
		return nil
	}
	updates[m_client_service.UpdatedAt] = s.UpdatedAt

	return r.committer.Buffer(ctx, r.model.UpdateMut(s.ID, updates))
}

func priceColumns(p *domain.Money) (spanner.NullNumeric, spanner.NullString) {
	if p == nil {
		return spanner.NullNumeric{}, spanner.NullString{}
	}
	return spanner.NullNumeric{Numeric: ratOf(p.Amount()), Valid: true},
		spanner.NullString{StringVal: p.Currency().String(), Valid: true}
}

func clientServiceData(s domain.ClientServiceState) *m_client_service.Data {
	amount, currency := priceColumns(s.Price)
	return &m_client_service.Data{
		ClientServiceID: s.ID,
		ClientID:        s.ClientID,
		ServiceID:       s.ServiceID,
		ServiceType:     string(s.ServiceType),
		Quantity:        int64(s.Quantity),
		Status:          string(s.Status),
		IsEnabled:       s.IsEnabled,
		IsPaid:          s.IsPaid,
		BeginAt:         s.Begin,
		EndAt:           s.End,
		PriceAmount:     amount,
		PriceCurrency:   currency,
		CountryID:       s.CountryID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func decodeClientService(row *spanner.Row) (*domain.ClientService, error) {
	var data m_client_service.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse client service: %w", err)
	}

	var price *domain.Money
	if data.PriceAmount.Valid && data.PriceCurrency.Valid {
		m, err := moneyOf(&data.PriceAmount.Numeric, data.PriceCurrency.StringVal)
		if err != nil {
			return nil, fmt.Errorf("client service %s: %w", data.ClientServiceID, err)
		}
		price = &m
	}

	return domain.ReconstructClientService(domain.ClientServiceState{
		ID:          data.ClientServiceID,
		ClientID:    data.ClientID,
		ServiceID:   data.ServiceID,
		ServiceType: domain.ServiceType(data.ServiceType),
		Quantity:    int(data.Quantity),
		Status:      domain.ClientServiceStatus(data.Status),
		IsEnabled:   data.IsEnabled,
		IsPaid:      data.IsPaid,
		Begin:       data.BeginAt,
		End:         data.EndAt,
		Price:       price,
		CountryID:   data.CountryID,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}), nil
}
