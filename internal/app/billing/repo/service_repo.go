package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/models/m_service"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
	"github.com/light-bringer/tariff-billing/internal/pkg/query"
)

// ServiceRepo implements ServiceRepository for Spanner.
type ServiceRepo struct {
	committer *committer.Committer
	model     *m_service.Model
}

// NewServiceRepo creates a new ServiceRepo.
func NewServiceRepo(c *committer.Committer) contracts.ServiceRepository {
	return &ServiceRepo{committer: c, model: m_service.NewModel()}
}

// GetByID retrieves a service by ID.
func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	row, err := r.committer.Reader(ctx).ReadRow(ctx, m_service.TableName, spanner.Key{id}, m_service.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to read service: %w", err)
	}
	return decodeService(row)
}

// List returns the whole catalog.
func (r *ServiceRepo) List(ctx context.Context) ([]*domain.Service, error) {
	stmt := query.From(m_service.TableName).
		Select(m_service.Columns...).
		OrderBy(m_service.CreatedAt, query.Asc).
		ThenBy(m_service.ServiceID, query.Asc).
		Build()
	return readAll(ctx, r.committer.Reader(ctx), stmt, decodeService)
}

// ListByType returns the services of one type.
func (r *ServiceRepo) ListByType(ctx context.Context, t domain.ServiceType) ([]*domain.Service, error) {
	stmt := query.From(m_service.TableName).
		Select(m_service.Columns...).
		Where(query.Eq(m_service.ServiceType, string(t))).
		OrderBy(m_service.CreatedAt, query.Asc).
		ThenBy(m_service.ServiceID, query.Asc).
		Build()
	return readAll(ctx, r.committer.Reader(ctx), stmt, decodeService)
}

// Save writes the service.
func (r *ServiceRepo) Save(ctx context.Context, svc *domain.Service) error {
	mut, err := r.model.UpsertMut(&m_service.Data{
		ServiceID:   svc.ID,
		Title:       svc.Title,
		ServiceType: string(svc.Type),
		Period:      int64(svc.Period),
		PeriodUnit:  string(svc.PeriodUnit),
		IsDefault:   svc.IsDefault,
		IsEnabled:   svc.IsEnabled,
		IsTrial:     svc.IsTrial,
		CreatedAt:   svc.CreatedAt,
		UpdatedAt:   svc.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to build service mutation: %w", err)
	}
	return r.committer.Buffer(ctx, mut)
}

func decodeService(row *spanner.Row) (*domain.Service, error) {
	var data m_service.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse service: %w", err)
	}
	return &domain.Service{
		ID:         data.ServiceID,
		Title:      data.Title,
		Type:       domain.ServiceType(data.ServiceType),
		Period:     int(data.Period),
		PeriodUnit: domain.PeriodUnit(data.PeriodUnit),
		IsDefault:  data.IsDefault,
		IsEnabled:  data.IsEnabled,
		IsTrial:    data.IsTrial,
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
	}, nil
}
