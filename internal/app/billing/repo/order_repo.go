package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/models/m_order"
	"github.com/light-bringer/tariff-billing/internal/models/m_order_client_service"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
	"github.com/light-bringer/tariff-billing/internal/pkg/query"
)

// OrderRepo implements OrderRepository for Spanner. Membership lives in
// the interleaved order_client_services table.
type OrderRepo struct {
	committer *committer.Committer
	model     *m_order.Model
	members   *m_order_client_service.Model
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(c *committer.Committer) contracts.OrderRepository {
	return &OrderRepo{
		committer: c,
		model:     m_order.NewModel(),
		members:   m_order_client_service.NewModel(),
	}
}

// GetByID retrieves an order with its membership.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row, err := r.committer.Reader(ctx).ReadRow(ctx, m_order.TableName, spanner.Key{id}, m_order.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to read order: %w", err)
	}
	var data m_order.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse order: %w", err)
	}

	members, err := r.loadMembers(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return orderFromData(&data, members[id])
}

// ListInFlight returns every new or processing order.
func (r *OrderRepo) ListInFlight(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, query.In(m_order.Status, m_order.InFlightStatuses))
}

// ListInFlightByClient returns the client's new or processing orders.
func (r *OrderRepo) ListInFlightByClient(ctx context.Context, clientID string) ([]*domain.Order, error) {
	return r.list(ctx,
		query.Eq(m_order.ClientID, clientID),
		query.In(m_order.Status, m_order.InFlightStatuses),
	)
}

// ListBilledByClient returns the client's orders that were not canceled.
func (r *OrderRepo) ListBilledByClient(ctx context.Context, clientID string) ([]*domain.Order, error) {
	return r.list(ctx,
		query.Eq(m_order.ClientID, clientID),
		query.In(m_order.Status, m_order.BilledStatuses),
	)
}

func (r *OrderRepo) list(ctx context.Context, conds ...query.Condition) ([]*domain.Order, error) {
	stmt := query.From(m_order.TableName).
		Select(m_order.Columns...).
		Where(conds...).
		OrderBy(m_order.CreatedAt, query.Asc).
		ThenBy(m_order.OrderID, query.Asc).
		Build()

	rows, err := readAll(ctx, r.committer.Reader(ctx), stmt, func(row *spanner.Row) (*m_order.Data, error) {
		var data m_order.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse order: %w", err)
		}
		return &data, nil
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, d := range rows {
		ids = append(ids, d.OrderID)
	}
	members, err := r.loadMembers(ctx, ids)
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(rows))
	for _, d := range rows {
		o, err := orderFromData(d, members[d.OrderID])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *OrderRepo) loadMembers(ctx context.Context, orderIDs []string) (map[string][]string, error) {
	stmt := query.From(m_order_client_service.TableName).
		Select(m_order_client_service.Columns...).
		Where(query.In(m_order_client_service.OrderID, orderIDs)).
		Build()

	type pair struct{ orderID, csID string }
	pairs, err := readAll(ctx, r.committer.Reader(ctx), stmt, func(row *spanner.Row) (pair, error) {
		var p pair
		if err := row.Columns(&p.orderID, &p.csID); err != nil {
			return p, fmt.Errorf("failed to parse order membership: %w", err)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(orderIDs))
	for _, p := range pairs {
		out[p.orderID] = append(out[p.orderID], p.csID)
	}
	return out, nil
}

// Save writes the order row and, when it changed, its membership.
func (r *OrderRepo) Save(ctx context.Context, o *domain.Order) error {
	changes := o.Changes()
	if !changes.HasChanges() {
		return nil
	}
	s := o.State()

	data := &m_order.Data{
		OrderID:               s.ID,
		ClientID:              s.ClientID,
		Status:                string(s.Status),
		PriceAmount:           ratOf(s.Price.Amount()),
		PriceCurrency:         s.Price.Currency().String(),
		ClientDiscountID:      nullString(s.DiscountID),
		GatewaySubscriptionID: spanner.NullString{StringVal: s.GatewaySubscriptionID, Valid: s.GatewaySubscriptionID != ""},
		ChargeAttemptID:       spanner.NullString{StringVal: s.ChargeAttemptID, Valid: s.ChargeAttemptID != ""},
		ChargeStartedAt:       nullTime(s.ChargeStartedAt),
		NotifiedAt:            nullTime(s.NotifiedAt),
		PaidAt:                nullTime(s.PaidAt),
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
	if len(s.Notes) > 0 {
		data.Notes = spanner.NullJSON{Value: s.Notes, Valid: true}
	}

	mut, err := r.model.UpsertMut(data)
	if err != nil {
		return fmt.Errorf("failed to build order mutation: %w", err)
	}
	muts := []*spanner.Mutation{mut}
	if changes.Dirty(domain.FieldNew) || changes.Dirty(domain.FieldMembers) {
		muts = append(muts, r.members.ReplaceMuts(s.ID, s.ClientServiceIDs)...)
	}
	return r.committer.Buffer(ctx, muts...)
}

func orderFromData(data *m_order.Data, members []string) (*domain.Order, error) {
	price, err := moneyOf(&data.PriceAmount, data.PriceCurrency)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", data.OrderID, err)
	}

	notes := map[string]string{}
	if data.Notes.Valid {
		if raw, ok := data.Notes.Value.(map[string]interface{}); ok {
			for k, v := range raw {
				if s, ok := v.(string); ok {
					notes[k] = s
				}
			}
		}
	}

	return domain.ReconstructOrder(domain.OrderState{
		ID:                    data.OrderID,
		ClientID:              data.ClientID,
		Status:                domain.OrderStatus(data.Status),
		Price:                 price,
		ClientServiceIDs:      members,
		DiscountID:            stringPtr(data.ClientDiscountID),
		Notes:                 notes,
		GatewaySubscriptionID: data.GatewaySubscriptionID.StringVal,
		ChargeAttemptID:       data.ChargeAttemptID.StringVal,
		ChargeStartedAt:       timePtr(data.ChargeStartedAt),
		NotifiedAt:            timePtr(data.NotifiedAt),
		PaidAt:                timePtr(data.PaidAt),
		CreatedAt:             data.CreatedAt,
		UpdatedAt:             data.UpdatedAt,
	}), nil
}
