package advance_billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
)

// Result summarizes one billing tick.
type Result struct {
	Clients   int
	Orders    int
	Rolled    int
	Skipped   int
	Failed    int
	Corrupted int
}

// Interactor rolls ending client services into their next period and
// bills them with one order per client.
type Interactor struct {
	repos      contracts.Repositories
	pricer     *shared.Pricer
	clock      clock.Clock
	logger     *zap.Logger
	beforeDays int
}

// NewInteractor creates a new advance billing interactor. beforeDays is the
// lookahead window for services about to end.
func NewInteractor(
	repos contracts.Repositories,
	pricer *shared.Pricer,
	clock clock.Clock,
	logger *zap.Logger,
	beforeDays int,
) *Interactor {
	return &Interactor{
		repos:      repos,
		pricer:     pricer,
		clock:      clock,
		logger:     logger,
		beforeDays: beforeDays,
	}
}

type clientOutcome struct {
	order     bool
	rolled    int
	skipped   int
	corrupted bool
}

// Execute processes every client with services ending inside the
// lookahead window. A failing client is logged and does not stop the batch.
func (i *Interactor) Execute(ctx context.Context) (*Result, error) {
	now := i.clock.Now()
	until := now.AddDate(0, 0, i.beforeDays)

	due, err := i.repos.ClientServices.ListEnding(ctx, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list ending services: %w", err)
	}

	var clientIDs []string
	seen := make(map[string]bool)
	for _, cs := range due {
		if !seen[cs.ClientID()] {
			seen[cs.ClientID()] = true
			clientIDs = append(clientIDs, cs.ClientID())
		}
	}

	res := &Result{}
	for _, clientID := range clientIDs {
		var out clientOutcome
		err := i.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			out, err = i.advanceClient(ctx, clientID, now, until)
			return err
		})
		if err != nil {
			res.Failed++
			i.logger.Error("advance billing failed for client",
				zap.String("client_id", clientID),
				zap.Error(err),
			)
			continue
		}
		res.Clients++
		res.Rolled += out.rolled
		res.Skipped += out.skipped
		if out.order {
			res.Orders++
		}
		if out.corrupted {
			res.Corrupted++
		}
	}

	i.logger.Info("billing cycle advanced",
		zap.Int("clients", res.Clients),
		zap.Int("orders", res.Orders),
		zap.Int("rolled", res.Rolled),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Int("corrupted", res.Corrupted),
	)
	return res, nil
}

// advanceClient re-reads the client's services inside the transaction so
// that a concurrent tick which already billed them finds nothing to do.
func (i *Interactor) advanceClient(ctx context.Context, clientID string, now, until time.Time) (clientOutcome, error) {
	var out clientOutcome

	client, err := i.repos.Clients.GetByID(ctx, clientID)
	if err != nil {
		return out, err
	}
	// Archived clients never renew, so none of their services roll.
	if client.IsArchived {
		return out, nil
	}

	services, err := i.repos.ClientServices.ListByClient(ctx, clientID)
	if err != nil {
		return out, err
	}
	billed, err := i.repos.Orders.ListBilledByClient(ctx, clientID)
	if err != nil {
		return out, err
	}
	catalog, err := i.repos.Services.List(ctx)
	if err != nil {
		return out, err
	}
	cd, err := i.repos.ClientDiscounts.GetByClient(ctx, clientID)
	if err != nil {
		return out, err
	}

	// covered holds members of unpaid orders; invoiced also counts paid and
	// corrupted ones, which a successor must never be billed again after.
	covered := make(map[string]bool)
	invoiced := make(map[string]bool)
	for _, o := range billed {
		for _, id := range o.ClientServiceIDs() {
			invoiced[id] = true
			if o.Status().IsInFlight() {
				covered[id] = true
			}
		}
	}
	byID := make(map[string]*domain.Service, len(catalog))
	for _, s := range catalog {
		byID[s.ID] = s
	}
	pending := make(map[domain.ServiceType]*domain.ClientService)
	for _, cs := range services {
		if cs.IsPending() {
			pending[cs.ServiceType()] = cs
		}
	}

	var members []*domain.ClientService
	for _, cs := range services {
		if !cs.IsCurrent() || cs.End().After(until) || covered[cs.ID()] {
			continue
		}
		svc, ok := byID[cs.ServiceID()]
		if !ok {
			out.skipped++
			i.logger.Warn("client service references unknown service",
				zap.String("client_service_id", cs.ID()),
				zap.String("service_id", cs.ServiceID()),
			)
			continue
		}
		if svc.IsOneOff() {
			continue
		}

		// A scheduled successor replaces the roll: it is billed instead
		// and takes over once activated.
		if next, ok := pending[cs.ServiceType()]; ok {
			if !next.IsPaid() && !invoiced[next.ID()] {
				members = append(members, next)
			}
			continue
		}

		replacement := svc
		if svc.IsTrial || !svc.IsEnabled {
			replacement, err = domain.PickDefault(cs.ServiceType(), catalog)
			if err != nil {
				out.skipped++
				i.logger.Warn("no replacement service, skipping roll",
					zap.String("client_id", clientID),
					zap.String("client_service_id", cs.ID()),
					zap.String("service_id", svc.ID),
					zap.Error(err),
				)
				continue
			}
		}
		if err := cs.RollForward(replacement, now); err != nil {
			return out, err
		}
		out.rolled++
		members = append(members, cs)
	}

	if len(members) == 0 {
		return out, nil
	}
	if err := i.pricer.PricePending(ctx, members, now); err != nil {
		return out, err
	}

	ids := make([]string, 0, len(members))
	for _, cs := range members {
		ids = append(ids, cs.ID())
	}
	order, err := domain.NewOrder(uuid.New().String(), clientID, ids, i.pricer.Aggregator().BaseCurrency(), now)
	if err != nil {
		return out, err
	}

	uow := shared.NewUnitOfWork(i.repos)
	uow.TrackClientServices(members...)
	rec, err := i.pricer.Recompute(uow, order, members, cd, now)
	if err != nil {
		return out, err
	}
	order.RecordNotification(domain.TemplateOrderCreated, now)

	if err := uow.Commit(ctx, now); err != nil {
		return out, err
	}
	out.order = true
	out.corrupted = rec.Corrupted
	return out, nil
}
