package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	billing "github.com/light-bringer/tariff-billing/internal/app/billing/domain/services"
	"github.com/light-bringer/tariff-billing/internal/app/billing/queries/get_order"
	"github.com/light-bringer/tariff-billing/internal/app/billing/queries/quote_price"
	"github.com/light-bringer/tariff-billing/internal/app/billing/repo"
	"github.com/light-bringer/tariff-billing/internal/app/billing/repo/memory"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/activate_pending"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/advance_billing"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/assign_discount"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/cancel_order"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/create_client"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/create_client_service"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/create_order"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/disable_unpaid_services"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/notify_expiring_orders"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/pay_order"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/recompute_order"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/relay_outbox"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/save_discount"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/save_price_entry"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/save_service"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/shared"
	"github.com/light-bringer/tariff-billing/internal/app/billing/usecases/update_client_service"
	"github.com/light-bringer/tariff-billing/internal/pkg/broker"
	"github.com/light-bringer/tariff-billing/internal/pkg/clock"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
	"github.com/light-bringer/tariff-billing/internal/pkg/config"
	"github.com/light-bringer/tariff-billing/internal/pkg/gateway"
	"github.com/light-bringer/tariff-billing/internal/pkg/notes"
	"github.com/light-bringer/tariff-billing/internal/pkg/rates"
	"github.com/light-bringer/tariff-billing/internal/pkg/scheduler"
	httptransport "github.com/light-bringer/tariff-billing/internal/transport/http"
)

// Job names.
const (
	JobAdvance  = "advance_billing"
	JobActivate = "activate_pending"
	JobNotify   = "notify_expiring_orders"
	JobDisable  = "disable_unpaid_services"
	JobOutbox   = "relay_outbox"
)

type publisher interface {
	contracts.EventPublisher
	Close()
}

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	SpannerClient *spanner.Client
	Repos         contracts.Repositories
	Handler       *httptransport.Handler
	Scheduler     *scheduler.Scheduler

	publisher publisher
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, cfg config.Config, logger *zap.Logger) (*ServiceOptions, error) {
	opts := &ServiceOptions{}

	// 1. Storage
	switch cfg.Store.Driver {
	case config.StoreMemory:
		opts.Repos = memory.NewStore().Repositories()
		logger.Warn("using in-memory store; state is lost on restart")
	default:
		client, err := spanner.NewClient(ctx, cfg.Store.SpannerDB)
		if err != nil {
			return nil, fmt.Errorf("failed to create Spanner client: %w", err)
		}
		opts.SpannerClient = client
		opts.Repos = repo.NewRepositories(committer.NewCommitter(client))
	}

	base, err := domain.ParseCurrency(cfg.Billing.BaseCurrency)
	if err != nil {
		opts.Close()
		return nil, fmt.Errorf("invalid base currency: %w", err)
	}

	// 2. Collaborators
	clk := clock.NewRealClock()
	rateProvider, err := rates.NewProvider(cfg.Rates, clk, logger)
	if err != nil {
		opts.Close()
		return nil, err
	}
	translator, err := notes.NewTranslator()
	if err != nil {
		opts.Close()
		return nil, fmt.Errorf("failed to build note catalog: %w", err)
	}
	var payments contracts.PaymentGateway = gateway.Manual{}
	if cfg.Gateway.URL != "" {
		payments = gateway.NewClient(cfg.Gateway)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		opts.publisher = broker.NewPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		opts.publisher = broker.NewLogPublisher(logger)
	}

	// 3. Domain services
	resolver := billing.NewPriceTableResolver()
	calculator := billing.NewPriceCalculator(resolver, logger)
	discounts := billing.NewDiscountEngine(logger)
	aggregator := billing.NewOrderAggregator(discounts, translator, base, cfg.Billing.NoteLanguages, logger)
	pricer := shared.NewPricer(opts.Repos, calculator, aggregator)

	// 4. Command use cases (write operations)
	repos := opts.Repos
	uc := httptransport.UseCases{
		SaveService:         save_service.NewInteractor(repos, clk),
		SavePriceEntry:      save_price_entry.NewInteractor(repos, resolver, clk),
		SaveDiscount:        save_discount.NewInteractor(repos, clk),
		CreateClient:        create_client.NewInteractor(repos, discounts, clk, logger),
		AssignDiscount:      assign_discount.NewInteractor(repos, clk),
		CreateClientService: create_client_service.NewInteractor(repos, pricer, clk),
		UpdateClientService: update_client_service.NewInteractor(repos, pricer, clk),
		CreateOrder:         create_order.NewInteractor(repos, pricer, clk),
		RecomputeOrder:      recompute_order.NewInteractor(repos, pricer, clk),
		PayOrder:            pay_order.NewInteractor(repos, payments, clk, logger, cfg.Gateway.ChargeLease),
		CancelOrder:         cancel_order.NewInteractor(repos, payments, clk, logger),

		// 5. Query use cases (read operations)
		QuotePrice: quote_price.NewQuery(repos.Services, repos.PriceEntries, calculator, rateProvider),
		GetOrder:   get_order.NewQuery(repos.Orders, repos.ClientServices),
	}

	// 6. Background jobs
	advance := advance_billing.NewInteractor(repos, pricer, clk, logger, cfg.Billing.BeforeDays)
	activate := activate_pending.NewInteractor(repos, pricer, clk, logger)
	notify := notify_expiring_orders.NewInteractor(repos, clk, logger, cfg.Billing.NotifyDays)
	disable := disable_unpaid_services.NewInteractor(repos, clk, logger, cfg.Billing.DisableDays)
	relay := relay_outbox.NewInteractor(repos.Outbox, opts.publisher, clk, logger, cfg.Billing.OutboxBatchSize, cfg.Billing.OutboxRetention)

	opts.Scheduler = scheduler.New(logger, 0)
	jobs := []struct {
		name string
		spec string
		fn   scheduler.JobFunc
	}{
		{JobAdvance, cfg.Scheduler.Advance, func(ctx context.Context) error {
			res, err := advance.Execute(ctx)
			if err == nil && res.Orders > 0 {
				logger.Info("billing cycle advanced",
					zap.Int("orders", res.Orders),
					zap.Int("failed", res.Failed),
				)
			}
			return err
		}},
		{JobActivate, cfg.Scheduler.Activate, func(ctx context.Context) error {
			_, err := activate.Execute(ctx)
			return err
		}},
		{JobNotify, cfg.Scheduler.Notify, func(ctx context.Context) error {
			_, err := notify.Execute(ctx)
			return err
		}},
		{JobDisable, cfg.Scheduler.Disable, func(ctx context.Context) error {
			_, err := disable.Execute(ctx)
			return err
		}},
		{JobOutbox, cfg.Scheduler.Outbox, func(ctx context.Context) error {
			_, err := relay.Execute(ctx)
			return err
		}},
	}
	for _, j := range jobs {
		if err := opts.Scheduler.Add(j.name, j.spec, j.fn); err != nil {
			opts.Close()
			return nil, err
		}
	}

	// 7. HTTP handler
	opts.Handler = httptransport.NewHandler(uc, opts.Scheduler, logger)

	return opts, nil
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.SpannerClient != nil {
		s.SpannerClient.Close()
	}
}
