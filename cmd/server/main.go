package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/light-bringer/tariff-billing/internal/pkg/config"
	"github.com/light-bringer/tariff-billing/internal/pkg/logger"
	"github.com/light-bringer/tariff-billing/internal/services"
	httptransport "github.com/light-bringer/tariff-billing/internal/transport/http"
)

var envFile = flag.String("env", ".env", "Optional env file")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.New(*envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info("starting billing service",
		zap.String("store", cfg.Store.Driver),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("scheduler", cfg.Scheduler.Enabled),
	)

	// 2. Initialize service dependencies (DI container)
	opts, err := services.NewServiceOptions(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer opts.Close()

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler: httptransport.NewRouter(opts.Handler, l),
	}

	// 3. Run HTTP server and scheduler until a signal arrives
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if cfg.Scheduler.Enabled {
		g.Go(func() error {
			return opts.Scheduler.Run(gctx)
		})
	}

	return g.Wait()
}
