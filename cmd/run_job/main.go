// Command run_job runs a single billing job once and exits. It is meant for
// deployments that schedule jobs externally instead of through the server's
// embedded scheduler.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/pkg/config"
	"github.com/light-bringer/tariff-billing/internal/pkg/logger"
	"github.com/light-bringer/tariff-billing/internal/services"
)

var (
	envFile = flag.String("env", ".env", "Optional env file")
	job     = flag.String("job", "", "Job to run")
	list    = flag.Bool("list", false, "List available jobs and exit")
	timeout = flag.Duration("timeout", 10*time.Minute, "Maximum run time")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "run_job: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
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
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	opts, err := services.NewServiceOptions(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer opts.Close()

	if *list || *job == "" {
		fmt.Println(strings.Join(opts.Scheduler.Jobs(), "\n"))
		if *job == "" && !*list {
			return fmt.Errorf("-job flag is required")
		}
		return nil
	}

	started := time.Now()
	if err := opts.Scheduler.Trigger(ctx, *job); err != nil {
		return fmt.Errorf("job %s failed: %w", *job, err)
	}
	l.Info("job completed", zap.String("job", *job), zap.Duration("elapsed", time.Since(started)))
	return nil
}
