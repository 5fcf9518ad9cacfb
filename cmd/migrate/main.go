package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/tariff-billing/internal/pkg/config"
	"github.com/light-bringer/tariff-billing/internal/pkg/logger"
)

var (
	envFile    = flag.String("env", ".env", "Optional env file")
	migrateDir = flag.String("migrations", "migrations", "Directory containing migration SQL files")
)

func main() {
	flag.Parse()

	cfg, err := config.New(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	l, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer l.Sync()

	db, err := parseDatabasePath(cfg.Store.SpannerDB)
	if err != nil {
		l.Fatal("invalid database path", zap.Error(err))
	}
	if host := os.Getenv("SPANNER_EMULATOR_HOST"); host != "" {
		l.Info("using Spanner emulator", zap.String("host", host))
	}

	m := &migrator{db: db, dir: *migrateDir, l: l.With(zap.String("database", db.String()))}
	if err := m.run(context.Background()); err != nil {
		l.Fatal("migration failed", zap.Error(err))
	}
	l.Info("migrations completed")
}

type migrator struct {
	db  databasePath
	dir string
	l   *zap.Logger
}

func (m *migrator) run(ctx context.Context) error {
	if err := m.ensureInstance(ctx); err != nil {
		return fmt.Errorf("failed to ensure instance: %w", err)
	}
	if err := m.ensureDatabase(ctx); err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}
	if err := m.apply(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (m *migrator) ensureInstance(ctx context.Context) error {
	admin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer admin.Close()

	_, err = admin.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: m.db.Instance()})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		m.l.Warn("unexpected error checking instance", zap.Error(err))
		return nil
	}

	m.l.Info("creating instance", zap.String("instance", m.db.InstanceID))
	op, err := admin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     m.db.Project(),
		InstanceId: m.db.InstanceID,
		Instance: &instancepb.Instance{
			Config:      m.db.Project() + "/instanceConfigs/emulator-config",
			DisplayName: "Billing Instance",
			NodeCount:   1,
		},
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("failed to create instance: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		m.l.Warn("instance creation did not settle", zap.Error(err))
	}
	return nil
}

func (m *migrator) ensureDatabase(ctx context.Context) error {
	admin, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	_, err = admin.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: m.db.String()})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		if os.Getenv("SPANNER_EMULATOR_HOST") != "" {
			m.l.Warn("proceeding without database check", zap.Error(err))
			return nil
		}
		return fmt.Errorf("failed to check database: %w", err)
	}

	m.l.Info("creating database")
	op, err := admin.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          m.db.Instance(),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", m.db.DatabaseID),
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("failed to create database: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for database creation: %w", err)
	}
	return nil
}

func (m *migrator) apply(ctx context.Context) error {
	files, err := filepath.Glob(filepath.Join(m.dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migration files: %w", err)
	}
	if len(files) == 0 {
		m.l.Warn("no migration files found", zap.String("dir", m.dir))
		return nil
	}

	admin, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	for _, file := range files {
		name := filepath.Base(file)
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		statements := splitDDLStatements(string(content))
		op, err := admin.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
			Database:   m.db.String(),
			Statements: statements,
		})
		if err != nil {
			return fmt.Errorf("failed to start DDL update for %s: %w", name, err)
		}
		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to apply DDL for %s: %w", name, err)
		}
		m.l.Info("migration applied", zap.String("file", name), zap.Int("statements", len(statements)))
	}
	return nil
}
