package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/fastprodman/txledger/cmd/migrator/migrations"
	"github.com/fastprodman/txledger/internal/infra/logging"
	"github.com/fastprodman/txledger/internal/infra/pgutils"
	"github.com/fastprodman/txledger/pkg/envconf"
)

type migratorConfig struct {
	DSN         string        `env:"PG_DSN"`
	LogLevel    slog.Level    `env:"LEDGER_LOG_LEVEL" envDefault:"info"`
	ConnTimeout time.Duration `env:"PG_CONNECT_TIMEOUT" envDefault:"10s"`
	// Down rolls every migration back instead of applying them.
	Down bool `env:"MIGRATE_DOWN" envDefault:"false"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := migrateAll(ctx)
	if err != nil {
		slog.Error("migration run failed", "error", err)
		//nolint:gocritic
		os.Exit(1)
	}

	slog.Info("migration run finished successfully")
}

func migrateAll(ctx context.Context) error {
	cfg := new(migratorConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.SetupJSON(os.Stderr, cfg.LogLevel)

	connCtx, cancel := context.WithTimeout(ctx, cfg.ConnTimeout)
	defer cancel()

	db, err := pgutils.OpenDB(connCtx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	//nolint:errcheck
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("init pgx driver: %w", err)
	}

	src, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	if cfg.Down {
		err = m.Down()
	} else {
		err = m.Up()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read version: %w", err)
	}

	slog.Info("snapshot schema migrated", "version", version, "dirty", dirty, "down", cfg.Down)

	return nil
}
