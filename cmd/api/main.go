package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/txledger/internal/api"
	"github.com/fastprodman/txledger/internal/infra/logging"
	"github.com/fastprodman/txledger/internal/infra/pgutils"
	"github.com/fastprodman/txledger/internal/repos/snapshots"
	pgsnapshots "github.com/fastprodman/txledger/internal/repos/snapshots/postgres"
	"github.com/fastprodman/txledger/pkg/envconf"
	"github.com/fastprodman/txledger/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logger := logging.SetupJSON(os.Stdout, cfg.Ledger.LogLevel)
	shutdown := shutdownqueue.New()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdown.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	var store snapshots.Snapshots

	if cfg.Postgres.Enabled() {
		db, err := pgutils.OpenPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}

		shutdown.Add(func(context.Context) error {
			slog.Info("Close database")

			return db.Close()
		})

		store = pgsnapshots.New(db)
	}

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.NewHandler(cfg.Ledger.LockPolicy, store, logger))

	shutdown.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started",
		"port", cfg.Port, "lock_policy", cfg.Ledger.LockPolicy.String(), "snapshot_export", store != nil)

	select {
	case <-ctx.Done():
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
