// Command ledger replays a transactions CSV and prints the final account
// snapshot as CSV on stdout. Logs go to stderr.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/fastprodman/txledger/internal/codec/csvrecord"
	"github.com/fastprodman/txledger/internal/events/kafka"
	"github.com/fastprodman/txledger/internal/infra/logging"
	"github.com/fastprodman/txledger/internal/infra/pgutils"
	"github.com/fastprodman/txledger/internal/report"
	pgsnapshots "github.com/fastprodman/txledger/internal/repos/snapshots/postgres"
	"github.com/fastprodman/txledger/internal/services/batch"
	"github.com/fastprodman/txledger/internal/services/ledger"
	"github.com/fastprodman/txledger/pkg/envconf"
	"github.com/fastprodman/txledger/pkg/shutdownqueue"
)

var errUsage = errors.New("usage: ledger <transactions.csv>")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (retErr error) {
	if len(args) != 1 {
		return errUsage
	}

	cfg := new(cliConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	runID := uuid.New()
	logger := logging.SetupJSON(stderr, cfg.Ledger.LogLevel).With("run_id", runID.String())
	shutdown := shutdownqueue.New()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdown.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}

	shutdown.Add(func(context.Context) error {
		return f.Close()
	})

	reporters := []report.Reporter{report.NewLogReporter(logger)}

	if cfg.Kafka.Enabled() {
		pub := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, runID)
		shutdown.Add(pub.Close)
		reporters = append(reporters, pub)
	}

	eng := ledger.New(ledger.WithLockPolicy(cfg.Ledger.LockPolicy))

	summary, err := batch.Run(ctx, csvrecord.NewDecoder(bufio.NewReader(f)), eng, report.Multi(reporters...))
	if err != nil {
		return fmt.Errorf("process %s: %w", args[0], err)
	}

	accounts := eng.Accounts()

	err = csvrecord.NewEncoder(stdout).Write(accounts)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if cfg.Postgres.Enabled() {
		db, err := pgutils.OpenPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}

		shutdown.Add(func(context.Context) error {
			return db.Close()
		})

		err = pgsnapshots.New(db).Save(ctx, runID, accounts)
		if err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}
	}

	logger.InfoContext(ctx, "run finished",
		"records", summary.Records,
		"applied", summary.Applied,
		"rejected", summary.Rejected,
		"malformed", summary.Malformed,
		"accounts", len(accounts),
	)

	return nil
}
