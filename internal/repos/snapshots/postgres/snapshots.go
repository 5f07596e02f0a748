package snapshots

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/txledger/internal/infra/pgutils"
	"github.com/fastprodman/txledger/internal/models"
	"github.com/fastprodman/txledger/internal/repos/snapshots"
)

var _ snapshots.Snapshots = (*snapshotsRepo)(nil)

type snapshotsRepo struct{ db *sql.DB }

func New(db *sql.DB) *snapshotsRepo {
	return &snapshotsRepo{db: db}
}

// Save writes the run and all of its accounts in a single transaction.
func (r *snapshotsRepo) Save(ctx context.Context, runID uuid.UUID, accounts []models.Account) error {
	return pgutils.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_runs (run_id)
			VALUES ($1)
		`, runID)
		if err != nil {
			if pgutils.IsUniqueViolation(err) {
				return snapshots.ErrDuplicateRun
			}

			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO account_snapshots (run_id, client, available, held, total, locked)
			VALUES ($1, $2, $3, $4, $5, $6)
		`)
		if err != nil {
			return fmt.Errorf("prepare snapshot insert: %w", err)
		}
		//nolint:errcheck
		defer stmt.Close()

		for _, acc := range accounts {
			_, err = stmt.ExecContext(ctx,
				runID, int32(acc.Client), acc.Available, acc.Held, acc.Total(), acc.Locked)
			if err != nil {
				return fmt.Errorf("insert account %d: %w", acc.Client, err)
			}
		}

		return nil
	})
}

func (r *snapshotsRepo) Get(ctx context.Context, runID uuid.UUID) ([]models.Account, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM ledger_runs WHERE run_id = $1)
	`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check run exists: %w", err)
	}

	if !exists {
		return nil, snapshots.ErrRunNotFound
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT client, available, held, locked
		FROM account_snapshots
		WHERE run_id = $1
		ORDER BY client
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	accounts := make([]models.Account, 0)

	for rows.Next() {
		var (
			client int32
			acc    models.Account
		)

		err = rows.Scan(&client, &acc.Available, &acc.Held, &acc.Locked)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}

		acc.Client = models.ClientID(client)
		accounts = append(accounts, acc)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}

	return accounts, nil
}
