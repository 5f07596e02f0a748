package snapshots

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fastprodman/txledger/internal/models"
)

var (
	ErrDuplicateRun = errors.New("duplicate run")
	ErrRunNotFound  = errors.New("run not found")
)

// Snapshots stores the final account snapshot of finished runs. It is an
// export target only; ledger state is never reloaded from it.
type Snapshots interface {
	Save(ctx context.Context, runID uuid.UUID, accounts []models.Account) error
	Get(ctx context.Context, runID uuid.UUID) ([]models.Account, error)
}
