package transactions

import (
	"errors"

	"github.com/fastprodman/txledger/internal/models"
)

var ErrDuplicateTransaction = errors.New("duplicate transaction")

// Transactions indexes deposits and withdrawals by id for later dispute lookups.
type Transactions interface {
	Insert(record models.Record) error
	// Lookup returns the stored record; absence is not an error at this layer.
	Lookup(txID models.TxID) (*models.Record, bool)
}
