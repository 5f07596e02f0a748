package transactions

import (
	"github.com/fastprodman/txledger/internal/models"
	"github.com/fastprodman/txledger/internal/repos/transactions"
)

var _ transactions.Transactions = (*transactionsRepo)(nil)

type transactionsRepo struct {
	records map[models.TxID]*models.Record
}

func New() *transactionsRepo {
	return &transactionsRepo{records: make(map[models.TxID]*models.Record)}
}

func (r *transactionsRepo) Insert(record models.Record) error {
	id := record.Transaction.Tx

	_, exists := r.records[id]
	if exists {
		return transactions.ErrDuplicateTransaction
	}

	r.records[id] = &record

	return nil
}

func (r *transactionsRepo) Lookup(txID models.TxID) (*models.Record, bool) {
	rec, ok := r.records[txID]

	return rec, ok
}
