package ledger

import (
	"errors"
	"fmt"

	"github.com/fastprodman/txledger/internal/models"
	"github.com/fastprodman/txledger/internal/repos/transactions"
)

var (
	ErrDuplicateTransaction = transactions.ErrDuplicateTransaction
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrAccountLocked        = errors.New("account locked")
	ErrUnknownTransaction   = errors.New("unknown referenced transaction")
	ErrClientMismatch       = errors.New("client mismatch")
	ErrInvalidDisputeState  = errors.New("invalid dispute state")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrUnknownType          = errors.New("unknown transaction type")
)

// Reason tags reported to operators.
const (
	ReasonDuplicateTransaction = "duplicate_transaction_id"
	ReasonInsufficientFunds    = "insufficient_funds"
	ReasonAccountLocked        = "account_locked"
	ReasonUnknownTransaction   = "unknown_referenced_transaction"
	ReasonClientMismatch       = "client_mismatch"
	ReasonInvalidDisputeState  = "invalid_dispute_state"
	ReasonInvalidAmount        = "invalid_amount"
	ReasonUnknownType          = "unknown_type"
	ReasonMalformedRecord      = "malformed_record"
	ReasonUnclassified         = "unclassified"
)

var reasons = []struct {
	err error
	tag string
}{
	{ErrDuplicateTransaction, ReasonDuplicateTransaction},
	{ErrInsufficientFunds, ReasonInsufficientFunds},
	{ErrAccountLocked, ReasonAccountLocked},
	{ErrUnknownTransaction, ReasonUnknownTransaction},
	{ErrClientMismatch, ReasonClientMismatch},
	{ErrInvalidDisputeState, ReasonInvalidDisputeState},
	{ErrInvalidAmount, ReasonInvalidAmount},
	{ErrUnknownType, ReasonUnknownType},
	{models.ErrMalformedRecord, ReasonMalformedRecord},
}

// Reason maps an error returned by Apply (or a decoder) to its reason tag.
// It returns "" for nil.
func Reason(err error) string {
	if err == nil {
		return ""
	}

	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.tag
		}
	}

	return ReasonUnclassified
}

// Rejection is returned by Engine.Apply for every record that was not applied.
// The ledger is left untouched when a Rejection is returned.
type Rejection struct {
	Type   models.TxType
	Client models.ClientID
	Tx     models.TxID
	Err    error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("reject %s client=%d tx=%d: %v", r.Type, r.Client, r.Tx, r.Err)
}

func (r *Rejection) Unwrap() error { return r.Err }

func (r *Rejection) Reason() string { return Reason(r.Err) }
