package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	ClientID uint16
	TxID     uint32
)

// ErrMalformedRecord marks input that could not be decoded into a Transaction.
var ErrMalformedRecord = errors.New("malformed record")

type TxType uint8

const (
	TxDeposit TxType = iota + 1
	TxWithdrawal
	TxDispute
	TxResolve
	TxChargeback
)

func (t TxType) String() string {
	switch t {
	case TxDeposit:
		return "deposit"
	case TxWithdrawal:
		return "withdrawal"
	case TxDispute:
		return "dispute"
	case TxResolve:
		return "resolve"
	case TxChargeback:
		return "chargeback"
	default:
		return fmt.Sprintf("TxType(%d)", uint8(t))
	}
}

// HasAmount reports whether records of this type carry their own amount.
func (t TxType) HasAmount() bool {
	switch t {
	case TxDeposit, TxWithdrawal:
		return true
	case TxDispute, TxResolve, TxChargeback:
		return false
	default:
		return false
	}
}

func (t TxType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TxType) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "deposit":
		*t = TxDeposit
	case "withdrawal":
		*t = TxWithdrawal
	case "dispute":
		*t = TxDispute
	case "resolve":
		*t = TxResolve
	case "chargeback":
		*t = TxChargeback
	default:
		return fmt.Errorf("unknown transaction type %q", string(b))
	}

	return nil
}

type Transaction struct {
	Type   TxType
	Client ClientID
	Tx     TxID
	Amount *decimal.Decimal // deposits and withdrawals only
}

type DisputeState uint8

const (
	StateNormal DisputeState = iota
	StateDisputed
	StateChargedBack
)

func (s DisputeState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateDisputed:
		return "disputed"
	case StateChargedBack:
		return "charged_back"
	default:
		return fmt.Sprintf("DisputeState(%d)", uint8(s))
	}
}

// Record is a stored deposit or withdrawal together with its dispute state.
type Record struct {
	Transaction Transaction
	Amount      decimal.Decimal
	State       DisputeState
}
