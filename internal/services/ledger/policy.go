package ledger

import (
	"fmt"
	"strings"

	"github.com/fastprodman/txledger/internal/models"
)

// LockPolicy decides which transaction types a locked account still accepts.
type LockPolicy uint8

const (
	// LockFreezeAll rejects every transaction type once an account is locked.
	LockFreezeAll LockPolicy = iota
	// LockSettleDisputes keeps rejecting deposits, withdrawals and new disputes,
	// but lets holds that were already open settle through resolve or chargeback.
	LockSettleDisputes
)

func (p LockPolicy) allows(t models.TxType) bool {
	switch p {
	case LockFreezeAll:
		return false
	case LockSettleDisputes:
		return t == models.TxResolve || t == models.TxChargeback
	default:
		return false
	}
}

func (p LockPolicy) String() string {
	switch p {
	case LockFreezeAll:
		return "freeze"
	case LockSettleDisputes:
		return "settle"
	default:
		return fmt.Sprintf("LockPolicy(%d)", uint8(p))
	}
}

func (p LockPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *LockPolicy) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "freeze":
		*p = LockFreezeAll
	case "settle":
		*p = LockSettleDisputes
	default:
		return fmt.Errorf("invalid lock policy %q (want freeze or settle)", string(b))
	}

	return nil
}
