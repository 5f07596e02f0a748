package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/txledger/internal/models"
	"github.com/fastprodman/txledger/internal/repos/accounts"
	memaccounts "github.com/fastprodman/txledger/internal/repos/accounts/memory"
	"github.com/fastprodman/txledger/internal/repos/transactions"
	memtransactions "github.com/fastprodman/txledger/internal/repos/transactions/memory"
)

// AmountScale is the number of fractional digits an amount may carry.
const AmountScale = 4

type Option func(*Engine)

func WithLockPolicy(p LockPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// Engine applies transactions to the ledger one at a time. It is not safe
// for concurrent use; build one engine per run.
type Engine struct {
	accounts accounts.Accounts
	txns     transactions.Transactions
	policy   LockPolicy
}

// New returns an engine over a fresh in-memory store.
func New(opts ...Option) *Engine {
	return NewWithRepos(memaccounts.New(), memtransactions.New(), opts...)
}

func NewWithRepos(accs accounts.Accounts, txns transactions.Transactions, opts ...Option) *Engine {
	e := &Engine{
		accounts: accs,
		txns:     txns,
		policy:   LockFreezeAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e
}

// Apply validates tx against the current ledger and applies it.
// A non-nil error is always a *Rejection and means nothing was mutated.
func (e *Engine) Apply(tx models.Transaction) error {
	// Every referenced client gets an account, even if the record is rejected.
	acc := e.accounts.GetOrCreate(tx.Client)

	var err error

	switch tx.Type {
	case models.TxDeposit:
		err = e.deposit(acc, tx)
	case models.TxWithdrawal:
		err = e.withdraw(acc, tx)
	case models.TxDispute:
		err = e.dispute(acc, tx)
	case models.TxResolve:
		err = e.resolve(acc, tx)
	case models.TxChargeback:
		err = e.chargeback(acc, tx)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownType, tx.Type)
	}

	if err != nil {
		return &Rejection{Type: tx.Type, Client: tx.Client, Tx: tx.Tx, Err: err}
	}

	return nil
}

// Accounts returns a snapshot of every account ordered by client id.
func (e *Engine) Accounts() []models.Account {
	return e.accounts.All()
}

func (e *Engine) Account(client models.ClientID) (models.Account, bool) {
	return e.accounts.Get(client)
}

func (e *Engine) deposit(acc *models.Account, tx models.Transaction) error {
	err := e.checkLock(acc, tx.Type)
	if err != nil {
		return err
	}

	amount, err := validAmount(tx.Amount)
	if err != nil {
		return err
	}

	err = e.txns.Insert(models.Record{Transaction: tx, Amount: amount, State: models.StateNormal})
	if err != nil {
		return fmt.Errorf("record deposit: %w", err)
	}

	acc.Available = acc.Available.Add(amount)

	return nil
}

func (e *Engine) withdraw(acc *models.Account, tx models.Transaction) error {
	err := e.checkLock(acc, tx.Type)
	if err != nil {
		return err
	}

	amount, err := validAmount(tx.Amount)
	if err != nil {
		return err
	}

	if acc.Available.LessThan(amount) {
		return fmt.Errorf("%w: available %s, requested %s",
			ErrInsufficientFunds, acc.Available.StringFixed(AmountScale), amount.StringFixed(AmountScale))
	}

	err = e.txns.Insert(models.Record{Transaction: tx, Amount: amount, State: models.StateNormal})
	if err != nil {
		return fmt.Errorf("record withdrawal: %w", err)
	}

	acc.Available = acc.Available.Sub(amount)

	return nil
}

func (e *Engine) dispute(acc *models.Account, tx models.Transaction) error {
	err := e.checkLock(acc, tx.Type)
	if err != nil {
		return err
	}

	rec, err := e.referenced(tx)
	if err != nil {
		return err
	}

	switch rec.State {
	case models.StateNormal:
	case models.StateDisputed, models.StateChargedBack:
		return fmt.Errorf("%w: tx %d is %s", ErrInvalidDisputeState, tx.Tx, rec.State)
	default:
		return fmt.Errorf("%w: tx %d has state %s", ErrInvalidDisputeState, tx.Tx, rec.State)
	}

	if acc.Available.LessThan(rec.Amount) {
		return fmt.Errorf("%w: available %s cannot hold %s",
			ErrInsufficientFunds, acc.Available.StringFixed(AmountScale), rec.Amount.StringFixed(AmountScale))
	}

	acc.Available = acc.Available.Sub(rec.Amount)
	acc.Held = acc.Held.Add(rec.Amount)
	rec.State = models.StateDisputed

	return nil
}

func (e *Engine) resolve(acc *models.Account, tx models.Transaction) error {
	rec, err := e.settleable(acc, tx)
	if err != nil {
		return err
	}

	acc.Held = acc.Held.Sub(rec.Amount)
	acc.Available = acc.Available.Add(rec.Amount)
	rec.State = models.StateNormal

	return nil
}

func (e *Engine) chargeback(acc *models.Account, tx models.Transaction) error {
	rec, err := e.settleable(acc, tx)
	if err != nil {
		return err
	}

	acc.Held = acc.Held.Sub(rec.Amount)
	acc.Locked = true
	rec.State = models.StateChargedBack

	return nil
}

// settleable runs the shared preconditions of resolve and chargeback.
func (e *Engine) settleable(acc *models.Account, tx models.Transaction) (*models.Record, error) {
	err := e.checkLock(acc, tx.Type)
	if err != nil {
		return nil, err
	}

	rec, err := e.referenced(tx)
	if err != nil {
		return nil, err
	}

	switch rec.State {
	case models.StateDisputed:
	case models.StateNormal, models.StateChargedBack:
		return nil, fmt.Errorf("%w: tx %d is %s", ErrInvalidDisputeState, tx.Tx, rec.State)
	default:
		return nil, fmt.Errorf("%w: tx %d has state %s", ErrInvalidDisputeState, tx.Tx, rec.State)
	}

	if acc.Held.LessThan(rec.Amount) {
		return nil, fmt.Errorf("%w: held %s below disputed %s",
			ErrInsufficientFunds, acc.Held.StringFixed(AmountScale), rec.Amount.StringFixed(AmountScale))
	}

	return rec, nil
}

func (e *Engine) referenced(tx models.Transaction) (*models.Record, error) {
	rec, ok := e.txns.Lookup(tx.Tx)
	if !ok {
		return nil, fmt.Errorf("%w: tx %d", ErrUnknownTransaction, tx.Tx)
	}

	if rec.Transaction.Client != tx.Client {
		return nil, fmt.Errorf("%w: tx %d belongs to client %d", ErrClientMismatch, tx.Tx, rec.Transaction.Client)
	}

	return rec, nil
}

func (e *Engine) checkLock(acc *models.Account, t models.TxType) error {
	if acc.Locked && !e.policy.allows(t) {
		return ErrAccountLocked
	}

	return nil
}

func validAmount(amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero, fmt.Errorf("%w: amount required", ErrInvalidAmount)
	}

	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be > 0", ErrInvalidAmount, amount.String())
	}

	if !amount.Equal(amount.Truncate(AmountScale)) {
		return decimal.Zero, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, amount.String(), AmountScale)
	}

	return *amount, nil
}
