package batch

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/txledger/internal/codec/csvrecord"
	"github.com/fastprodman/txledger/internal/models"
	"github.com/fastprodman/txledger/internal/services/ledger"
)

type recorder struct {
	outcomes []models.Outcome
	failOn   int
}

func (r *recorder) Report(_ context.Context, o models.Outcome) error {
	r.outcomes = append(r.outcomes, o)
	if r.failOn > 0 && len(r.outcomes) == r.failOn {
		return errors.New("sink down")
	}

	return nil
}

type sliceSource struct {
	items []item
	pos   int
}

type item struct {
	tx  models.Transaction
	err error
}

func (s *sliceSource) Next() (models.Transaction, error) {
	if s.pos >= len(s.items) {
		return models.Transaction{}, io.EOF
	}

	it := s.items[s.pos]
	s.pos++

	return it.tx, it.err
}

const scenario = `type,client,tx,amount
deposit,1,1,5.0000
withdrawal,1,2,3.0000
dispute,1,1,
deposit,2,10,10.0000
dispute,2,10,
chargeback,2,10,
deposit,2,11,1.0000
deposit,3,20,7.12345
bogus,3,21,1
deposit,3,22,7.1234
`

func TestRun_CSVScenario(t *testing.T) {
	t.Parallel()

	eng := ledger.New()
	rep := &recorder{}

	sum, err := Run(t.Context(), csvrecord.NewDecoder(strings.NewReader(scenario)), eng, rep)
	require.NoError(t, err)

	require.Equal(t, 10, sum.Records)
	require.Equal(t, 6, sum.Applied)
	require.Equal(t, 3, sum.Rejected)
	require.Equal(t, 1, sum.Malformed)
	require.Equal(t, map[string]int{
		ledger.ReasonInsufficientFunds: 1,
		ledger.ReasonAccountLocked:     1,
		ledger.ReasonInvalidAmount:     1,
		ledger.ReasonMalformedRecord:   1,
	}, sum.ByReason)

	require.Len(t, rep.outcomes, 10)
	require.Equal(t, 4, rep.outcomes[2].Line)
	require.Equal(t, ledger.ReasonInsufficientFunds, rep.outcomes[2].Reason)
	require.Equal(t, models.TxID(11), rep.outcomes[6].Tx)
	require.Equal(t, ledger.ReasonAccountLocked, rep.outcomes[6].Reason)
	require.Equal(t, 10, rep.outcomes[8].Line)
	require.Equal(t, ledger.ReasonMalformedRecord, rep.outcomes[8].Reason)

	want := map[models.ClientID][3]string{
		1: {"2", "0", "false"},
		2: {"0", "0", "true"},
		3: {"7.1234", "0", "false"},
	}

	accounts := eng.Accounts()
	require.Len(t, accounts, len(want))

	for _, acc := range accounts {
		w := want[acc.Client]
		require.True(t, acc.Available.Equal(decimal.RequireFromString(w[0])), "client %d available %s", acc.Client, acc.Available)
		require.True(t, acc.Held.Equal(decimal.RequireFromString(w[1])), "client %d held %s", acc.Client, acc.Held)
		require.Equal(t, w[2] == "true", acc.Locked)
	}
}

func TestRun_FatalSourceError(t *testing.T) {
	t.Parallel()

	diskErr := errors.New("disk gone")
	amount := decimal.NewFromInt(1)
	src := &sliceSource{items: []item{
		{tx: models.Transaction{Type: models.TxDeposit, Client: 1, Tx: 1, Amount: &amount}},
		{err: diskErr},
		{tx: models.Transaction{Type: models.TxDeposit, Client: 1, Tx: 2, Amount: &amount}},
	}}

	sum, err := Run(t.Context(), src, ledger.New(), nil)
	require.ErrorIs(t, err, diskErr)
	require.Equal(t, 1, sum.Applied)
}

func TestRun_ReporterErrorStops(t *testing.T) {
	t.Parallel()

	rep := &recorder{failOn: 2}

	_, err := Run(t.Context(), csvrecord.NewDecoder(strings.NewReader(scenario)), ledger.New(), rep)
	require.Error(t, err)
	require.Len(t, rep.outcomes, 2)
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	sum, err := Run(ctx, csvrecord.NewDecoder(strings.NewReader(scenario)), ledger.New(), nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, sum.Records)
}
