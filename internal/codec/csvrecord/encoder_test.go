package csvrecord

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/txledger/internal/models"
)

func TestEncoder_Write(t *testing.T) {
	t.Parallel()

	accounts := []models.Account{
		{Client: 1, Available: decimal.RequireFromString("1.5"), Held: decimal.Zero},
		{Client: 2, Available: decimal.RequireFromString("0"), Held: decimal.RequireFromString("10.12345678"), Locked: true},
		models.NewAccount(3),
	}

	var buf bytes.Buffer

	err := NewEncoder(&buf).Write(accounts)
	require.NoError(t, err)

	want := "client,available,held,total,locked\n" +
		"1,1.5000,0.0000,1.5000,false\n" +
		"2,0.0000,10.1235,10.1235,true\n" +
		"3,0.0000,0.0000,0.0000,false\n"
	require.Equal(t, want, buf.String())
}

func TestEncoder_EmptySnapshot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, NewEncoder(&buf).Write(nil))
	require.Equal(t, "client,available,held,total,locked\n", buf.String())
}
