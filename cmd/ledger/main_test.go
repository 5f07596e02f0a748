package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

//nolint:paralleltest
func TestRun_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "deposits_and_withdrawals",
			input: `type, client, tx, amount
deposit, 1, 1, 1.0
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
withdrawal, 2, 5, 3.0
`,
			want: `client,available,held,total,locked
1,1.5000,0.0000,1.5000,false
2,2.0000,0.0000,2.0000,false
`,
		},
		{
			name: "dispute_then_chargeback",
			input: `type,client,tx,amount
deposit,1,1,10.0
deposit,1,2,5.0
dispute,1,1,
chargeback,1,1,
deposit,1,3,100.0
`,
			want: `client,available,held,total,locked
1,5.0000,0.0000,5.0000,true
`,
		},
		{
			name: "dispute_then_resolve",
			input: `type,client,tx,amount
deposit,2,10,3.5
dispute,2,10
resolve,2,10
dispute,2,10
`,
			want: `client,available,held,total,locked
2,0.0000,3.5000,3.5000,false
`,
		},
		{
			name: "malformed_lines_are_skipped",
			input: `type,client,tx,amount
deposit,1,1,1.0
deposit,x,2,1.0
deposit,1,3
withdrawal,3,4,1.0
`,
			want: `client,available,held,total,locked
1,1.0000,0.0000,1.0000,false
3,0.0000,0.0000,0.0000,false
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			err := run(t.Context(), []string{writeInput(t, tt.input)}, &stdout, &stderr)
			require.NoError(t, err)
			require.Equal(t, tt.want, stdout.String())
		})
	}
}

//nolint:paralleltest
func TestRun_LogsRejectionsToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer

	input := "type,client,tx,amount\ndeposit,1,1,1.0\nwithdrawal,1,2,5.0\n"

	err := run(t.Context(), []string{writeInput(t, input)}, &stdout, &stderr)
	require.NoError(t, err)

	var rejected map[string]any

	for _, line := range strings.Split(strings.TrimSpace(stderr.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))

		if entry["msg"] == "record rejected" {
			rejected = entry
		}
	}

	require.NotNil(t, rejected, stderr.String())
	require.Equal(t, "insufficient_funds", rejected["reason"])
	require.EqualValues(t, 3, rejected["line"])
	require.NotEmpty(t, rejected["run_id"])
	require.NotContains(t, stdout.String(), "record rejected")
}

//nolint:paralleltest
func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(t.Context(), nil, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)

	err = run(t.Context(), []string{"a.csv", "b.csv"}, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)

	err = run(t.Context(), []string{filepath.Join(t.TempDir(), "missing.csv")}, &stdout, &stderr)
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.Empty(t, stdout.String())
}
