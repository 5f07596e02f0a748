package e2etests

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

const (
	baseURLEnv = "E2E_BASE_URL"
	timeout    = 5 * time.Second
	waitReady  = 20 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

type account struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

type runResult struct {
	RunID   string `json:"runId"`
	Summary struct {
		Records   int            `json:"records"`
		Applied   int            `json:"applied"`
		Rejected  int            `json:"rejected"`
		Malformed int            `json:"malformed"`
		ByReason  map[string]int `json:"byReason"`
	} `json:"summary"`
	Accounts []account `json:"accounts"`
	Stored   bool      `json:"stored"`
}

func TestE2E_RunFlow(t *testing.T) {
	baseURL := requireBaseURL(t)
	waitUntilReady(t, baseURL)

	input := `type,client,tx,amount
deposit,1,1,10.0
deposit,1,2,5.0
deposit,2,3,2.0
dispute,1,1,
chargeback,1,1,
deposit,1,4,100.0
withdrawal,2,5,3.0
deposit,2,3,1.0
`

	var res runResult

	t.Run("post_run", func(t *testing.T) {
		code, body := doRequest(t, http.MethodPost, baseURL+"/runs", input)
		if code != http.StatusOK {
			t.Fatalf("POST /runs: want 200, got %d (%s)", code, body)
		}

		err := json.Unmarshal([]byte(body), &res)
		if err != nil {
			t.Fatalf("decode json: %v", err)
		}

		if res.Summary.Records != 8 || res.Summary.Applied != 5 || res.Summary.Rejected != 3 {
			t.Fatalf("summary mismatch: %+v", res.Summary)
		}

		for _, reason := range []string{"account_locked", "insufficient_funds", "duplicate_transaction_id"} {
			if res.Summary.ByReason[reason] != 1 {
				t.Fatalf("want one %s rejection, got %+v", reason, res.Summary.ByReason)
			}
		}

		want := []account{
			{Client: 1, Available: "5.0000", Held: "0.0000", Total: "5.0000", Locked: true},
			{Client: 2, Available: "2.0000", Held: "0.0000", Total: "2.0000"},
		}
		if len(res.Accounts) != len(want) {
			t.Fatalf("accounts mismatch: %+v", res.Accounts)
		}

		for i := range want {
			if res.Accounts[i] != want[i] {
				t.Fatalf("account %d: want %+v, got %+v", i, want[i], res.Accounts[i])
			}
		}
	})

	t.Run("get_snapshot", func(t *testing.T) {
		code, body := doRequest(t, http.MethodGet, fmt.Sprintf("%s/runs/%s/accounts", baseURL, res.RunID), "")

		if !res.Stored {
			if code != http.StatusNotImplemented {
				t.Fatalf("no store: want 501, got %d (%s)", code, body)
			}

			return
		}

		if code != http.StatusOK {
			t.Fatalf("GET snapshot: want 200, got %d (%s)", code, body)
		}

		var snap struct {
			Accounts []account `json:"accounts"`
		}

		err := json.Unmarshal([]byte(body), &snap)
		if err != nil {
			t.Fatalf("decode json: %v", err)
		}

		if len(snap.Accounts) != len(res.Accounts) || snap.Accounts[0] != res.Accounts[0] {
			t.Fatalf("stored snapshot differs: %+v vs %+v", snap.Accounts, res.Accounts)
		}
	})

	t.Run("invalid_run_id", func(t *testing.T) {
		code, _ := doRequest(t, http.MethodGet, baseURL+"/runs/not-a-uuid/accounts", "")
		if code != http.StatusBadRequest && code != http.StatusNotImplemented {
			t.Fatalf("bad run id: want 400 or 501, got %d", code)
		}
	})
}

/* -------------------- helpers -------------------- */

func requireBaseURL(t *testing.T) string {
	t.Helper()

	u := strings.TrimRight(os.Getenv(baseURLEnv), "/")
	if u == "" {
		t.Skipf("%s not set; start cmd/api and point %s at it", baseURLEnv, baseURLEnv)
	}

	return u
}

func doRequest(t *testing.T, method, u, body string) (int, string) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, u, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "text/csv")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	//nolint:errcheck
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, string(b)
}

// waitUntilReady polls /healthz until it answers 200 or waitReady elapses.
func waitUntilReady(t *testing.T, baseURL string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", baseURL, waitReady)
		case <-tick.C:
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)

			resp, err := httpClient.Do(req)
			if err != nil {
				continue
			}

			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}
