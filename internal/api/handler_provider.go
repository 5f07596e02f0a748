package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/fastprodman/txledger/internal/codec/csvrecord"
	"github.com/fastprodman/txledger/internal/models"
	"github.com/fastprodman/txledger/internal/report"
	"github.com/fastprodman/txledger/internal/repos/snapshots"
	"github.com/fastprodman/txledger/internal/services/batch"
	"github.com/fastprodman/txledger/internal/services/ledger"
)

const maxRunBody = 10 << 20

// HandlerProvider runs uploaded transaction files and serves stored snapshots.
type HandlerProvider struct {
	policy ledger.LockPolicy
	store  snapshots.Snapshots
	logger *slog.Logger
}

// NewHandler returns a handler provider. A nil store disables snapshot export
// and lookups.
func NewHandler(policy ledger.LockPolicy, store snapshots.Snapshots, logger *slog.Logger) *HandlerProvider {
	if logger == nil {
		logger = slog.Default()
	}

	return &HandlerProvider{policy: policy, store: store, logger: logger}
}

type accountView struct {
	Client    models.ClientID `json:"client"`
	Available string          `json:"available"`
	Held      string          `json:"held"`
	Total     string          `json:"total"`
	Locked    bool            `json:"locked"`
}

type runResponse struct {
	RunID    string        `json:"runId"`
	Summary  batch.Summary `json:"summary"`
	Accounts []accountView `json:"accounts"`
	Stored   bool          `json:"stored"`
}

type snapshotResponse struct {
	RunID    string        `json:"runId"`
	Accounts []accountView `json:"accounts"`
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func toViews(accounts []models.Account) []accountView {
	out := make([]accountView, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, accountView{
			Client:    acc.Client,
			Available: acc.Available.StringFixed(ledger.AmountScale),
			Held:      acc.Held.StringFixed(ledger.AmountScale),
			Total:     acc.Total().StringFixed(ledger.AmountScale),
			Locked:    acc.Locked,
		})
	}

	return out
}

// --- Handlers ---

// CreateRunHandler handles POST /runs with a CSV body.
func (h *HandlerProvider) CreateRunHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRunBody)
	//nolint:errcheck
	defer r.Body.Close()

	runID := uuid.New()
	logger := h.logger.With("run_id", runID.String())
	eng := ledger.New(ledger.WithLockPolicy(h.policy))

	summary, err := batch.Run(r.Context(), csvrecord.NewDecoder(r.Body), eng, report.NewLogReporter(logger))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		logger.WarnContext(r.Context(), "run aborted", "error", err)
		writeError(w, http.StatusBadRequest, "could not read transactions")

		return
	}

	accounts := eng.Accounts()

	if h.store != nil {
		err = h.store.Save(r.Context(), runID, accounts)
		if err != nil {
			logger.ErrorContext(r.Context(), "save snapshot", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")

			return
		}
	}

	logger.InfoContext(r.Context(), "run finished",
		"records", summary.Records, "applied", summary.Applied,
		"rejected", summary.Rejected, "malformed", summary.Malformed)

	writeJSON(w, http.StatusOK, runResponse{
		RunID:    runID.String(),
		Summary:  summary,
		Accounts: toViews(accounts),
		Stored:   h.store != nil,
	})
}

// GetRunAccountsHandler handles GET /runs/{runId}/accounts.
func (h *HandlerProvider) GetRunAccountsHandler(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "snapshot store not configured")
		return
	}

	runID, err := uuid.Parse(chi.URLParam(r, "runId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid runId in path")
		return
	}

	accounts, err := h.store.Get(r.Context(), runID)
	if err != nil {
		if errors.Is(err, snapshots.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}

		h.logger.ErrorContext(r.Context(), "load snapshot", "run_id", runID.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		RunID:    runID.String(),
		Accounts: toViews(accounts),
	})
}
