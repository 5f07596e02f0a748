// Package report turns per-record outcomes into operator-facing output.
package report

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fastprodman/txledger/internal/models"
)

type Reporter interface {
	Report(ctx context.Context, outcome models.Outcome) error
}

// LogReporter logs rejected and malformed records at Warn and applied ones at Debug.
type LogReporter struct {
	logger *slog.Logger
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(ctx context.Context, o models.Outcome) error {
	if o.Applied() {
		r.logger.DebugContext(ctx, "record applied",
			"line", o.Line, "type", o.Type.String(), "client", o.Client, "tx", o.Tx)

		return nil
	}

	r.logger.WarnContext(ctx, "record rejected",
		"line", o.Line,
		"type", o.Type.String(),
		"client", o.Client,
		"tx", o.Tx,
		"reason", o.Reason,
		"error", o.Err,
	)

	return nil
}

type multi []Reporter

// Multi reports every outcome to each reporter in turn and joins their errors.
func Multi(reporters ...Reporter) Reporter {
	out := make(multi, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}

	return out
}

func (m multi) Report(ctx context.Context, o models.Outcome) error {
	var errs []error

	for _, r := range m {
		err := r.Report(ctx, o)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
