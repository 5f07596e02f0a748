package batch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fastprodman/txledger/internal/models"
	"github.com/fastprodman/txledger/internal/services/ledger"
)

// Source yields transactions in input order. Next returns io.EOF when the
// input is exhausted and an error wrapping models.ErrMalformedRecord for a
// record that could not be decoded; any other error aborts the run.
type Source interface {
	Next() (models.Transaction, error)
}

// LineSource is implemented by sources that know the input line of the
// record most recently returned.
type LineSource interface {
	Line() int
}

type Applier interface {
	Apply(tx models.Transaction) error
}

// Reporter receives exactly one outcome per input record.
type Reporter interface {
	Report(ctx context.Context, outcome models.Outcome) error
}

type Summary struct {
	Records   int            `json:"records"`
	Applied   int            `json:"applied"`
	Rejected  int            `json:"rejected"`
	Malformed int            `json:"malformed"`
	ByReason  map[string]int `json:"byReason,omitempty"`
}

func (s *Summary) add(o models.Outcome) {
	s.Records++

	switch {
	case o.Applied():
		s.Applied++

		return
	case errors.Is(o.Err, models.ErrMalformedRecord):
		s.Malformed++
	default:
		s.Rejected++
	}

	if s.ByReason == nil {
		s.ByReason = make(map[string]int)
	}

	s.ByReason[o.Reason]++
}

// Run feeds every record from src to eng in order. Rejected and malformed
// records are reported and skipped; only source I/O errors, reporter errors
// and context cancellation stop the run.
func Run(ctx context.Context, src Source, eng Applier, rep Reporter) (Summary, error) {
	var sum Summary

	lines, _ := src.(LineSource)

	for {
		err := ctx.Err()
		if err != nil {
			return sum, fmt.Errorf("run canceled: %w", err)
		}

		tx, err := src.Next()
		if errors.Is(err, io.EOF) {
			return sum, nil
		}

		outcome := models.Outcome{Type: tx.Type, Client: tx.Client, Tx: tx.Tx}
		if lines != nil {
			outcome.Line = lines.Line()
		}

		switch {
		case err == nil:
			outcome.Err = eng.Apply(tx)
		case errors.Is(err, models.ErrMalformedRecord):
			outcome.Err = err
		default:
			return sum, fmt.Errorf("read record: %w", err)
		}

		outcome.Reason = ledger.Reason(outcome.Err)
		sum.add(outcome)

		if rep == nil {
			continue
		}

		err = rep.Report(ctx, outcome)
		if err != nil {
			return sum, fmt.Errorf("report outcome: %w", err)
		}
	}
}
