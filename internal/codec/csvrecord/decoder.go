// Package csvrecord reads transaction records from CSV and writes account snapshots back out.
package csvrecord

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/txledger/internal/models"
)

var inputHeader = []string{"type", "client", "tx", "amount"}

// DecodeError reports a single input line that could not be decoded.
// It wraps models.ErrMalformedRecord so callers can keep going.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{models.ErrMalformedRecord, e.Err}
}

// Decoder reads `type,client,tx,amount` records. Fields are trimmed and the
// amount column may be empty or absent for dispute, resolve and chargeback.
type Decoder struct {
	reader *csv.Reader
	line   int
	header bool
}

func NewDecoder(r io.Reader) *Decoder {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	return &Decoder{reader: reader}
}

// Line returns the 1-based line of the record most recently returned by Next.
func (d *Decoder) Line() int {
	return d.line
}

// Next returns the next transaction. It returns io.EOF at the end of input,
// a *DecodeError for a malformed record, and any other error for I/O failures.
func (d *Decoder) Next() (models.Transaction, error) {
	for {
		record, err := d.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return models.Transaction{}, io.EOF
			}

			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				d.line = parseErr.StartLine
				return models.Transaction{}, &DecodeError{Line: parseErr.StartLine, Err: parseErr.Err}
			}

			return models.Transaction{}, fmt.Errorf("read csv record: %w", err)
		}

		// FieldPos is only valid after a successful Read.
		d.line, _ = d.reader.FieldPos(0)

		if !d.header {
			d.header = true
			if isHeader(record) {
				continue
			}
		}

		if isBlank(record) {
			continue
		}

		tx, err := parseRecord(record)
		if err != nil {
			return models.Transaction{}, &DecodeError{Line: d.line, Err: err}
		}

		return tx, nil
	}
}

func isHeader(record []string) bool {
	if len(record) < len(inputHeader)-1 {
		return false
	}

	for i, name := range inputHeader {
		if i >= len(record) {
			break
		}
		if !strings.EqualFold(strings.TrimSpace(record[i]), name) {
			return false
		}
	}

	return true
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}

func parseRecord(record []string) (models.Transaction, error) {
	if len(record) < 3 || len(record) > 4 {
		return models.Transaction{}, fmt.Errorf("want 3 or 4 fields, got %d", len(record))
	}

	var tx models.Transaction

	err := tx.Type.UnmarshalText([]byte(record[0]))
	if err != nil {
		return models.Transaction{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 16)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parse client: %w", err)
	}

	txID, err := strconv.ParseUint(strings.TrimSpace(record[2]), 10, 32)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parse tx: %w", err)
	}

	tx.Client = models.ClientID(client)
	tx.Tx = models.TxID(txID)

	raw := ""
	if len(record) == 4 {
		raw = strings.TrimSpace(record[3])
	}

	if raw == "" {
		if tx.Type.HasAmount() {
			return models.Transaction{}, fmt.Errorf("%s requires an amount", tx.Type)
		}

		return tx, nil
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parse amount %q: %w", raw, err)
	}

	tx.Amount = &amount

	return tx, nil
}
