package csvrecord

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fastprodman/txledger/internal/models"
)

// AmountScale is the number of fractional digits written for every balance.
const AmountScale = 4

var outputHeader = []string{"client", "available", "held", "total", "locked"}

// Encoder writes account snapshots as `client,available,held,total,locked`.
type Encoder struct {
	writer *csv.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{writer: csv.NewWriter(w)}
}

// Write emits the header followed by one row per account, then flushes.
func (e *Encoder) Write(accounts []models.Account) error {
	err := e.writer.Write(outputHeader)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(outputHeader))
	for _, acc := range accounts {
		row[0] = strconv.FormatUint(uint64(acc.Client), 10)
		row[1] = acc.Available.StringFixed(AmountScale)
		row[2] = acc.Held.StringFixed(AmountScale)
		row[3] = acc.Total().StringFixed(AmountScale)
		row[4] = strconv.FormatBool(acc.Locked)

		err = e.writer.Write(row)
		if err != nil {
			return fmt.Errorf("write account %d: %w", acc.Client, err)
		}
	}

	e.writer.Flush()

	err = e.writer.Error()
	if err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}
