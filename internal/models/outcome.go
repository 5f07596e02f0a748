package models

// Outcome is the per-record result of a batch run.
// Line is the 1-based input line, or 0 when the source has no line numbers.
type Outcome struct {
	Line   int
	Type   TxType
	Client ClientID
	Tx     TxID
	Err    error
	Reason string
}

func (o Outcome) Applied() bool {
	return o.Err == nil
}
