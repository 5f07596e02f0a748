package events

import "time"

type RecordRejected struct {
	RunID      string    `json:"run_id"`
	Line       int       `json:"line"`
	Type       string    `json:"type,omitempty"`
	Client     uint16    `json:"client"`
	Tx         uint32    `json:"tx"`
	Reason     string    `json:"reason"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}
