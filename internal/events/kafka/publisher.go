package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/fastprodman/txledger/internal/models"
	"github.com/fastprodman/txledger/internal/models/events"
)

const defaultBatchSize = 100

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends one RecordRejected event per rejected or malformed record.
// Messages are keyed by client id and buffered until Flush, Close or a full batch.
type Publisher struct {
	writer    messageWriter
	runID     string
	batchSize int
	pending   []kafka.Message
	now       func() time.Time
}

func NewPublisher(brokers []string, topic string, runID uuid.UUID) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    defaultBatchSize,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}, runID)
}

func newPublisher(w messageWriter, runID uuid.UUID) *Publisher {
	return &Publisher{
		writer:    w,
		runID:     runID.String(),
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
}

func (p *Publisher) Report(ctx context.Context, o models.Outcome) error {
	if o.Applied() {
		return nil
	}

	evt := events.RecordRejected{
		RunID:      p.runID,
		Line:       o.Line,
		Client:     uint16(o.Client),
		Tx:         uint32(o.Tx),
		Reason:     o.Reason,
		Message:    o.Err.Error(),
		OccurredAt: p.now().UTC(),
	}
	if o.Type != 0 {
		evt.Type = o.Type.String()
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.pending = append(p.pending, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(o.Client), 10)),
		Value: data,
	})

	if len(p.pending) < p.batchSize {
		return nil
	}

	return p.Flush(ctx)
}

func (p *Publisher) Flush(ctx context.Context) error {
	if len(p.pending) == 0 {
		return nil
	}

	err := p.writer.WriteMessages(ctx, p.pending...)
	if err != nil {
		return fmt.Errorf("write messages: %w", err)
	}

	p.pending = p.pending[:0]

	return nil
}

// Close flushes pending events and closes the underlying writer.
func (p *Publisher) Close(ctx context.Context) error {
	ferr := p.Flush(ctx)

	cerr := p.writer.Close()
	if cerr != nil {
		cerr = fmt.Errorf("close writer: %w", cerr)
	}

	return errors.Join(ferr, cerr)
}
