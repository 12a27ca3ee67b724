package outbox

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"techstore/internal/db"
)

// Publisher delivers messages to the event bus.
type Publisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter builds a Kafka writer for a comma separated broker list. Messages
// with the same key (the order id) land on the same partition.
func NewWriter(brokersCSV, topic string) *kafka.Writer {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// Relay copies pending outbox rows to a Publisher. Delivery is at least once:
// a crash between publish and MarkSent republishes the row on the next pass.
type Relay struct {
	q         db.Querier
	publisher Publisher
	batch     int
	every     time.Duration
	logger    *log.Logger
}

func NewRelay(q db.Querier, publisher Publisher, batch int, every time.Duration, logger *log.Logger) *Relay {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if batch <= 0 {
		batch = 100
	}
	if every <= 0 {
		every = 2 * time.Second
	}
	return &Relay{q: q, publisher: publisher, batch: batch, every: every, logger: logger}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()
	for {
		if n, err := r.Flush(ctx); err != nil {
			r.logger.Printf("outbox relay: flush error=%v", err)
		} else if n > 0 {
			r.logger.Printf("outbox relay: published=%d", n)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Flush publishes one batch and returns how many rows were marked sent.
// It stops at the first failure so rows keep their order.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	records, err := FetchPending(ctx, r.q, r.batch)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, rec := range records {
		msg, err := message(rec)
		if err != nil {
			return sent, err
		}
		if err := r.publisher.WriteMessages(ctx, msg); err != nil {
			return sent, err
		}
		if err := MarkSent(ctx, r.q, rec.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func message(rec Record) (kafka.Message, error) {
	data, err := json.Marshal(Envelope{
		EventID:   rec.EventID,
		Type:      rec.Topic,
		CreatedAt: rec.CreatedAt.UTC(),
		Payload:   rec.Payload,
	})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(rec.Key),
		Value: data,
		Time:  rec.CreatedAt.UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(rec.Topic)},
		},
	}, nil
}
