// Package outbox stores domain events next to the business writes that caused
// them and relays pending rows to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"techstore/internal/db"
)

const EventOrderPlaced = "order.placed"

// Event is a message waiting to be written into the outbox table.
type Event struct {
	ID      string
	Type    string
	Key     string
	Payload any
}

// Record is a stored outbox row.
type Record struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at"`
}

// Envelope is the JSON document published for each record.
type Envelope struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Insert writes ev using q, normally the caller's open transaction. An empty
// event id is filled with a random UUID.
func Insert(ctx context.Context, q db.Querier, ev Event) error {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return err
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	_, err = q.Exec(ctx, `INSERT INTO outbox(event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`, ev.ID, ev.Type, ev.Key, data)
	return err
}

func MarkSent(ctx context.Context, q db.Querier, id int64) error {
	_, err := q.Exec(ctx, `UPDATE outbox SET sent_at = now() WHERE id = $1`, id)
	return err
}

func FetchPending(ctx context.Context, q db.Querier, limit int) ([]Record, error) {
	rows, err := q.Query(ctx, `
SELECT id, event_id, topic, key, payload, created_at, sent_at
FROM outbox
WHERE sent_at IS NULL
ORDER BY id
LIMIT $1
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
