// Package outbox relays lucky number change events from the outbox table
// to the event bus.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotifyChannel is the Postgres channel the outbox insert trigger notifies on.
const NotifyChannel = "lucky_number_outbox"

// Event is one unsent outbox row.
type Event struct {
	ID            uuid.UUID       `json:"id"`
	LuckyNumberID uuid.UUID       `json:"lucky_number_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Publisher delivers an event to the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Store reads and acknowledges outbox rows.
type Store interface {
	FetchUnsent(ctx context.Context, limit int32) ([]Event, error)
	FetchByID(ctx context.Context, id uuid.UUID) (Event, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}
