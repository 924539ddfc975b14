package events

import (
	"time"

	"github.com/0xpratik010/tridev/go/internal/models"
)

// Event types written to the lucky number outbox and published on the bus.
const (
	EventTypeLuckyNumberCreated = "LuckyNumberCreated"
	EventTypeLuckyNumberUpdated = "LuckyNumberUpdated"
	EventTypeLuckyNumberDeleted = "LuckyNumberDeleted"
)

// LuckyNumberPayload is the payload for LuckyNumberCreated and LuckyNumberUpdated events
type LuckyNumberPayload struct {
	LuckyNumberID string    `json:"lucky_number_id"`
	Date          string    `json:"date"`
	Slot          string    `json:"slot"`
	Number        string    `json:"number"`
	RevealTime    string    `json:"reveal_time"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// LuckyNumberDeletedPayload is the payload for a LuckyNumberDeleted event
type LuckyNumberDeletedPayload struct {
	LuckyNumberID string    `json:"lucky_number_id"`
	Date          string    `json:"date"`
	Slot          string    `json:"slot"`
	DeletedAt     time.Time `json:"deleted_at"`
}

// NewLuckyNumberPayload snapshots rec at occurredAt.
func NewLuckyNumberPayload(rec models.LuckyNumber, occurredAt time.Time) LuckyNumberPayload {
	return LuckyNumberPayload{
		LuckyNumberID: rec.ID.String(),
		Date:          rec.Date,
		Slot:          string(rec.Slot),
		Number:        rec.Number,
		RevealTime:    rec.RevealTime,
		OccurredAt:    occurredAt,
	}
}
