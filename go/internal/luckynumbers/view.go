package luckynumbers

import (
	"time"

	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/reveal"
)

// View is the wire form of a lucky number shared by the RPC services.
type View struct {
	ID              string    `json:"id"`
	Date            string    `json:"date"`
	Slot            string    `json:"slot"`
	Number          string    `json:"number"`
	RevealTime      string    `json:"reveal_time"`
	RevealTimeLabel string    `json:"reveal_time_label"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToView converts a record to its wire form
func ToView(rec models.LuckyNumber) *View {
	return &View{
		ID:              rec.ID.String(),
		Date:            rec.Date,
		Slot:            string(rec.Slot),
		Number:          rec.Number,
		RevealTime:      rec.RevealTime,
		RevealTimeLabel: reveal.FormatClock(rec.RevealTime),
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// ToViews converts a list of records
func ToViews(recs []models.LuckyNumber) []*View {
	out := make([]*View, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ToView(rec))
	}
	return out
}
