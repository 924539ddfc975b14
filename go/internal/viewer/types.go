// Package viewer serves the public side: slot metadata and the current
// reveal state of each slot.
package viewer

import (
	"time"

	"github.com/0xpratik010/tridev/go/internal/countdown"
	"github.com/0xpratik010/tridev/go/internal/luckynumbers"
	"github.com/0xpratik010/tridev/go/internal/models"
)

// SlotInfo is the display metadata of a slot.
type SlotInfo struct {
	Slot      models.Slot `yaml:"slot" json:"slot"`
	Title     string      `yaml:"title" json:"title"`
	TimeRange string      `yaml:"time_range" json:"time_range"`
}

// DefaultSlots is used when no slot file is configured.
func DefaultSlots() []SlotInfo {
	return []SlotInfo{
		{Slot: models.SlotDay, Title: "Tridev Day", TimeRange: "Morning 11:00 am - 12:00 pm"},
		{Slot: models.SlotNight, Title: "Tridev Night", TimeRange: "Evening 7:00 pm - 8:00 pm"},
	}
}

// SlotState is the wire form of a countdown snapshot. The number is withheld
// until the record is revealed.
type SlotState struct {
	Slot             string             `json:"slot"`
	Title            string             `json:"title"`
	TimeRange        string             `json:"time_range"`
	Phase            string             `json:"phase"`
	LuckyNumber      *luckynumbers.View `json:"lucky_number,omitempty"`
	CurrentTime      time.Time          `json:"current_time"`
	RevealAt         *time.Time         `json:"reveal_at,omitempty"`
	SecondsRemaining int64              `json:"seconds_remaining"`
}

// NewSlotState converts snap for the wire.
func NewSlotState(snap countdown.Snapshot, info SlotInfo) *SlotState {
	state := &SlotState{
		Slot:             string(snap.Slot),
		Title:            info.Title,
		TimeRange:        info.TimeRange,
		Phase:            string(snap.Phase),
		CurrentTime:      snap.CurrentTime,
		RevealAt:         snap.RevealAt,
		SecondsRemaining: snap.SecondsRemaining,
	}
	if snap.Record != nil {
		view := luckynumbers.ToView(*snap.Record)
		if snap.Phase != countdown.PhaseRevealed {
			view.Number = ""
		}
		state.LuckyNumber = view
	}
	return state
}
