package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Slot identifies one of the two independent daily reveal tracks.
type Slot string

const (
	SlotDay   Slot = "DAY"
	SlotNight Slot = "NIGHT"
)

// Slots lists every slot in display order.
var Slots = []Slot{SlotDay, SlotNight}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	return s == SlotDay || s == SlotNight
}

// ParseSlot accepts a slot name in any case.
func ParseSlot(v string) (Slot, error) {
	s := Slot(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown slot %q", v)
	}
	return s, nil
}

// LuckyNumber is a date-stamped, time-gated number for a single slot.
// Visibility is derived from Date, RevealTime and the current instant and is
// never stored.
type LuckyNumber struct {
	ID         uuid.UUID `json:"id"`
	Date       string    `json:"date"`        // YYYY-MM-DD, local-zone calendar date
	Slot       Slot      `json:"slot"`        // DAY or NIGHT
	Number     string    `json:"number"`      // digits only
	RevealTime string    `json:"reveal_time"` // HH:MM, 24h, zero padded
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
