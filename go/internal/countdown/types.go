// Package countdown drives the live per-slot reveal view: it loads the
// slot's records for today once, then re-evaluates the reveal predicate on
// every tick until the held record flips to revealed.
package countdown

import (
	"context"
	"time"

	"github.com/0xpratik010/tridev/go/internal/models"
)

// Phase is the controller's view state.
type Phase string

const (
	PhaseLoading  Phase = "LOADING"
	PhaseEmpty    Phase = "EMPTY"
	PhasePending  Phase = "PENDING"
	PhaseRevealed Phase = "REVEALED"
)

// Snapshot is what presentation renders for one slot at one instant.
type Snapshot struct {
	Slot             models.Slot         `json:"slot"`
	Phase            Phase               `json:"phase"`
	Record           *models.LuckyNumber `json:"record,omitempty"`
	CurrentTime      time.Time           `json:"current_time"`
	RevealAt         *time.Time          `json:"reveal_at,omitempty"`
	SecondsRemaining int64               `json:"seconds_remaining"`
}

// Fetcher loads the candidate records for one slot on one local date.
type Fetcher interface {
	ListBySlotAndDate(ctx context.Context, slot models.Slot, dateKey string) ([]models.LuckyNumber, error)
}

// Config tunes the controller loop.
type Config struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// DefaultConfig ticks every second and gives up on a fetch after ten.
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second,
		FetchTimeout: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	return c
}
