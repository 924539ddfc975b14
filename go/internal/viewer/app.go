package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/0xpratik010/tridev/go/internal/countdown"
	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/reveal"
)

// App answers one-shot slot state queries
type App struct {
	fetcher      countdown.Fetcher
	clock        clockwork.Clock
	loc          *time.Location
	fetchTimeout time.Duration
	slots        []SlotInfo
}

// NewApp creates a viewer App. An empty slots list falls back to DefaultSlots.
func NewApp(fetcher countdown.Fetcher, clock clockwork.Clock, loc *time.Location, slots []SlotInfo, fetchTimeout time.Duration) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	if len(slots) == 0 {
		slots = DefaultSlots()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = countdown.DefaultConfig().FetchTimeout
	}
	return &App{
		fetcher:      fetcher,
		clock:        clock,
		loc:          loc,
		fetchTimeout: fetchTimeout,
		slots:        slots,
	}
}

// Location is the zone used when a viewer does not send one.
func (a *App) Location() *time.Location {
	return a.loc
}

// Slots lists every slot in display order.
func (a *App) Slots() []SlotInfo {
	return append([]SlotInfo(nil), a.slots...)
}

// SlotInfo returns the metadata of slot, or a bare entry if it is not configured.
func (a *App) SlotInfo(slot models.Slot) SlotInfo {
	for _, info := range a.slots {
		if info.Slot == slot {
			return info
		}
	}
	return SlotInfo{Slot: slot, Title: string(slot)}
}

// GetSlotState evaluates slot once for a viewer in loc. A failed fetch
// yields an EMPTY snapshot.
func (a *App) GetSlotState(ctx context.Context, slot models.Slot, loc *time.Location) (countdown.Snapshot, error) {
	if !slot.Valid() {
		return countdown.Snapshot{}, fmt.Errorf("unknown slot %q", slot)
	}
	if loc == nil {
		loc = a.loc
	}

	now := a.clock.Now().In(loc)
	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	records, err := a.fetcher.ListBySlotAndDate(fetchCtx, slot, reveal.DateKey(now))
	if err != nil {
		log.Warn().Err(err).Str("slot", string(slot)).Msg("failed to fetch lucky numbers")
		return countdown.NewSnapshot(slot, countdown.PhaseEmpty, nil, now, loc), nil
	}

	phase, rec, err := countdown.Resolve(slot, records, now)
	if err != nil {
		log.Error().Err(err).Str("slot", string(slot)).Msg("failed to resolve lucky number")
	}
	return countdown.NewSnapshot(slot, phase, rec, now, loc), nil
}
