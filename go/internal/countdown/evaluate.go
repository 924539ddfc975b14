package countdown

import (
	"errors"
	"math"
	"time"

	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/reveal"
)

// Resolve picks the phase and record for slot from today's candidates.
// Having no record today is EMPTY, not an error.
func Resolve(slot models.Slot, records []models.LuckyNumber, now time.Time) (Phase, *models.LuckyNumber, error) {
	rec, err := reveal.ResolveCurrent(slot, records, now)
	switch {
	case errors.Is(err, reveal.ErrNotFoundToday):
		return PhaseEmpty, nil, nil
	case err != nil:
		return PhaseEmpty, nil, err
	case reveal.IsRecordRevealed(*rec, now):
		return PhaseRevealed, rec, nil
	default:
		return PhasePending, rec, nil
	}
}

// NewSnapshot builds the presentation state at now. The reveal instant is
// computed in loc.
func NewSnapshot(slot models.Slot, phase Phase, rec *models.LuckyNumber, now time.Time, loc *time.Location) Snapshot {
	snap := Snapshot{
		Slot:        slot,
		Phase:       phase,
		CurrentTime: now,
	}
	if rec == nil {
		return snap
	}

	cp := *rec
	snap.Record = &cp
	if at, err := reveal.RecordRevealAt(cp, loc); err == nil {
		snap.RevealAt = &at
		if phase == PhasePending {
			snap.SecondsRemaining = secondsUntil(now, at)
		}
	}
	return snap
}

func secondsUntil(now, at time.Time) int64 {
	d := at.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}
