package reveal

import (
	"errors"
	"sort"
	"time"

	"github.com/0xpratik010/tridev/go/internal/models"
)

// ErrNotFoundToday means the slot has no record for the current date. It is
// a normal state, not a failure.
var ErrNotFoundToday = errors.New("no lucky number for today")

// ResolveCurrent picks the record a slot should display at now. The upcoming
// record wins while any is pending; once all have passed the latest one stays
// on screen for the rest of the day. Records for other slots or dates are
// ignored.
func ResolveCurrent(slot models.Slot, records []models.LuckyNumber, now time.Time) (*models.LuckyNumber, error) {
	today := DateKey(now)

	candidates := make([]models.LuckyNumber, 0, len(records))
	for _, rec := range records {
		if rec.Slot == slot && rec.Date == today {
			candidates = append(candidates, rec)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFoundToday
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RevealTime < candidates[j].RevealTime
	})

	for i := range candidates {
		if !IsRevealed(candidates[i].RevealTime, now) {
			return &candidates[i], nil
		}
	}
	return &candidates[len(candidates)-1], nil
}
