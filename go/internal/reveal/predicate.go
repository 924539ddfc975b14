package reveal

import (
	"time"

	"github.com/0xpratik010/tridev/go/internal/models"
)

// RevealAt returns the instant on now's calendar day, in now's location, at
// which revealTime is reached.
func RevealAt(revealTime string, now time.Time) (time.Time, error) {
	hour, minute, err := ParseClock(revealTime)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, now.Location()), nil
}

// IsRevealed reports whether revealTime has passed today. The boundary is
// inclusive. A malformed time never reveals.
func IsRevealed(revealTime string, now time.Time) bool {
	at, err := RevealAt(revealTime, now)
	if err != nil {
		return false
	}
	return !now.Before(at)
}

// RecordRevealAt returns the absolute reveal instant of rec in loc.
func RecordRevealAt(rec models.LuckyNumber, loc *time.Location) (time.Time, error) {
	day, err := ParseDateKey(rec.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return RevealAt(rec.RevealTime, day)
}

// IsRecordRevealed applies the predicate across days: earlier dates are
// always revealed, later dates never are, and today defers to IsRevealed.
func IsRecordRevealed(rec models.LuckyNumber, now time.Time) bool {
	today := DateKey(now)
	switch {
	case rec.Date < today:
		return true
	case rec.Date > today:
		return false
	default:
		return IsRevealed(rec.RevealTime, now)
	}
}
