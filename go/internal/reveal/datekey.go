// Package reveal holds the time-gating rules for lucky numbers: local date
// keys, the reveal predicate and the per-slot resolver.
package reveal

import (
	"fmt"
	"time"
)

// DateKeyLayout is the canonical YYYY-MM-DD form exchanged with the repository.
const DateKeyLayout = "2006-01-02"

// DateKey returns the calendar date of t in t's own location. Callers pass
// the viewer's local time; converting to UTC first would shift late-evening
// instants onto the next day.
func DateKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseDateKey decodes key into midnight of that date in loc. Midnight that
// falls inside a DST gap is normalized forward by time.Date, which keeps the
// calendar date intact.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

// ValidDateKey reports whether key is a well-formed YYYY-MM-DD date.
func ValidDateKey(key string) bool {
	t, err := ParseDateKey(key, time.UTC)
	return err == nil && DateKey(t) == key
}
