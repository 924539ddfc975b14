package reveal

import (
	"fmt"
	"regexp"
	"strconv"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock splits a zero-padded 24h HH:MM string.
func ParseClock(v string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time of day %q, want HH:MM", v)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// ValidClock reports whether v is a zero-padded HH:MM time.
func ValidClock(v string) bool {
	return clockPattern.MatchString(v)
}

// FormatClock renders HH:MM as a 12-hour label, e.g. "14:00" -> "2:00 PM".
// Malformed input is returned unchanged.
func FormatClock(v string) string {
	hour, minute, err := ParseClock(v)
	if err != nil {
		return v
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, suffix)
}
