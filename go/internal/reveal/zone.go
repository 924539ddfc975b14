package reveal

import (
	"fmt"
	"time"
)

// LoadZone resolves a viewer-supplied IANA zone name. An empty name yields
// fallback, or time.Local when fallback is nil.
func LoadZone(name string, fallback *time.Location) (*time.Location, error) {
	if name == "" {
		if fallback == nil {
			return time.Local, nil
		}
		return fallback, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}
