package reveal

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestDateKeyUsesLocalCalendarDay(t *testing.T) {
	kolkata := mustLoad(t, "Asia/Kolkata")

	// 03:00 in Kolkata is still the previous day in UTC.
	early := time.Date(2024, 6, 1, 3, 0, 0, 0, kolkata)
	assert.Equal(t, "2024-06-01", DateKey(early))
	assert.Equal(t, "2024-05-31", DateKey(early.UTC()))
}

func TestParseDateKey(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	tests := []struct {
		name string
		key  string
	}{
		{"year end", "2024-12-31"},
		{"year start", "2025-01-01"},
		{"spring forward", "2024-03-10"},
		{"fall back", "2024-11-03"},
		{"leap day", "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDateKey(tt.key, ny)
			require.NoError(t, err)
			assert.Equal(t, tt.key, DateKey(d))
			assert.Equal(t, ny, d.Location())
		})
	}
}

func TestParseDateKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "2024-1-05", "2024/01/05", "2023-02-29", "2024-13-01", "24-01-05"} {
		_, err := ParseDateKey(key, time.UTC)
		assert.Error(t, err, key)
		assert.False(t, ValidDateKey(key), key)
	}
	assert.True(t, ValidDateKey("2024-06-01"))
}

func TestDateKeyRoundTripProperties(t *testing.T) {
	locs := []*time.Location{
		time.UTC,
		mustLoad(t, "America/New_York"),
		mustLoad(t, "America/Sao_Paulo"),
		mustLoad(t, "Asia/Kolkata"),
		mustLoad(t, "Australia/Lord_Howe"),
	}
	epoch := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 500
	properties := gopter.NewProperties(params)

	properties.Property("decode(encode(d)) keeps the calendar date", prop.ForAll(
		func(days int, locIdx int) bool {
			loc := locs[locIdx]
			y, m, dd := epoch.AddDate(0, 0, days).Date()
			d := time.Date(y, m, dd, 0, 0, 0, 0, loc)

			decoded, err := ParseDateKey(DateKey(d), loc)
			if err != nil {
				return false
			}
			dy, dm, ddd := decoded.Date()
			return dy == y && dm == m && ddd == dd && DateKey(decoded) == DateKey(d)
		},
		gen.IntRange(0, 365*100),
		gen.IntRange(0, len(locs)-1),
	))

	properties.TestingRun(t)
}

func TestLoadZone(t *testing.T) {
	loc, err := LoadZone("", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	utc := time.UTC
	loc, err = LoadZone("", utc)
	require.NoError(t, err)
	assert.Equal(t, utc, loc)

	loc, err = LoadZone("Asia/Kolkata", utc)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())

	_, err = LoadZone("Mars/Olympus", utc)
	assert.Error(t, err)
}
