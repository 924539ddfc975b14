package reveal

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/0xpratik010/tridev/go/internal/models"
)

func TestIsRevealed(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, IsRevealed("17:00", day.Add(16*time.Hour+59*time.Minute+59*time.Second)))
	assert.True(t, IsRevealed("17:00", day.Add(17*time.Hour)), "boundary is inclusive")
	assert.True(t, IsRevealed("17:00", day.Add(18*time.Hour)))
	assert.False(t, IsRevealed("not-a-time", day.Add(23*time.Hour)))
}

func TestIsRecordRevealed(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	past := models.LuckyNumber{Date: "2024-05-31", RevealTime: "23:59"}
	todayDone := models.LuckyNumber{Date: "2024-06-01", RevealTime: "09:00"}
	todayPending := models.LuckyNumber{Date: "2024-06-01", RevealTime: "17:00"}
	future := models.LuckyNumber{Date: "2024-06-02", RevealTime: "00:00"}

	assert.True(t, IsRecordRevealed(past, now))
	assert.True(t, IsRecordRevealed(todayDone, now))
	assert.False(t, IsRecordRevealed(todayPending, now))
	assert.False(t, IsRecordRevealed(future, now))
}

func TestRecordRevealAt(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)

	at, err := RecordRevealAt(models.LuckyNumber{Date: "2024-03-10", RevealTime: "19:00"}, ny)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 19, 0, 0, 0, ny), at)
}

func TestIsRevealedMonotonicProperty(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	days := []time.Time{
		time.Date(2024, 3, 10, 0, 0, 0, 0, ny), // spring forward
		time.Date(2024, 11, 3, 0, 0, 0, 0, ny), // fall back
		time.Date(2024, 6, 1, 0, 0, 0, 0, ny),
	}

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 500
	properties := gopter.NewProperties(params)

	properties.Property("once revealed, stays revealed later the same day", prop.ForAll(
		func(dayIdx, revealMin, secA, secB int) bool {
			y, m, d := days[dayIdx].Date()
			at := func(sec int) time.Time {
				return time.Date(y, m, d, sec/3600, (sec%3600)/60, sec%60, 0, ny)
			}
			earlier, later := at(secA), at(secB)
			if earlier.After(later) {
				earlier, later = later, earlier
			}
			clock := fmt.Sprintf("%02d:%02d", revealMin/60, revealMin%60)
			return !IsRevealed(clock, earlier) || IsRevealed(clock, later)
		},
		gen.IntRange(0, len(days)-1),
		gen.IntRange(0, 24*60-1),
		gen.IntRange(0, 24*3600-1),
		gen.IntRange(0, 24*3600-1),
	))

	properties.TestingRun(t)
}
