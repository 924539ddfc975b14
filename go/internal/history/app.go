// Package history lists lucky numbers that have already been revealed.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/reveal"
)

var ErrUnknownWindow = errors.New("unknown history window")

// Window is a retention keyword chosen by the viewer.
type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// ParseWindow accepts week, month or all. An empty value means week.
func ParseWindow(v string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(v))); w {
	case "":
		return WindowWeek, nil
	case WindowWeek, WindowMonth, WindowAll:
		return w, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWindow, v)
	}
}

// Limit is the number of records requested from the repository; 0 means all.
func (w Window) Limit() int {
	switch w {
	case WindowWeek:
		return 7
	case WindowMonth:
		return 30
	default:
		return 0
	}
}

// Repository defines what history needs from the lucky numbers store
type Repository interface {
	ListRecent(ctx context.Context, limit int) ([]models.LuckyNumber, error)
}

// App serves the history view
type App struct {
	repo  Repository
	clock clockwork.Clock
	loc   *time.Location
}

// NewApp creates a history App. loc is the zone used when a caller does not
// name one.
func NewApp(repo Repository, clock clockwork.Clock, loc *time.Location) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	return &App{
		repo:  repo,
		clock: clock,
		loc:   loc,
	}
}

// PastRecords returns the revealed records of window in the default zone.
func (a *App) PastRecords(ctx context.Context, window Window) []models.LuckyNumber {
	return a.PastRecordsIn(ctx, window, a.loc)
}

// PastRecordsIn is PastRecords for a viewer in loc. A repository failure
// yields an empty list.
func (a *App) PastRecordsIn(ctx context.Context, window Window, loc *time.Location) []models.LuckyNumber {
	if loc == nil {
		loc = a.loc
	}
	records, err := a.repo.ListRecent(ctx, window.Limit())
	if err != nil {
		log.Error().Err(err).Str("window", string(window)).Msg("failed to fetch history")
		return []models.LuckyNumber{}
	}
	return FilterRevealed(records, a.clock.Now().In(loc))
}

// FilterRevealed keeps the records already revealed at now, preserving order.
// Today's records pass only once their reveal time has been reached.
func FilterRevealed(records []models.LuckyNumber, now time.Time) []models.LuckyNumber {
	out := make([]models.LuckyNumber, 0, len(records))
	for _, rec := range records {
		if reveal.IsRecordRevealed(rec, now) {
			out = append(out, rec)
		}
	}
	return out
}
