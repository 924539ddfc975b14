// Package throttle bounds login attempts per key over a sliding window.
package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLimit  = 5
	DefaultWindow = 10 * time.Minute
)

// Config bounds attempts to Limit per Window.
type Config struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// Decision is the outcome of one attempt.
type Decision struct {
	Allowed bool
	// RetryAfter is set when blocked: how long until the oldest counted
	// attempt leaves the window.
	RetryAfter time.Duration
	// Remaining is how many more attempts fit in the window after this one.
	Remaining int
}

// AttemptStore persists the attempt instants of each key.
type AttemptStore interface {
	Load(ctx context.Context, key string) ([]time.Time, error)
	Save(ctx context.Context, key string, attempts []time.Time, ttl time.Duration) error
	Clear(ctx context.Context, key string) error
}

// Recorded is the outcome of an attempt decided inside the store.
type Recorded struct {
	Allowed bool
	// Count is the number of attempts in the window, including this one
	// when allowed.
	Count int
	// Oldest is the oldest attempt still in the window; set when blocked.
	Oldest time.Time
}

// AtomicStore is an AttemptStore shared between processes. Record prunes,
// checks and appends as one operation on the store side.
type AtomicStore interface {
	AttemptStore
	Record(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (Recorded, error)
}

// Throttle is a sliding-window attempt limiter.
type Throttle struct {
	store AttemptStore
	clock clockwork.Clock
	cfg   Config

	mu sync.Mutex
}

// New creates a throttle. Zero config fields take the defaults.
func New(store AttemptStore, clock clockwork.Clock, cfg Config) *Throttle {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Throttle{
		store: store,
		clock: clock,
		cfg:   cfg,
	}
}

// Attempt records an attempt for key unless the window is already full.
// A blocked attempt is not recorded.
func (t *Throttle) Attempt(ctx context.Context, key string) (Decision, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if atomic, ok := t.store.(AtomicStore); ok {
		return t.attemptAtomic(ctx, atomic, key, now)
	}

	attempts, err := t.store.Load(ctx, key)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load attempts: %w", err)
	}

	recent := prune(attempts, now, t.cfg.Window)
	if len(recent) >= t.cfg.Limit {
		return t.blocked(key, len(recent), recent[0], now), nil
	}

	recent = append(recent, now)
	if err := t.store.Save(ctx, key, recent, t.cfg.Window); err != nil {
		return Decision{}, fmt.Errorf("failed to save attempts: %w", err)
	}
	return Decision{Allowed: true, Remaining: t.cfg.Limit - len(recent)}, nil
}

func (t *Throttle) attemptAtomic(ctx context.Context, store AtomicStore, key string, now time.Time) (Decision, error) {
	rec, err := store.Record(ctx, key, now, t.cfg.Limit, t.cfg.Window)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to record attempt: %w", err)
	}
	if !rec.Allowed {
		return t.blocked(key, rec.Count, rec.Oldest, now), nil
	}
	return Decision{Allowed: true, Remaining: t.cfg.Limit - rec.Count}, nil
}

func (t *Throttle) blocked(key string, count int, oldest, now time.Time) Decision {
	retry := oldest.Add(t.cfg.Window).Sub(now)
	log.Warn().
		Str("key", key).
		Int("attempts", count).
		Dur("retry_after", retry).
		Msg("login attempt throttled")
	return Decision{Allowed: false, RetryAfter: retry}
}

// Reset forgets every attempt for key, after a successful login.
func (t *Throttle) Reset(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Clear(ctx, key); err != nil {
		return fmt.Errorf("failed to clear attempts: %w", err)
	}
	return nil
}

// prune keeps the attempts younger than window, oldest first.
func prune(attempts []time.Time, now time.Time, window time.Duration) []time.Time {
	out := make([]time.Time, 0, len(attempts)+1)
	for _, at := range attempts {
		if now.Sub(at) < window {
			out = append(out, at)
		}
	}
	return out
}
