package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/reveal"
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the real clock, mostly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLocation sets the viewer's local zone. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithConfig overrides the tick interval and fetch timeout.
func WithConfig(cfg Config) Option {
	return func(c *Controller) { c.cfg = cfg.withDefaults() }
}

// WithOnChange registers an observer called from the loop goroutine on every
// transition and every tick. It must not block.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

type fetchResult struct {
	gen     uint64
	records []models.LuckyNumber
	err     error
}

// Controller owns the live state of one slot for one viewer.
type Controller struct {
	fetcher  Fetcher
	clock    clockwork.Clock
	loc      *time.Location
	cfg      Config
	onChange func(Snapshot)

	slotCh    chan models.Slot
	refetchCh chan struct{}

	mu   sync.RWMutex
	snap Snapshot

	// owned by the Run goroutine
	slot    models.Slot
	phase   Phase
	record  *models.LuckyNumber
	gen     uint64
	abandon context.CancelFunc
}

// NewController creates a controller for slot. Nothing happens until Run.
func NewController(slot models.Slot, fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:   fetcher,
		clock:     clockwork.NewRealClock(),
		loc:       time.Local,
		cfg:       DefaultConfig(),
		slotCh:    make(chan models.Slot, 1),
		refetchCh: make(chan struct{}, 1),
		slot:      slot,
		phase:     PhaseLoading,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snap = Snapshot{Slot: slot, Phase: PhaseLoading, CurrentTime: c.now()}
	return c
}

// Snapshot returns the most recently published state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// SetSlot switches the controller to another slot and reloads. The latest
// pending request wins.
func (c *Controller) SetSlot(slot models.Slot) {
	for {
		select {
		case c.slotCh <- slot:
			return
		default:
		}
		select {
		case <-c.slotCh:
		default:
		}
	}
}

// Refetch reloads the current slot. Extra requests while one is queued are
// coalesced.
func (c *Controller) Refetch() {
	select {
	case c.refetchCh <- struct{}{}:
	default:
	}
}

// Run drives the controller until ctx ends. It always returns ctx.Err().
func (c *Controller) Run(ctx context.Context) error {
	results := make(chan fetchResult, 1)

	var ticker clockwork.Ticker
	var tickCh <-chan time.Time
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tickCh = nil
		}
	}
	defer func() {
		stopTicker()
		if c.abandon != nil {
			c.abandon()
		}
	}()

	c.load(ctx, results)
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("slot", string(c.slot)).Msg("countdown stopped")
			return ctx.Err()

		case res := <-results:
			if res.gen != c.gen {
				continue
			}
			c.resolve(res)
			if ticker == nil {
				ticker = c.clock.NewTicker(c.cfg.TickInterval)
				tickCh = ticker.Chan()
			}

		case <-tickCh:
			c.tick()

		case slot := <-c.slotCh:
			stopTicker()
			c.slot = slot
			c.load(ctx, results)

		case <-c.refetchCh:
			stopTicker()
			c.load(ctx, results)
		}
	}
}

// load enters LOADING and starts the single outstanding fetch. Any earlier
// fetch is abandoned and its result will never be delivered.
func (c *Controller) load(ctx context.Context, results chan<- fetchResult) {
	if c.abandon != nil {
		c.abandon()
	}
	c.gen++
	c.phase = PhaseLoading
	c.record = nil

	now := c.now()
	gen, slot, dateKey := c.gen, c.slot, reveal.DateKey(now)

	abandonCtx, abandon := context.WithCancel(ctx)
	c.abandon = abandon
	c.publish(now)

	go func() {
		fetchCtx, cancel := context.WithTimeout(abandonCtx, c.cfg.FetchTimeout)
		defer cancel()

		records, err := c.fetcher.ListBySlotAndDate(fetchCtx, slot, dateKey)
		select {
		case results <- fetchResult{gen: gen, records: records, err: err}:
		case <-abandonCtx.Done():
		}
	}()
}

func (c *Controller) resolve(res fetchResult) {
	now := c.now()
	if res.err != nil {
		log.Warn().Err(res.err).
			Str("slot", string(c.slot)).
			Str("date", reveal.DateKey(now)).
			Msg("failed to fetch lucky numbers")
		c.phase = PhaseEmpty
		c.publish(now)
		return
	}

	phase, rec, err := Resolve(c.slot, res.records, now)
	if err != nil {
		log.Error().Err(err).Str("slot", string(c.slot)).Msg("failed to resolve lucky number")
	}
	c.phase, c.record = phase, rec

	log.Debug().
		Str("slot", string(c.slot)).
		Str("phase", string(c.phase)).
		Int("records", len(res.records)).
		Msg("countdown resolved")
	c.publish(now)
}

func (c *Controller) tick() {
	now := c.now()
	if c.phase == PhasePending && c.record != nil && reveal.IsRecordRevealed(*c.record, now) {
		c.phase = PhaseRevealed
		log.Info().
			Str("slot", string(c.slot)).
			Str("record_id", c.record.ID.String()).
			Msg("lucky number revealed")
	}
	c.publish(now)
}

func (c *Controller) publish(now time.Time) {
	snap := NewSnapshot(c.slot, c.phase, c.record, now, c.loc)

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
}

func (c *Controller) now() time.Time {
	return c.clock.Now().In(c.loc)
}
