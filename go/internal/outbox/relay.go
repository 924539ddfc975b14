package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type RelayConfig struct {
	PollInterval time.Duration // how often to sweep for unsent rows
	BatchSize    int32
	MaxRetries   int
	RetryDelay   time.Duration // grows linearly with each retry
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    100,
		MaxRetries:   5,
		RetryDelay:   200 * time.Millisecond,
	}
}

// Relay publishes outbox rows as they are notified, and sweeps for missed
// rows on every poll.
type Relay struct {
	store     Store
	publisher Publisher
	clock     clockwork.Clock
	cfg       RelayConfig
	notify    <-chan *pq.Notification

	mu            sync.Mutex
	running       bool
	published     uint64
	failed        uint64
	lastPublished time.Time
}

// RelayStats is a point-in-time view of relay progress.
type RelayStats struct {
	Running       bool      `json:"running"`
	Published     uint64    `json:"published"`
	Failed        uint64    `json:"failed"`
	LastPublished time.Time `json:"last_published"`
}

func (r *Relay) Stats() RelayStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RelayStats{
		Running:       r.running,
		Published:     r.published,
		Failed:        r.failed,
		LastPublished: r.lastPublished,
	}
}

func (r *Relay) setRunning(running bool) {
	r.mu.Lock()
	r.running = running
	r.mu.Unlock()
}

func (r *Relay) record(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failed++
		return
	}
	r.published++
	r.lastPublished = r.clock.Now()
}

// NewRelay creates a relay. notify may be nil, in which case the relay only polls.
func NewRelay(store Store, publisher Publisher, clock clockwork.Clock, cfg RelayConfig, notify <-chan *pq.Notification) *Relay {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	def := DefaultRelayConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	return &Relay{
		store:     store,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
		notify:    notify,
	}
}

// Run relays events until ctx ends. Unsent rows are swept once at start.
func (r *Relay) Run(ctx context.Context) error {
	log.Info().
		Dur("poll_interval", r.cfg.PollInterval).
		Bool("listening", r.notify != nil).
		Msg("outbox relay started")
	r.setRunning(true)
	defer r.setRunning(false)

	if err := r.ProcessUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process unsent events")
	}

	ticker := r.clock.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox relay shutting down")
			return ctx.Err()
		case note := <-r.notify:
			if note == nil {
				// connection was re-established; the next sweep picks up anything missed
				continue
			}
			if err := r.handleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-ticker.Chan():
			if err := r.ProcessUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent events")
			}
		}
	}
}

// handleNotification publishes the outbox row whose id is extra.
func (r *Relay) handleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event ID in notification: %w", err)
	}

	event, err := r.store.FetchByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	return r.publishAndMark(ctx, event)
}

// ProcessUnsent publishes one batch of unsent rows. A row that cannot be
// published stays unsent for the next sweep.
func (r *Relay) ProcessUnsent(ctx context.Context) error {
	unsent, err := r.store.FetchUnsent(ctx, r.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}

	for _, event := range unsent {
		if err := r.publishAndMark(ctx, event); err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to relay event")
		}
	}
	return nil
}

func (r *Relay) publishAndMark(ctx context.Context, event Event) error {
	if err := r.publishWithRetry(ctx, event); err != nil {
		r.record(err)
		return err
	}
	if err := r.store.MarkSent(ctx, event.ID); err != nil {
		r.record(err)
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	r.record(nil)
	log.Debug().
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Msg("published and marked event as sent")
	return nil
}

// publishWithRetry attempts to publish an event up to MaxRetries+1 times.
func (r *Relay) publishWithRetry(ctx context.Context, event Event) error {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.cfg.RetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(delay):
			}
		}

		if err := r.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}

// NewListener opens a LISTEN connection on channel for the relay's notify feed.
func NewListener(dsn, channel string) (*pq.Listener, error) {
	l := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Error().Err(err).Msg("listener event")
		}
	})
	if err := l.Listen(channel); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}
	log.Info().Str("channel", channel).Msg("listening for notifications")
	return l, nil
}
