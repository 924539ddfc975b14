package countdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xpratik010/tridev/go/internal/models"
)

type fakeFetcher struct {
	mu      sync.Mutex
	records []models.LuckyNumber
	err     error
	calls   int
	keys    []string
	block   map[models.Slot]chan struct{}
}

func (f *fakeFetcher) ListBySlotAndDate(ctx context.Context, slot models.Slot, dateKey string) ([]models.LuckyNumber, error) {
	f.mu.Lock()
	f.calls++
	f.keys = append(f.keys, dateKey)
	gate := f.block[slot]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.LuckyNumber
	for _, rec := range f.records {
		if rec.Slot == slot && rec.Date == dateKey {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) setRecords(recs []models.LuckyNumber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = recs
}

func rec(date string, slot models.Slot, revealTime, number string) models.LuckyNumber {
	return models.LuckyNumber{ID: uuid.New(), Date: date, Slot: slot, RevealTime: revealTime, Number: number}
}

type harness struct {
	t     *testing.T
	clock *clockwork.FakeClock
	ctrl  *Controller
	snaps chan Snapshot
	done  chan error
	stop  context.CancelFunc
}

func start(t *testing.T, slot models.Slot, fetcher Fetcher, at time.Time, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		clock: clockwork.NewFakeClockAt(at),
		snaps: make(chan Snapshot, 128),
		done:  make(chan error, 1),
	}
	opts = append([]Option{
		WithClock(h.clock),
		WithLocation(at.Location()),
		WithOnChange(func(s Snapshot) { h.snaps <- s }),
	}, opts...)
	h.ctrl = NewController(slot, fetcher, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	h.stop = cancel
	go func() { h.done <- h.ctrl.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

// waitPhase drains snapshots until one matches phase.
func (h *harness) waitPhase(phase Phase) Snapshot {
	h.t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-h.snaps:
			if s.Phase == phase {
				return s
			}
		case <-timeout:
			h.t.Fatalf("timed out waiting for phase %s, last snapshot %+v", phase, h.ctrl.Snapshot())
		}
	}
}

// advance moves the clock one tick once the ticker is armed and returns the
// snapshot published for that tick.
func (h *harness) advance(d time.Duration) Snapshot {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(h.t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(d)
	want := h.clock.Now()
	for {
		select {
		case s := <-h.snaps:
			if s.CurrentTime.Equal(want) {
				return s
			}
		case <-ctx.Done():
			h.t.Fatalf("no snapshot published for %s", want)
		}
	}
}

func TestControllerPendingFlipsToRevealedWithoutRefetch(t *testing.T) {
	fetcher := &fakeFetcher{records: []models.LuckyNumber{
		rec("2024-06-01", models.SlotDay, "09:00", "111"),
		rec("2024-06-01", models.SlotDay, "17:00", "222"),
	}}
	h := start(t, models.SlotDay, fetcher, time.Date(2024, 6, 1, 16, 59, 58, 0, time.UTC))

	h.waitPhase(PhaseLoading)
	s := h.waitPhase(PhasePending)
	require.NotNil(t, s.Record)
	assert.Equal(t, "222", s.Record.Number)
	assert.Equal(t, int64(2), s.SecondsRemaining)
	require.NotNil(t, s.RevealAt)
	assert.Equal(t, time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC), *s.RevealAt)

	s = h.advance(time.Second)
	assert.Equal(t, PhasePending, s.Phase)
	assert.Equal(t, int64(1), s.SecondsRemaining)

	s = h.advance(time.Second)
	assert.Equal(t, PhaseRevealed, s.Phase)
	assert.Zero(t, s.SecondsRemaining)
	assert.Equal(t, "222", s.Record.Number)

	s = h.advance(time.Second)
	assert.Equal(t, PhaseRevealed, s.Phase)

	assert.Equal(t, 1, fetcher.callCount())
	assert.Equal(t, PhaseRevealed, h.ctrl.Snapshot().Phase)
}

func TestControllerRevealedOnLoad(t *testing.T) {
	fetcher := &fakeFetcher{records: []models.LuckyNumber{
		rec("2024-06-01", models.SlotNight, "19:00", "7"),
	}}
	h := start(t, models.SlotNight, fetcher, time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC))

	s := h.waitPhase(PhaseRevealed)
	assert.Equal(t, "7", s.Record.Number)
}

func TestControllerUsesLocalDate(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	fetcher := &fakeFetcher{records: []models.LuckyNumber{
		rec("2024-06-02", models.SlotDay, "11:00", "5"),
	}}
	// 2024-06-01 20:00 UTC is already 2024-06-02 01:30 in Kolkata.
	at := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC).In(kolkata)
	h := start(t, models.SlotDay, fetcher, at)

	s := h.waitPhase(PhasePending)
	assert.Equal(t, "5", s.Record.Number)
	fetcher.mu.Lock()
	assert.Equal(t, []string{"2024-06-02"}, fetcher.keys)
	fetcher.mu.Unlock()
}

func TestControllerEmpty(t *testing.T) {
	t.Run("no records today", func(t *testing.T) {
		fetcher := &fakeFetcher{records: []models.LuckyNumber{
			rec("2024-05-31", models.SlotDay, "09:00", "1"),
		}}
		h := start(t, models.SlotDay, fetcher, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
		s := h.waitPhase(PhaseEmpty)
		assert.Nil(t, s.Record)

		s = h.advance(time.Second)
		assert.Equal(t, PhaseEmpty, s.Phase)
		assert.Equal(t, 1, fetcher.callCount())
	})

	t.Run("fetch failure", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("connection refused")}
		h := start(t, models.SlotDay, fetcher, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
		h.waitPhase(PhaseEmpty)
	})

	t.Run("fetch timeout", func(t *testing.T) {
		slow := fetcherFunc(func(ctx context.Context, _ models.Slot, _ string) ([]models.LuckyNumber, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		h := start(t, models.SlotDay, slow, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			WithConfig(Config{FetchTimeout: 20 * time.Millisecond}))
		h.waitPhase(PhaseEmpty)
	})
}

type fetcherFunc func(ctx context.Context, slot models.Slot, dateKey string) ([]models.LuckyNumber, error)

func (f fetcherFunc) ListBySlotAndDate(ctx context.Context, slot models.Slot, dateKey string) ([]models.LuckyNumber, error) {
	return f(ctx, slot, dateKey)
}

func TestControllerRefetchLeavesEmpty(t *testing.T) {
	fetcher := &fakeFetcher{}
	h := start(t, models.SlotDay, fetcher, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	h.waitPhase(PhaseEmpty)

	fetcher.setRecords([]models.LuckyNumber{rec("2024-06-01", models.SlotDay, "11:00", "9")})
	h.ctrl.Refetch()

	h.waitPhase(PhaseLoading)
	s := h.waitPhase(PhasePending)
	assert.Equal(t, "9", s.Record.Number)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestControllerSlotChangeDiscardsStaleFetch(t *testing.T) {
	dayGate := make(chan struct{})
	fetcher := &fakeFetcher{
		records: []models.LuckyNumber{
			rec("2024-06-01", models.SlotDay, "11:00", "1"),
			rec("2024-06-01", models.SlotNight, "19:00", "2"),
		},
		block: map[models.Slot]chan struct{}{models.SlotDay: dayGate},
	}
	h := start(t, models.SlotDay, fetcher, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	h.waitPhase(PhaseLoading)

	h.ctrl.SetSlot(models.SlotNight)
	s := h.waitPhase(PhasePending)
	assert.Equal(t, models.SlotNight, s.Slot)
	assert.Equal(t, "2", s.Record.Number)

	close(dayGate)
	s = h.advance(time.Second)
	assert.Equal(t, models.SlotNight, s.Slot)
	assert.Equal(t, "2", s.Record.Number)
}

func TestControllerTeardown(t *testing.T) {
	fetcher := &fakeFetcher{}
	h := start(t, models.SlotDay, fetcher, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	h.waitPhase(PhaseEmpty)

	h.stop()
	select {
	case err := <-h.done:
		assert.ErrorIs(t, err, context.Canceled)
		h.done <- err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{TickInterval: 5 * time.Second}.withDefaults()
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
}
