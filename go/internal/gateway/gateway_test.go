package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xpratik010/tridev/go/internal/countdown"
	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/viewer"
)

type countingFetcher struct {
	mu      sync.Mutex
	records []models.LuckyNumber
	calls   map[models.Slot]int
}

func (f *countingFetcher) ListBySlotAndDate(_ context.Context, slot models.Slot, dateKey string) ([]models.LuckyNumber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[models.Slot]int)
	}
	f.calls[slot]++
	var out []models.LuckyNumber
	for _, r := range f.records {
		if r.Slot == slot && r.Date == dateKey {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *countingFetcher) count(slot models.Slot) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[slot]
}

type testEnv struct {
	srv     *httptest.Server
	clock   *clockwork.FakeClock
	fetcher *countingFetcher
	cm      *ConnectionManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 18, 59, 58, 0, time.UTC))
	fetcher := &countingFetcher{records: []models.LuckyNumber{
		{ID: uuid.New(), Date: "2024-06-01", Slot: models.SlotDay, RevealTime: "11:00", Number: "4821"},
		{ID: uuid.New(), Date: "2024-06-01", Slot: models.SlotNight, RevealTime: "19:00", Number: "77"},
	}}
	directory := viewer.NewApp(fetcher, clock, time.UTC, nil, 0)
	cm := NewConnectionManager(DefaultConnectionConfig(), fetcher, directory, clock, countdown.DefaultConfig())

	mux := http.NewServeMux()
	NewWebSocketHandler(cm).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		cm.Shutdown()
		srv.Close()
	})
	return &testEnv{srv: srv, clock: clock, fetcher: fetcher, cm: cm}
}

func (e *testEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws/slots" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerMessage) bool) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		if match(msg) {
			return msg
		}
	}
}

// readAll reads messages until every matcher has been satisfied, in any
// order, and returns the first match for each.
func readAll(t *testing.T, conn *websocket.Conn, matchers ...func(ServerMessage) bool) []ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	found := make([]ServerMessage, len(matchers))
	seen := make([]bool, len(matchers))
	remaining := len(matchers)
	for remaining > 0 {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		for i, match := range matchers {
			if !seen[i] && match(msg) {
				found[i], seen[i] = msg, true
				remaining--
			}
		}
	}
	return found
}

func phaseOf(slot models.Slot, phase countdown.Phase) func(ServerMessage) bool {
	return func(m ServerMessage) bool {
		return m.Type == MessageSlotState && m.State.Slot == string(slot) && m.State.Phase == string(phase)
	}
}

func TestSlotStreamRevealsNightOnTick(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "?tz=UTC")

	// the two slot controllers run independently, so their first frames interleave
	first := readAll(t, conn,
		phaseOf(models.SlotDay, countdown.PhaseRevealed),
		phaseOf(models.SlotNight, countdown.PhasePending),
	)
	day, night := first[0], first[1]
	assert.Equal(t, "4821", day.State.LuckyNumber.Number)
	assert.Equal(t, "Tridev Day", day.State.Title)
	assert.Empty(t, night.State.LuckyNumber.Number)
	assert.Equal(t, int64(2), night.State.SecondsRemaining)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	// one ticker per slot
	require.NoError(t, env.clock.BlockUntilContext(ctx, 2))
	env.clock.Advance(2 * time.Second)

	night = readUntil(t, conn, phaseOf(models.SlotNight, countdown.PhaseRevealed))
	assert.Equal(t, "77", night.State.LuckyNumber.Number)
	assert.Equal(t, 1, env.fetcher.count(models.SlotNight))

	assert.Equal(t, ConnectionStats{TotalConnections: 1, ActiveCountdowns: 2}, env.cm.GetConnectionStats())
}

func TestSlotStreamClientMessages(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "?slot=day")

	readUntil(t, conn, phaseOf(models.SlotDay, countdown.PhaseRevealed))

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageSelectSlot, Slot: "NIGHT"}))
	readUntil(t, conn, phaseOf(models.SlotNight, countdown.PhaseLoading))
	readUntil(t, conn, phaseOf(models.SlotNight, countdown.PhasePending))

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageRefocus}))
	readUntil(t, conn, phaseOf(models.SlotNight, countdown.PhaseLoading))
	readUntil(t, conn, phaseOf(models.SlotNight, countdown.PhasePending))
	assert.Equal(t, 2, env.fetcher.count(models.SlotNight))

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageSelectSlot, Slot: "NOON"}))
	msg := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageError })
	assert.Contains(t, msg.Error, "NOON")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	msg = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageError })
	assert.Equal(t, "malformed message", msg.Error)
}

func TestSlotStreamRejectsBadQuery(t *testing.T) {
	env := newTestEnv(t)

	res, err := http.Get(env.srv.URL + "/ws/slots?tz=Atlantis/Capital")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = http.Get(env.srv.URL + "/ws/slots?slot=dusk")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestParseClientMessage(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"select_slot","slot":"NIGHT"}`))
	require.NoError(t, err)
	assert.Equal(t, MessageSelectSlot, msg.Type)
	assert.Equal(t, "NIGHT", msg.Slot)

	_, err = ParseClientMessage([]byte(`not json`))
	assert.Error(t, err)
}
