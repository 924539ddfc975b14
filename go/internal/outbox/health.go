package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// maxPending is the backlog above which the relay reports a warning.
const maxPending = 1000

type HealthStatus struct {
	Healthy           bool       `json:"healthy"`
	Relay             RelayStats `json:"relay"`
	PendingEvents     int64      `json:"pending_events"`
	DatabaseConnected bool       `json:"database_connected"`
	BusConnected      *bool      `json:"bus_connected,omitempty"`
	Errors            []string   `json:"errors"`
}

// PendingCounter counts unsent outbox rows.
type PendingCounter interface {
	CountUnsent(ctx context.Context) (int64, error)
}

// Connectivity is implemented by publishers that hold a live connection.
type Connectivity interface {
	Connected() bool
}

// HealthChecker reports relay health. A backlog that has not moved for
// longer than threshold marks the relay unhealthy.
type HealthChecker struct {
	relay     *Relay
	pending   PendingCounter
	publisher Publisher
	clock     clockwork.Clock
	threshold time.Duration
}

func NewHealthChecker(relay *Relay, pending PendingCounter, publisher Publisher, clock clockwork.Clock, threshold time.Duration) *HealthChecker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthChecker{
		relay:     relay,
		pending:   pending,
		publisher: publisher,
		clock:     clock,
		threshold: threshold,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Relay:   h.relay.Stats(),
		Errors:  []string{},
	}

	if !status.Relay.Running {
		status.Healthy = false
		status.Errors = append(status.Errors, "relay not running")
	}

	if c, ok := h.publisher.(Connectivity); ok {
		connected := c.Connected()
		status.BusConnected = &connected
		if !connected {
			status.Healthy = false
			status.Errors = append(status.Errors, "event bus disconnected")
		}
	}

	pending, err := h.pending.CountUnsent(ctx)
	if err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending events: %v", err))
		return status
	}
	status.DatabaseConnected = true
	status.PendingEvents = pending
	if pending > maxPending {
		status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", pending))
	}

	// only a stuck backlog counts; an idle relay with nothing to send is fine
	if pending > 0 && !status.Relay.LastPublished.IsZero() {
		if since := h.clock.Since(status.Relay.LastPublished); since > h.threshold {
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("no events published for %s", since.Round(time.Second)))
		}
	}

	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to write outbox health")
	}
}
