package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/reveal"
)

// WebSocketHandler handles WebSocket upgrade requests for live slot views
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleSlotConnection serves /ws/slots?tz=<IANA zone>[&slot=DAY|NIGHT].
func (h *WebSocketHandler) HandleSlotConnection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	loc, err := reveal.LoadZone(q.Get("tz"), h.connectionManager.directory.Location())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var focus models.Slot
	if v := q.Get("slot"); v != "" {
		focus, err = models.ParseSlot(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	// the upgrader has already written an HTTP error on failure
	if err := h.connectionManager.UpgradeConnection(w, r, loc, focus); err != nil {
		log.Error().
			Err(err).
			Str("time_zone", loc.String()).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to write connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/slots", h.HandleSlotConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
