package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/0xpratik010/tridev/go/internal/countdown"
	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/viewer"
)

// SlotDirectory supplies slot metadata and the default viewer zone.
type SlotDirectory interface {
	Slots() []viewer.SlotInfo
	SlotInfo(slot models.Slot) viewer.SlotInfo
	Location() *time.Location
}

// ConnectionManager runs live slot countdowns over websocket connections
type ConnectionManager struct {
	connections map[*Connection]bool
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	fetcher   countdown.Fetcher
	directory SlotDirectory
	clock     clockwork.Clock
	countdown countdown.Config
}

// Connection is one viewer's websocket, driving one countdown per slot, or
// a single countdown that follows the selected slot.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	loc         *time.Location
	controllers map[models.Slot]*countdown.Controller
	focused     *countdown.Controller
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      64,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, fetcher countdown.Fetcher, directory SlotDirectory, clock clockwork.Clock, cdCfg countdown.Config) *ConnectionManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = DefaultConnectionConfig().SendBuffer
	}
	return &ConnectionManager{
		connections: make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:    config,
		fetcher:   fetcher,
		directory: directory,
		clock:     clock,
		countdown: cdCfg,
	}
}

// UpgradeConnection upgrades an HTTP connection and starts its countdowns.
// A non-empty focus runs one countdown that follows select_slot messages.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, loc *time.Location, focus models.Slot) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBuffer),
		Manager:     cm,
		loc:         loc,
		controllers: make(map[models.Slot]*countdown.Controller),
		ctx:         ctx,
		cancel:      cancel,
		ConnectedAt: cm.clock.Now(),
	}

	if focus != "" {
		connection.focused = cm.newController(connection, focus)
	} else {
		for _, info := range cm.directory.Slots() {
			connection.controllers[info.Slot] = cm.newController(connection, info.Slot)
		}
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()
	if connection.focused != nil {
		go connection.focused.Run(ctx)
	}
	for _, ctrl := range connection.controllers {
		go ctrl.Run(ctx)
	}

	log.Info().
		Str("connection_id", connection.ID).
		Str("time_zone", loc.String()).
		Str("focus", string(focus)).
		Msg("WebSocket connection established")
	return nil
}

func (cm *ConnectionManager) newController(c *Connection, slot models.Slot) *countdown.Controller {
	return countdown.NewController(slot, cm.fetcher,
		countdown.WithClock(cm.clock),
		countdown.WithLocation(c.loc),
		countdown.WithConfig(cm.countdown),
		countdown.WithOnChange(func(snap countdown.Snapshot) {
			c.sendMessage(ServerMessage{
				Type:      MessageSlotState,
				Timestamp: snap.CurrentTime,
				State:     viewer.NewSlotState(snap, cm.directory.SlotInfo(snap.Slot)),
			})
		}),
	)
}

// registerConnection adds a connection to the manager
func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

// unregisterConnection removes a connection and stops its countdowns
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	_, exists := cm.connections[conn]
	delete(cm.connections, conn)
	cm.mu.Unlock()

	if exists {
		conn.cancel()
		log.Info().
			Str("connection_id", conn.ID).
			Dur("duration", cm.clock.Since(conn.ConnectedAt)).
			Msg("connection unregistered")
	}
}

// Shutdown closes every connection.
func (cm *ConnectionManager) Shutdown() {
	cm.mu.RLock()
	conns := make([]*Connection, 0, len(cm.connections))
	for conn := range cm.connections {
		conns = append(conns, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range conns {
		conn.close()
	}
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{TotalConnections: len(cm.connections)}
	for conn := range cm.connections {
		stats.ActiveCountdowns += len(conn.controllers)
		if conn.focused != nil {
			stats.ActiveCountdowns++
		}
	}
	return stats
}

// ConnectionStats summarizes the live connections.
type ConnectionStats struct {
	TotalConnections int `json:"total_connections"`
	ActiveCountdowns int `json:"active_countdowns"`
}

// sendMessage queues msg without blocking the countdown loop. A client too
// slow to drain its buffer is disconnected.
func (c *Connection) sendMessage(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal message")
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Warn().
			Str("connection_id", c.ID).
			Msg("connection send buffer full, closing connection")
		c.close()
	}
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	})
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	cfg := c.Manager.config
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	cfg := c.Manager.config
	defer c.close()

	c.Conn.SetReadLimit(cfg.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			return
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	}
}

// handleClientMessage processes messages received from the client
func (c *Connection) handleClientMessage(data []byte) {
	msg, err := ParseClientMessage(data)
	if err != nil {
		c.sendError("malformed message")
		return
	}

	switch msg.Type {
	case MessageRefocus:
		if c.focused != nil {
			c.focused.Refetch()
		}
		for _, ctrl := range c.controllers {
			ctrl.Refetch()
		}

	case MessageSelectSlot:
		slot, err := models.ParseSlot(msg.Slot)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		if c.focused != nil {
			c.focused.SetSlot(slot)
			return
		}
		if ctrl, ok := c.controllers[slot]; ok {
			ctrl.Refetch()
		}

	default:
		c.sendError(fmt.Sprintf("unknown message type %q", msg.Type))
	}

	log.Debug().
		Str("connection_id", c.ID).
		Str("type", string(msg.Type)).
		Msg("received client message")
}

func (c *Connection) sendError(text string) {
	c.sendMessage(ServerMessage{
		Type:      MessageError,
		Timestamp: c.Manager.clock.Now(),
		Error:     text,
	})
}
