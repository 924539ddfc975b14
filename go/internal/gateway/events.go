package gateway

import (
	"encoding/json"
	"time"

	"github.com/0xpratik010/tridev/go/internal/viewer"
)

// MessageType tags every websocket message in either direction.
type MessageType string

const (
	// server to client
	MessageSlotState MessageType = "slot_state"
	MessageError     MessageType = "error"

	// client to server
	MessageRefocus    MessageType = "refocus"
	MessageSelectSlot MessageType = "select_slot"
)

// ServerMessage is sent to the client.
type ServerMessage struct {
	Type      MessageType       `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	State     *viewer.SlotState `json:"state,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// ClientMessage is received from the client.
type ClientMessage struct {
	Type MessageType `json:"type"`
	Slot string      `json:"slot,omitempty"`
}

// ParseClientMessage decodes a raw client frame.
func ParseClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, err
	}
	return msg, nil
}
