package service

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benbeisheim/makemove-fixtures/internal/jsonrpc"
	"github.com/benbeisheim/makemove-fixtures/internal/ws"
)

var ErrDuplicateClient = errors.New("client already connected")

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Call is one handled MakeMove request as shown on the call feed.
type Call struct {
	Request  json.RawMessage   `json:"request"`
	Response *jsonrpc.Response `json:"response"`
	At       time.Time         `json:"at"`
}

// CallHub fans every handled call out to the connected feed clients.
type CallHub struct {
	connections map[string]Conn // clientID -> connection
	mu          sync.RWMutex
	log         zerolog.Logger
}

func NewCallHub(log zerolog.Logger) *CallHub {
	return &CallHub{
		connections: make(map[string]Conn),
		log:         log,
	}
}

func (h *CallHub) Register(clientID string, conn Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.connections[clientID]; exists {
		return ErrDuplicateClient
	}
	h.connections[clientID] = conn
	h.log.Debug().Str("client", clientID).Int("clients", len(h.connections)).Msg("feed client registered")
	return nil
}

// Unregister removes clientID only while conn is still its connection.
func (h *CallHub) Unregister(clientID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, exists := h.connections[clientID]; exists && current == conn {
		delete(h.connections, clientID)
		h.log.Debug().Str("client", clientID).Msg("feed client unregistered")
	}
}

func (h *CallHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Publish sends a call message to every client. Clients whose write fails
// are dropped.
func (h *CallHub) Publish(request []byte, resp *jsonrpc.Response) {
	req := json.RawMessage(request)
	if !json.Valid(request) {
		quoted, _ := json.Marshal(string(request))
		req = quoted
	}
	payload, err := json.Marshal(Call{Request: req, Response: resp, At: time.Now().UTC()})
	if err != nil {
		h.log.Error().Err(err).Msg("marshal call")
		return
	}
	msg := ws.Message{Type: ws.MessageTypeCall, Payload: payload}

	h.mu.RLock()
	active := make(map[string]Conn, len(h.connections))
	for id, conn := range h.connections {
		active[id] = conn
	}
	h.mu.RUnlock()

	for id, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Warn().Err(err).Str("client", id).Msg("dropping feed client")
			h.Unregister(id, conn)
			conn.Close()
		}
	}
}
