package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/makemove-fixtures/internal/service"
	"github.com/benbeisheim/makemove-fixtures/internal/ws"
)

// feedConn serializes writes; the hub and the read loop both write.
type feedConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (fc *feedConn) WriteJSON(v interface{}) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.Conn.WriteJSON(v)
}

type WebSocketController struct {
	hub         *service.CallHub
	moveService *service.MoveService
	log         zerolog.Logger
}

func NewWebSocketController(hub *service.CallHub, moveService *service.MoveService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		hub:         hub,
		moveService: moveService,
		log:         log,
	}
}

// HandleConnection registers a call feed client and serves requests sent
// over the socket until it closes.
func (wsc *WebSocketController) HandleConnection(conn *websocket.Conn) {
	clientID, _ := conn.Locals("wsClientID").(string)
	c := &feedConn{Conn: conn}
	log := wsc.log.With().Str("client", clientID).Logger()

	if err := wsc.hub.Register(clientID, c); err != nil {
		log.Warn().Err(err).Msg("register feed client")
		c.Close()
		return
	}
	defer wsc.hub.Unregister(clientID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("feed client gone")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(c, fmt.Sprintf("parse error: %v", err))
			continue
		}
		if err := wsc.handleMessage(c, msg); err != nil {
			log.Debug().Err(err).Msg("handle feed message")
			wsc.sendError(c, err.Error())
		}
	}
}

func (wsc *WebSocketController) handleMessage(c *feedConn, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeRequest:
		resp := wsc.moveService.Handle(msg.Payload)
		payload, err := json.Marshal(resp)
		if err != nil {
			return err
		}
		return c.WriteJSON(ws.Message{Type: ws.MessageTypeResponse, Payload: payload})
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(c *feedConn, errorMsg string) {
	payload, _ := json.Marshal(errorMsg)
	c.WriteJSON(ws.Message{
		Type:    ws.MessageTypeError,
		Payload: payload,
	})
}
