package ws

import (
	"encoding/json"
)

// MessageType names the kinds of messages sent over the call feed.
type MessageType string

const (
	// MessageTypeCall carries a handled request and its response.
	MessageTypeCall MessageType = "call"
	// MessageTypeRequest is a JSON-RPC request sent by a feed client.
	MessageTypeRequest  MessageType = "request"
	MessageTypeResponse MessageType = "response"
	MessageTypeError    MessageType = "error"
)

// Message is the envelope of every websocket message.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
