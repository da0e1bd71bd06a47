package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeActivate      MessageType = "activate"
	MessageTypeAnimationDone MessageType = "animationDone"
	MessageTypeReset         MessageType = "reset"

	// server -> client
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeAnimate    MessageType = "animate"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ActivatePayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type AnimationDonePayload struct {
	ID uint64 `json:"id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMessage marshals payload into a message of the given type.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

func ErrorMessage(msg string) Message {
	m, _ := NewMessage(MessageTypeError, ErrorPayload{Message: msg})
	return m
}
