package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
)

const (
	actionState = "game:state"
	actionPlay  = "game:play"
	actionJump  = "game:jump"
	actionSort  = "game:sort"
	actionEnded = "game:ended"
	actionError = "error"
)

// Message is one frame in either direction.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Cell *int `json:"cell,omitempty"`
	Move *int `json:"move,omitempty"`
}

type ErrorPayload struct {
	Action string `json:"action,omitempty"`
	Error  string `json:"error"`
}

type EndedPayload struct {
	SessionID string `json:"session_id"`
}

func newMessage(action string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{Action: action, Payload: data}, nil
}

func viewMessage(action string, view *entity.View) (Message, error) {
	return newMessage(action, view)
}
