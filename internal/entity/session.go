package entity

import "time"

// Session is one hosted game.
type Session struct {
	ID        string    `json:"id"`
	State     GameState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionEvent carries the fresh view of a session after a command changed it.
type SessionEvent struct {
	SessionID string `json:"session_id"`
	View      *View  `json:"view"`
}
