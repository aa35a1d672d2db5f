package models

import "time"

// Session is a persistent conversation thread owned by one user. The title is
// backfilled from the first continue-turn prompt when still empty.
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Title     string    `json:"title,omitempty" db:"title"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Turn is one prompt/response exchange within a session. Immutable after
// creation; ordered within a session by CreatedAt ascending.
type Turn struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"sessionId" db:"session_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Prompt    string    `json:"prompt" db:"prompt"`
	Response  string    `json:"response" db:"response"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
