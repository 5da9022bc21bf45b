package dto

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the ephemeral real-time payload pushed over the
// websocket. Nothing is persisted; a client that was offline simply
// misses it.
type Notification struct {
	Id        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
