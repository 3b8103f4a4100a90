package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatHistory is a saved conversation. Messages are stored as JSONB and
// replaced as a whole on update.
type ChatHistory struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ChatHistoryRequest is used for create and update. On update, a nil field
// leaves the stored value untouched.
type ChatHistoryRequest struct {
	Title    *string       `json:"title"`
	Messages []ChatMessage `json:"messages"`
}
