package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength bounds message content, counted in runes.
const MaxMessageLength = 2000

// Message is an immutable entry in a conversation's append-only log. Only the
// Read flag changes after creation.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       uuid.UUID `json:"senderId"`
	RecipientID    uuid.UUID `json:"recipientId"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}
