package models

import (
	"time"

	"github.com/google/uuid"
)

// MessagePreview is the denormalized last-message snapshot kept on a
// conversation for list views.
type MessagePreview struct {
	MessageID uuid.UUID `json:"messageId"`
	SenderID  uuid.UUID `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation is a persistent pairing of exactly two users. The Key is
// unique per unordered pair, so a pair maps to one conversation no matter
// who starts it.
type Conversation struct {
	ID           uuid.UUID       `json:"id"`
	Participants [2]uuid.UUID    `json:"participants"`
	Key          string          `json:"-"`
	LastMessage  *MessagePreview `json:"lastMessage,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ConversationKey derives the deterministic key for a pair of users: the two
// IDs sorted lexicographically and joined with ':'. Order-independent.
func ConversationKey(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}
	return first + ":" + second
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.Participants[0] == userID {
		return c.Participants[1]
	}
	return c.Participants[0]
}
