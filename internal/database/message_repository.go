// internal/database/message_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"campus-gigs/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageDocument represents the MongoDB schema for a chat message
type MessageDocument struct {
	ID             string    `bson:"_id"`
	ConversationID string    `bson:"conversationId"`
	SenderID       string    `bson:"senderId"`
	RecipientID    string    `bson:"recipientId"`
	Content        string    `bson:"content"`
	Read           bool      `bson:"read"`
	CreatedAt      time.Time `bson:"createdAt"`
}

func documentToMessage(doc MessageDocument) (*models.Message, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid message ID in database: %v", err)
	}
	conversationID, err := uuid.Parse(doc.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID in database: %v", err)
	}
	senderID, err := uuid.Parse(doc.SenderID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender ID in database: %v", err)
	}
	recipientID, err := uuid.Parse(doc.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient ID in database: %v", err)
	}

	return &models.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        doc.Content,
		Read:           doc.Read,
		CreatedAt:      doc.CreatedAt,
	}, nil
}

// SaveChatMessage appends a message to the conversation log
func (m *MongoDB) SaveChatMessage(ctx context.Context, msg *models.Message) error {
	doc := MessageDocument{
		ID:             msg.ID.String(),
		ConversationID: msg.ConversationID.String(),
		SenderID:       msg.SenderID.String(),
		RecipientID:    msg.RecipientID.String(),
		Content:        msg.Content,
		Read:           msg.Read,
		CreatedAt:      msg.CreatedAt,
	}

	_, err := m.Messages.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to save message: %v", err)
	}
	return nil
}

// ListMessages returns a conversation's messages in creation order. The log
// is append-only, so repeated reads return the same prefix.
func (m *MongoDB) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error) {
	filter := bson.M{"conversationId": conversationID.String()}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := m.Messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	for cursor.Next(ctx) {
		var doc MessageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode message: %v", err)
		}
		msg, err := documentToMessage(doc)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// MarkConversationRead flips the read flag on every message addressed to
// userID in the conversation. Returns how many were updated.
func (m *MongoDB) MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	filter := bson.M{
		"conversationId": conversationID.String(),
		"recipientId":    userID.String(),
		"read":           false,
	}
	update := bson.M{"$set": bson.M{"read": true}}

	result, err := m.Messages.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %v", err)
	}
	return result.ModifiedCount, nil
}

// CountUnreadMessages counts messages addressed to userID not yet read.
func (m *MongoDB) CountUnreadMessages(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	filter := bson.M{
		"conversationId": conversationID.String(),
		"recipientId":    userID.String(),
		"read":           false,
	}
	return m.Messages.CountDocuments(ctx, filter)
}
