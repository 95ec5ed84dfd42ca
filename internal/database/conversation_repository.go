// internal/database/conversation_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"campus-gigs/internal/models"
	"campus-gigs/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationDocument represents the MongoDB schema for a conversation
type ConversationDocument struct {
	ID           string                  `bson:"_id"`
	Participants []string                `bson:"participants"`
	Key          string                  `bson:"key"`
	LastMessage  *MessagePreviewDocument `bson:"lastMessage,omitempty"`
	CreatedAt    time.Time               `bson:"createdAt"`
	UpdatedAt    time.Time               `bson:"updatedAt"`
}

type MessagePreviewDocument struct {
	MessageID string    `bson:"messageId"`
	SenderID  string    `bson:"senderId"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
}

func documentToConversation(doc ConversationDocument) (*models.Conversation, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID in database: %v", err)
	}
	if len(doc.Participants) != 2 {
		return nil, fmt.Errorf("conversation %s has %d participants", doc.ID, len(doc.Participants))
	}

	var participants [2]uuid.UUID
	for i, idStr := range doc.Participants {
		participant, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid participant ID in database: %v", err)
		}
		participants[i] = participant
	}

	conv := &models.Conversation{
		ID:           id,
		Participants: participants,
		Key:          doc.Key,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}

	if doc.LastMessage != nil {
		messageID, err := uuid.Parse(doc.LastMessage.MessageID)
		if err != nil {
			return nil, fmt.Errorf("invalid message ID in database: %v", err)
		}
		senderID, err := uuid.Parse(doc.LastMessage.SenderID)
		if err != nil {
			return nil, fmt.Errorf("invalid sender ID in database: %v", err)
		}
		conv.LastMessage = &models.MessagePreview{
			MessageID: messageID,
			SenderID:  senderID,
			Content:   doc.LastMessage.Content,
			CreatedAt: doc.LastMessage.CreatedAt,
		}
	}

	return conv, nil
}

// GetOrCreateConversation returns the conversation for the unordered pair
// (userA, userB), creating it on first contact. The unique index on key makes
// this safe when both ends start a chat at the same time: one insert wins and
// the other turns into a fetch.
func (m *MongoDB) GetOrCreateConversation(ctx context.Context, userA, userB uuid.UUID) (*models.Conversation, error) {
	key := models.ConversationKey(userA, userB)

	var doc ConversationDocument
	err := m.Conversations.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err == nil {
		return documentToConversation(doc)
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	now := time.Now()
	doc = ConversationDocument{
		ID:           uuid.New().String(),
		Participants: []string{userA.String(), userB.String()},
		Key:          key,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = m.Conversations.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the first-contact race; the other side's insert is the one.
		if err := m.Conversations.FindOne(ctx, bson.M{"key": key}).Decode(&doc); err != nil {
			return nil, err
		}
		return documentToConversation(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %v", err)
	}

	return documentToConversation(doc)
}

// GetConversation retrieves a conversation by ID
func (m *MongoDB) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var doc ConversationDocument

	err := m.Conversations.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("conversation not found")
	}
	if err != nil {
		return nil, err
	}

	return documentToConversation(doc)
}

// ListConversationsForUser returns the user's conversations ordered by most
// recent activity.
func (m *MongoDB) ListConversationsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	filter := bson.M{"participants": userID.String()}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := m.Conversations.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %v", err)
	}
	defer cursor.Close(ctx)

	var conversations []*models.Conversation
	for cursor.Next(ctx) {
		var doc ConversationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %v", err)
		}
		conv, err := documentToConversation(doc)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}

	return conversations, nil
}

// SetConversationLastMessage updates the list-preview snapshot and bumps the
// activity timestamp.
func (m *MongoDB) SetConversationLastMessage(ctx context.Context, id uuid.UUID, preview *models.MessagePreview) error {
	update := bson.M{"$set": bson.M{
		"lastMessage": MessagePreviewDocument{
			MessageID: preview.MessageID.String(),
			SenderID:  preview.SenderID.String(),
			Content:   preview.Content,
			CreatedAt: preview.CreatedAt,
		},
		"updatedAt": preview.CreatedAt,
	}}

	result, err := m.Conversations.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("conversation not found")
	}
	return nil
}
