package actors

import (
	"campus-gigs/internal/database"
	"campus-gigs/internal/models"
	"campus-gigs/internal/utils"
	"campus-gigs/internal/websocket"
	"encoding/json"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	stdctx "context"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for Chat operations
type (
	StartConversationMsg struct {
		UserID      uuid.UUID
		OtherUserID uuid.UUID
	}

	SendChatMessageMsg struct {
		ConversationID uuid.UUID
		SenderID       uuid.UUID
		Content        string
	}

	ListConversationsMsg struct {
		UserID uuid.UUID
	}

	GetMessagesMsg struct {
		ConversationID uuid.UUID
		UserID         uuid.UUID
	}

	MarkReadMsg struct {
		ConversationID uuid.UUID
		UserID         uuid.UUID
	}
)

// ConversationSummary pairs a conversation with the requester's unread count.
type ConversationSummary struct {
	*models.Conversation
	UnreadCount int64 `json:"unreadCount"`
}

// MarkReadResult reports how many messages a read receipt touched.
type MarkReadResult struct {
	Updated int64 `json:"updated"`
}

// wsEvent is the envelope pushed over the websocket.
type wsEvent struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversationId,omitempty"`
	Message        *models.Message `json:"message,omitempty"`
}

// ChatActor serializes all conversation and message operations. Persistence
// happens before any websocket fan-out, so a delivered event always refers to
// a stored message.
type ChatActor struct {
	db          database.Adapter
	broadcaster websocket.Broadcaster
	metrics     *utils.MetricsCollector
}

func NewChatActor(db database.Adapter, broadcaster websocket.Broadcaster, metrics *utils.MetricsCollector) actor.Actor {
	return &ChatActor{
		db:          db,
		broadcaster: broadcaster,
		metrics:     metrics,
	}
}

func (a *ChatActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *StartConversationMsg:
		a.handleStartConversation(context, msg)
	case *SendChatMessageMsg:
		a.handleSendMessage(context, msg)
	case *ListConversationsMsg:
		a.handleListConversations(context, msg)
	case *GetMessagesMsg:
		a.handleGetMessages(context, msg)
	case *MarkReadMsg:
		a.handleMarkRead(context, msg)
	}
}

func (a *ChatActor) handleStartConversation(context actor.Context, msg *StartConversationMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.UserID == msg.OtherUserID {
		context.Respond(utils.NewValidationError("cannot start a conversation with yourself"))
		return
	}

	if _, err := a.db.GetUser(ctx, msg.OtherUserID); err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.OtherUserID.String()))
		return
	}

	conversation, err := a.db.GetOrCreateConversation(ctx, msg.UserID, msg.OtherUserID)
	if err != nil {
		respondError(context, err, "Failed to open conversation")
		return
	}

	a.metrics.AddOperationLatency("start_conversation", time.Since(startTime))
	context.Respond(conversation)
}

func (a *ChatActor) handleSendMessage(context actor.Context, msg *SendChatMessageMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		context.Respond(utils.NewValidationError("message content cannot be empty"))
		return
	}
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		context.Respond(utils.NewValidationError("message content is too long"))
		return
	}

	conversation, err := a.db.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		respondError(context, err, "Failed to fetch conversation")
		return
	}
	if !conversation.HasParticipant(msg.SenderID) {
		context.Respond(utils.NewForbiddenError("not a participant in this conversation"))
		return
	}

	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		SenderID:       msg.SenderID,
		RecipientID:    conversation.OtherParticipant(msg.SenderID),
		Content:        content,
		Read:           false,
		CreatedAt:      time.Now(),
	}

	if err := a.db.SaveChatMessage(ctx, message); err != nil {
		log.Printf("Failed to save message: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save message", err))
		return
	}

	preview := &models.MessagePreview{
		MessageID: message.ID,
		SenderID:  message.SenderID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
	if err := a.db.SetConversationLastMessage(ctx, conversation.ID, preview); err != nil {
		log.Printf("Failed to update conversation preview: %v", err)
	}

	a.pushEvents(conversation, message)

	a.metrics.AddOperationLatency("send_message", time.Since(startTime))
	context.Respond(message)
}

// pushEvents fans the stored message out: message:new to the conversation
// room, notification:new to the recipient's connections that are not watching
// the room. Both are best-effort.
func (a *ChatActor) pushEvents(conversation *models.Conversation, message *models.Message) {
	if a.broadcaster == nil {
		return
	}

	payload, err := json.Marshal(&wsEvent{
		Type:    "message:new",
		Message: message,
	})
	if err != nil {
		log.Printf("Failed to encode message event: %v", err)
		return
	}
	a.broadcaster.BroadcastToConversation(conversation.ID, payload)

	notification, err := json.Marshal(&wsEvent{
		Type:           "notification:new",
		ConversationID: conversation.ID.String(),
		Message:        message,
	})
	if err != nil {
		log.Printf("Failed to encode notification event: %v", err)
		return
	}
	a.broadcaster.NotifyUserOutsideConversation(message.RecipientID, conversation.ID, notification)
}

func (a *ChatActor) handleListConversations(context actor.Context, msg *ListConversationsMsg) {
	ctx := stdctx.Background()

	conversations, err := a.db.ListConversationsForUser(ctx, msg.UserID)
	if err != nil {
		respondError(context, err, "Failed to list conversations")
		return
	}

	summaries := make([]*ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		unread, err := a.db.CountUnreadMessages(ctx, conversation.ID, msg.UserID)
		if err != nil {
			log.Printf("Failed to count unread messages for conversation %s: %v", conversation.ID, err)
		}
		summaries = append(summaries, &ConversationSummary{
			Conversation: conversation,
			UnreadCount:  unread,
		})
	}
	context.Respond(summaries)
}

func (a *ChatActor) handleGetMessages(context actor.Context, msg *GetMessagesMsg) {
	ctx := stdctx.Background()

	conversation, err := a.db.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		respondError(context, err, "Failed to fetch conversation")
		return
	}
	if !conversation.HasParticipant(msg.UserID) {
		context.Respond(utils.NewForbiddenError("not a participant in this conversation"))
		return
	}

	messages, err := a.db.ListMessages(ctx, conversation.ID)
	if err != nil {
		respondError(context, err, "Failed to list messages")
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	context.Respond(messages)
}

func (a *ChatActor) handleMarkRead(context actor.Context, msg *MarkReadMsg) {
	ctx := stdctx.Background()

	conversation, err := a.db.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		respondError(context, err, "Failed to fetch conversation")
		return
	}
	if !conversation.HasParticipant(msg.UserID) {
		context.Respond(utils.NewForbiddenError("not a participant in this conversation"))
		return
	}

	updated, err := a.db.MarkConversationRead(ctx, conversation.ID, msg.UserID)
	if err != nil {
		respondError(context, err, "Failed to mark conversation read")
		return
	}

	if updated > 0 {
		a.pushReadReceipt(conversation.ID, msg.UserID)
	}
	context.Respond(&MarkReadResult{Updated: updated})
}

// pushReadReceipt tells every connection of the reader that the conversation
// was read, so other devices can clear their unread badges.
func (a *ChatActor) pushReadReceipt(conversationID, readerID uuid.UUID) {
	if a.broadcaster == nil {
		return
	}

	payload, err := json.Marshal(&wsEvent{
		Type:           "conversation:read",
		ConversationID: conversationID.String(),
	})
	if err != nil {
		log.Printf("Failed to encode read receipt: %v", err)
		return
	}
	a.broadcaster.NotifyUser(readerID, payload)
}
