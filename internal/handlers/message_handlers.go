package handlers

import (
	"campus-gigs/internal/engine/actors"
	"campus-gigs/internal/utils"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// StartConversationRequest opens (or finds) a conversation with another user
type StartConversationRequest struct {
	UserID string `json:"userId"`
}

// SendMessageRequest carries the message body
type SendMessageRequest struct {
	Content string `json:"content"`
}

// HandleStartConversation gets or creates the conversation between the
// authenticated user and the given counterparty.
func (s *Server) HandleStartConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		userID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req StartConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		otherUserID, err := uuid.Parse(req.UserID)
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid userId format"))
			return
		}

		result, reqErr := s.request(s.Engine.GetChatActor(), &actors.StartConversationMsg{
			UserID:      userID,
			OtherUserID: otherUserID,
		})
		s.respondActorResult(w, result, reqErr, "chat actor", http.StatusOK)
	}
}

// HandleListConversations lists the authenticated user's conversations
func (s *Server) HandleListConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		userID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		result, reqErr := s.request(s.Engine.GetChatActor(), &actors.ListConversationsMsg{
			UserID: userID,
		})
		s.respondActorResult(w, result, reqErr, "chat actor", http.StatusOK)
	}
}

// HandleGetMessages returns a conversation's messages in creation order
func (s *Server) HandleGetMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		conversationID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid conversation ID"))
			return
		}

		userID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		result, reqErr := s.request(s.Engine.GetChatActor(), &actors.GetMessagesMsg{
			ConversationID: conversationID,
			UserID:         userID,
		})
		s.respondActorResult(w, result, reqErr, "chat actor", http.StatusOK)
	}
}

// HandleSendMessage appends a message to a conversation and fans it out over
// the websocket hub.
func (s *Server) HandleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		conversationID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid conversation ID"))
			return
		}

		userID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, reqErr := s.request(s.Engine.GetChatActor(), &actors.SendChatMessageMsg{
			ConversationID: conversationID,
			SenderID:       userID,
			Content:        req.Content,
		})
		s.respondActorResult(w, result, reqErr, "chat actor", http.StatusCreated)
	}
}

// HandleMarkConversationRead marks all messages addressed to the requester as
// read.
func (s *Server) HandleMarkConversationRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		conversationID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid conversation ID"))
			return
		}

		userID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		result, reqErr := s.request(s.Engine.GetChatActor(), &actors.MarkReadMsg{
			ConversationID: conversationID,
			UserID:         userID,
		})
		s.respondActorResult(w, result, reqErr, "chat actor", http.StatusOK)
	}
}
