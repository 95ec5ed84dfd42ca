package actors

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"campus-gigs/internal/database"
	"campus-gigs/internal/models"
	"campus-gigs/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBroadcaster captures fan-out payloads for assertions.
type recordingBroadcaster struct {
	mu            sync.Mutex
	broadcasts    map[uuid.UUID][][]byte
	notifications map[uuid.UUID][][]byte
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{
		broadcasts:    make(map[uuid.UUID][][]byte),
		notifications: make(map[uuid.UUID][][]byte),
	}
}

func (r *recordingBroadcaster) BroadcastToConversation(conversationID uuid.UUID, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts[conversationID] = append(r.broadcasts[conversationID], payload)
}

func (r *recordingBroadcaster) NotifyUser(userID uuid.UUID, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications[userID] = append(r.notifications[userID], payload)
}

func (r *recordingBroadcaster) NotifyUserOutsideConversation(userID, conversationID uuid.UUID, payload []byte) {
	r.NotifyUser(userID, payload)
}

func (r *recordingBroadcaster) conversationEvents(conversationID uuid.UUID) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.broadcasts[conversationID]
}

func (r *recordingBroadcaster) userEvents(userID uuid.UUID) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notifications[userID]
}

func seedUser(t *testing.T, db database.Adapter, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.New(),
		Username:  "user-" + uuid.NewString()[:8],
		Email:     uuid.NewString() + "@example.com",
		Role:      role,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.SaveUser(context.Background(), user))
	return user
}

func spawnChatActor(t *testing.T, db database.Adapter, broadcaster *recordingBroadcaster) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewChatActor(db, broadcaster, utils.NewMetricsCollector())
	})
	return system, system.Root.Spawn(props)
}

func ask(t *testing.T, system *actor.ActorSystem, pid *actor.PID, msg interface{}) interface{} {
	t.Helper()
	future := system.Root.RequestFuture(pid, msg, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	return result
}

func TestStartConversationIsSymmetric(t *testing.T) {
	db := database.NewMemoryAdapter()
	system, pid := spawnChatActor(t, db, newRecordingBroadcaster())

	alice := seedUser(t, db, models.RoleStudent)
	bob := seedUser(t, db, models.RoleClient)

	first := ask(t, system, pid, &StartConversationMsg{UserID: alice.ID, OtherUserID: bob.ID})
	conv1, ok := first.(*models.Conversation)
	require.True(t, ok, "unexpected response: %T", first)

	second := ask(t, system, pid, &StartConversationMsg{UserID: bob.ID, OtherUserID: alice.ID})
	conv2, ok := second.(*models.Conversation)
	require.True(t, ok, "unexpected response: %T", second)

	assert.Equal(t, conv1.ID, conv2.ID)
}

func TestStartConversationWithSelfFails(t *testing.T) {
	db := database.NewMemoryAdapter()
	system, pid := spawnChatActor(t, db, newRecordingBroadcaster())

	alice := seedUser(t, db, models.RoleStudent)

	result := ask(t, system, pid, &StartConversationMsg{UserID: alice.ID, OtherUserID: alice.ID})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrValidation, appErr.Code)
}

func TestSendMessageValidation(t *testing.T) {
	db := database.NewMemoryAdapter()
	system, pid := spawnChatActor(t, db, newRecordingBroadcaster())

	alice := seedUser(t, db, models.RoleStudent)
	bob := seedUser(t, db, models.RoleClient)
	mallory := seedUser(t, db, models.RoleStudent)

	conv := ask(t, system, pid, &StartConversationMsg{UserID: alice.ID, OtherUserID: bob.ID}).(*models.Conversation)

	// Whitespace-only content is rejected
	result := ask(t, system, pid, &SendChatMessageMsg{
		ConversationID: conv.ID,
		SenderID:       alice.ID,
		Content:        "   \n\t ",
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrValidation, appErr.Code)

	// Non-participants cannot send
	result = ask(t, system, pid, &SendChatMessageMsg{
		ConversationID: conv.ID,
		SenderID:       mallory.ID,
		Content:        "let me in",
	})
	appErr, ok = result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestMessagesAreOrderedAndBroadcast(t *testing.T) {
	db := database.NewMemoryAdapter()
	broadcaster := newRecordingBroadcaster()
	system, pid := spawnChatActor(t, db, broadcaster)

	alice := seedUser(t, db, models.RoleStudent)
	bob := seedUser(t, db, models.RoleClient)

	conv := ask(t, system, pid, &StartConversationMsg{UserID: alice.ID, OtherUserID: bob.ID}).(*models.Conversation)

	contents := []string{"first", "second", "third"}
	for _, content := range contents {
		result := ask(t, system, pid, &SendChatMessageMsg{
			ConversationID: conv.ID,
			SenderID:       alice.ID,
			Content:        content,
		})
		_, ok := result.(*models.Message)
		require.True(t, ok, "unexpected response: %T", result)
	}

	listed := ask(t, system, pid, &GetMessagesMsg{ConversationID: conv.ID, UserID: bob.ID})
	messages, ok := listed.([]*models.Message)
	require.True(t, ok)
	require.Len(t, messages, 3)
	for i, content := range contents {
		assert.Equal(t, content, messages[i].Content)
		assert.Equal(t, alice.ID, messages[i].SenderID)
		assert.Equal(t, bob.ID, messages[i].RecipientID)
	}

	// Every stored message produced a message:new event with the sent content
	events := broadcaster.conversationEvents(conv.ID)
	require.Len(t, events, 3)
	for i, raw := range events {
		var event struct {
			Type    string          `json:"type"`
			Message *models.Message `json:"message"`
		}
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, "message:new", event.Type)
		assert.Equal(t, contents[i], event.Message.Content)
	}
}

func TestGetMessagesForbiddenForOutsiders(t *testing.T) {
	db := database.NewMemoryAdapter()
	system, pid := spawnChatActor(t, db, newRecordingBroadcaster())

	alice := seedUser(t, db, models.RoleStudent)
	bob := seedUser(t, db, models.RoleClient)
	mallory := seedUser(t, db, models.RoleStudent)

	conv := ask(t, system, pid, &StartConversationMsg{UserID: alice.ID, OtherUserID: bob.ID}).(*models.Conversation)

	result := ask(t, system, pid, &GetMessagesMsg{ConversationID: conv.ID, UserID: mallory.ID})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestMarkReadAndUnreadCounts(t *testing.T) {
	db := database.NewMemoryAdapter()
	broadcaster := newRecordingBroadcaster()
	system, pid := spawnChatActor(t, db, broadcaster)

	alice := seedUser(t, db, models.RoleStudent)
	bob := seedUser(t, db, models.RoleClient)

	conv := ask(t, system, pid, &StartConversationMsg{UserID: alice.ID, OtherUserID: bob.ID}).(*models.Conversation)

	for i := 0; i < 2; i++ {
		ask(t, system, pid, &SendChatMessageMsg{
			ConversationID: conv.ID,
			SenderID:       alice.ID,
			Content:        "hello",
		})
	}

	listed := ask(t, system, pid, &ListConversationsMsg{UserID: bob.ID})
	summaries, ok := listed.([]*ConversationSummary)
	require.True(t, ok)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].UnreadCount)

	marked := ask(t, system, pid, &MarkReadMsg{ConversationID: conv.ID, UserID: bob.ID})
	result, ok := marked.(*MarkReadResult)
	require.True(t, ok)
	assert.Equal(t, int64(2), result.Updated)

	listed = ask(t, system, pid, &ListConversationsMsg{UserID: bob.ID})
	summaries = listed.([]*ConversationSummary)
	assert.Equal(t, int64(0), summaries[0].UnreadCount)

	// The read receipt is pushed to the reader's connections
	events := broadcaster.userEvents(bob.ID)
	require.NotEmpty(t, events)
	var receipt map[string]interface{}
	require.NoError(t, json.Unmarshal(events[len(events)-1], &receipt))
	assert.Equal(t, "conversation:read", receipt["type"])
	assert.Equal(t, conv.ID.String(), receipt["conversationId"])

	// Marking an already-read conversation pushes nothing new
	ask(t, system, pid, &MarkReadMsg{ConversationID: conv.ID, UserID: bob.ID})
	assert.Len(t, broadcaster.userEvents(bob.ID), len(events))
}
