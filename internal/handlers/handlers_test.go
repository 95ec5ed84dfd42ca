package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"campus-gigs/internal/database"
	"campus-gigs/internal/engine"
	"campus-gigs/internal/middleware"
	"campus-gigs/internal/utils"
	"campus-gigs/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer wires the full stack onto the in-memory adapter.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	middleware.SetSecret("handler-test-secret")

	db := database.NewMemoryAdapter()
	metrics := utils.NewMetricsCollector()
	hub := websocket.NewHub()
	go hub.Run()

	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, metrics, db, hub)
	server := NewServer(system, system.Root, eng, metrics, hub, db)

	return middleware.AuthMiddleware(server.Routes())
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
	token   string
	userID  string
}

func (c *apiClient) do(method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func signup(t *testing.T, handler http.Handler, name, role string) *apiClient {
	t.Helper()
	client := &apiClient{t: t, handler: handler}

	rec, _ := client.do(http.MethodPost, "/auth/register", map[string]interface{}{
		"username": name,
		"email":    name + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, body := client.do(http.MethodPost, "/auth/login", map[string]interface{}{
		"email":    name + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	client.token = body["token"].(string)
	client.userID = body["userId"].(string)
	return client
}

func TestFullMarketplaceFlow(t *testing.T) {
	handler := newTestServer(t)

	client := signup(t, handler, "poster", "client")
	student := signup(t, handler, "worker", "student")

	// Client posts a project
	rec, project := client.do(http.MethodPost, "/projects", map[string]interface{}{
		"title":       "Data pipeline",
		"description": "Build an ETL job",
		"budget":      300.0,
		"skills":      []string{"go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	projectID := project["id"].(string)

	// Students cannot post projects
	rec, _ = student.do(http.MethodPost, "/projects", map[string]interface{}{
		"title":       "Nope",
		"description": "Nope",
		"budget":      10.0,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The project shows up in the open listing
	rec, _ = student.do(http.MethodGet, "/projects?skill=go", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Student applies
	rec, application := student.do(http.MethodPost, "/projects/"+projectID+"/applications", map[string]interface{}{
		"coverLetter": "I know pipelines",
		"bidAmount":   250.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	applicationID := application["id"].(string)
	assert.Equal(t, "pending", application["status"])

	// Only the owner can list applications
	rec, _ = student.do(http.MethodGet, "/projects/"+projectID+"/applications", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = client.do(http.MethodGet, "/projects/"+projectID+"/applications", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Client accepts
	rec, accepted := client.do(http.MethodPut, "/applications/"+applicationID+"/status", map[string]interface{}{
		"status": "accepted",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "accepted", accepted["status"])

	// A second decision fails
	rec, errBody := client.do(http.MethodPut, "/applications/"+applicationID+"/status", map[string]interface{}{
		"status": "rejected",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	errDetail := errBody["error"].(map[string]interface{})
	assert.Equal(t, utils.ErrInvalidTransition, errDetail["code"])

	// Student submits work
	rec, submission := student.do(http.MethodPost, "/applications/"+applicationID+"/submissions", map[string]interface{}{
		"note":    "Pipeline is live",
		"fileUrl": "https://files.example.com/etl.tar.gz",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	submissionID := submission["id"].(string)

	// The submission history is visible to both sides
	req := httptest.NewRequest(http.MethodGet, "/applications/"+applicationID+"/submissions", nil)
	req.Header.Set("Authorization", "Bearer "+client.token)
	listRec := httptest.NewRecorder()
	handler.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)

	var submissions []map[string]interface{}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &submissions))
	require.Len(t, submissions, 1)
	assert.Equal(t, submissionID, submissions[0]["id"])

	// Client approves, completing the project
	rec, reviewed := client.do(http.MethodPost, "/submissions/"+submissionID+"/review", map[string]interface{}{
		"action":  "approve",
		"comment": "well done",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", reviewed["status"])

	rec, finished := client.do(http.MethodGet, "/projects/"+projectID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", finished["status"])

	// Both sides leave reviews
	rec, _ = client.do(http.MethodPost, "/projects/"+projectID+"/reviews", map[string]interface{}{
		"rating":  5,
		"comment": "great hire",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = student.do(http.MethodPost, "/projects/"+projectID+"/reviews", map[string]interface{}{
		"rating": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, summary := student.do(http.MethodGet, "/users/"+student.userID+"/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), summary["count"])
	assert.Equal(t, float64(5), summary["averageRating"])

	// The rating summary rides along on the public profile
	rec, profile := client.do(http.MethodGet, "/users/"+student.userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "worker", profile["username"])
	assert.Equal(t, float64(5), profile["averageRating"])
	assert.Equal(t, float64(1), profile["reviewCount"])
}

func TestMessagingFlow(t *testing.T) {
	handler := newTestServer(t)

	alice := signup(t, handler, "alice", "student")
	bob := signup(t, handler, "bob", "client")

	rec, conversation := alice.do(http.MethodPost, "/messages/conversations", map[string]interface{}{
		"userId": bob.userID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	conversationID := conversation["id"].(string)

	// The same pair from the other side lands on the same conversation
	rec, mirrored := bob.do(http.MethodPost, "/messages/conversations", map[string]interface{}{
		"userId": alice.userID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, conversationID, mirrored["id"])

	// Empty content is rejected
	rec, _ = alice.do(http.MethodPost, "/messages/conversations/"+conversationID+"/messages", map[string]interface{}{
		"content": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, content := range []string{"hi bob", "are you there?"} {
		rec, _ = alice.do(http.MethodPost, "/messages/conversations/"+conversationID+"/messages", map[string]interface{}{
			"content": content,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	// Outsiders cannot read the conversation
	mallory := signup(t, handler, "mallory", "student")
	rec, _ = mallory.do(http.MethodGet, "/messages/conversations/"+conversationID+"/messages", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Bob reads them in order
	req := httptest.NewRequest(http.MethodGet, "/messages/conversations/"+conversationID+"/messages", nil)
	req.Header.Set("Authorization", "Bearer "+bob.token)
	listRec := httptest.NewRecorder()
	handler.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)

	var messages []map[string]interface{}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "hi bob", messages[0]["content"])
	assert.Equal(t, "are you there?", messages[1]["content"])

	// Mark read reports the touched count
	rec, marked := bob.do(http.MethodPost, "/messages/conversations/"+conversationID+"/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), marked["updated"])
}

func TestConcurrentConversationStartsConverge(t *testing.T) {
	handler := newTestServer(t)

	alice := signup(t, handler, "race-alice", "student")
	bob := signup(t, handler, "race-bob", "client")

	const attempts = 10
	ids := make([]string, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			requester, other := alice, bob
			if i%2 == 1 {
				requester, other = bob, alice
			}

			payload, _ := json.Marshal(map[string]interface{}{"userId": other.userID})
			req := httptest.NewRequest(http.MethodPost, "/messages/conversations", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+requester.token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("unexpected status %d: %s", rec.Code, rec.Body.String())
				return
			}
			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Errorf("bad body: %v", err)
				return
			}
			ids[i] = fmt.Sprint(body["id"])
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}
