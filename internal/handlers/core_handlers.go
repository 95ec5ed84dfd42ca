package handlers

import (
	"campus-gigs/internal/engine/actors"
	"campus-gigs/internal/utils"
	"log"
	"net/http"
)

// HealthResponse is the /health payload
type HealthResponse struct {
	Status        string         `json:"status"`
	ProjectsSince int            `json:"projectsCreatedSinceStart"`
	Metrics       utils.Snapshot `json:"metrics"`
}

// HandleHealth reports process health and a metrics snapshot
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectCount := 0
		result, err := s.request(s.Engine.GetProjectActor(), &actors.GetCountsMsg{})
		if err != nil {
			log.Printf("Health check: project actor unavailable: %v", err)
		} else if count, ok := result.(int); ok {
			projectCount = count
		}

		respondJSON(w, http.StatusOK, HealthResponse{
			Status:        "ok",
			ProjectsSince: projectCount,
			Metrics:       s.Metrics.GetSnapshot(),
		})
	}
}

// Routes wires every endpoint onto a ServeMux. Method and wildcard matching
// come from the 1.22 ServeMux patterns.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HandleHealth())

	mux.HandleFunc("POST /auth/register", s.HandleUserRegistration())
	mux.HandleFunc("POST /auth/login", s.HandleUserLogin())

	mux.HandleFunc("GET /users/{id}", s.HandleGetUser())
	mux.HandleFunc("PUT /users/{id}", s.HandleUpdateUser())
	mux.HandleFunc("GET /users/{id}/reviews", s.HandleGetUserReviews())

	mux.HandleFunc("POST /projects", s.HandleCreateProject())
	mux.HandleFunc("GET /projects", s.HandleListProjects())
	mux.HandleFunc("GET /projects/{id}", s.HandleGetProject())
	mux.HandleFunc("DELETE /projects/{id}", s.HandleCancelProject())
	mux.HandleFunc("POST /projects/{id}/applications", s.HandleApply())
	mux.HandleFunc("GET /projects/{id}/applications", s.HandleListProjectApplications())
	mux.HandleFunc("POST /projects/{id}/reviews", s.HandleSubmitReview())

	mux.HandleFunc("GET /applications/{id}", s.HandleGetApplication())
	mux.HandleFunc("PUT /applications/{id}/status", s.HandleDecideApplication())
	mux.HandleFunc("POST /applications/{id}/submissions", s.HandleCreateSubmission())
	mux.HandleFunc("GET /applications/{id}/submissions", s.HandleListApplicationSubmissions())

	mux.HandleFunc("POST /submissions/{id}/review", s.HandleReviewSubmission())

	mux.HandleFunc("POST /messages/conversations", s.HandleStartConversation())
	mux.HandleFunc("GET /messages/conversations", s.HandleListConversations())
	mux.HandleFunc("GET /messages/conversations/{id}/messages", s.HandleGetMessages())
	mux.HandleFunc("POST /messages/conversations/{id}/messages", s.HandleSendMessage())
	mux.HandleFunc("POST /messages/conversations/{id}/read", s.HandleMarkConversationRead())

	mux.HandleFunc("GET /ws", s.HandleWebSocket())

	return mux
}
