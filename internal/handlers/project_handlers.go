package handlers

import (
	"campus-gigs/internal/engine/actors"
	"campus-gigs/internal/utils"
	"encoding/json"
	"net/http"
	"strconv"
)

// CreateProjectRequest represents a request to post a new project
type CreateProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Budget      float64  `json:"budget"`
	Skills      []string `json:"skills"`
}

// HandleCreateProject handles requests to post a new project
func (s *Server) HandleCreateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		clientID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, err := s.request(s.Engine.GetProjectActor(), &actors.CreateProjectMsg{
			ClientID:    clientID,
			Title:       req.Title,
			Description: req.Description,
			Budget:      req.Budget,
			Skills:      req.Skills,
		})
		s.respondActorResult(w, result, err, "project actor", http.StatusCreated)
	}
}

// HandleListProjects lists open projects, optionally filtered by skill
func (s *Server) HandleListProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				respondAppError(w, utils.NewValidationError("limit must be a positive integer"))
				return
			}
			limit = parsed
		}

		result, err := s.request(s.Engine.GetProjectActor(), &actors.ListProjectsMsg{
			Skill: r.URL.Query().Get("skill"),
			Limit: limit,
		})
		s.respondActorResult(w, result, err, "project actor", http.StatusOK)
	}
}

// HandleGetProject returns a single project
func (s *Server) HandleGetProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		projectID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid project ID"))
			return
		}

		result, reqErr := s.request(s.Engine.GetProjectActor(), &actors.GetProjectMsg{
			ProjectID: projectID,
		})
		s.respondActorResult(w, result, reqErr, "project actor", http.StatusOK)
	}
}

// HandleCancelProject cancels an open project
func (s *Server) HandleCancelProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		projectID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid project ID"))
			return
		}

		clientID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		result, reqErr := s.request(s.Engine.GetProjectActor(), &actors.CancelProjectMsg{
			ProjectID: projectID,
			ClientID:  clientID,
		})
		if reqErr != nil {
			s.Metrics.IncrementErrors()
			respondAppError(w, utils.NewActorTimeoutError("project actor"))
			return
		}
		if appErr, ok := result.(*utils.AppError); ok {
			s.Metrics.IncrementErrors()
			respondAppError(w, appErr)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
	}
}
