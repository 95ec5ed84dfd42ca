package handlers

import (
	"campus-gigs/internal/engine/actors"
	"campus-gigs/internal/models"
	"campus-gigs/internal/utils"
	"encoding/json"
	"net/http"
)

// ApplyRequest represents a student's application to a project
type ApplyRequest struct {
	CoverLetter string  `json:"coverLetter"`
	BidAmount   float64 `json:"bidAmount"`
}

// DecideApplicationRequest carries the client's verdict on an application
type DecideApplicationRequest struct {
	Status string `json:"status"`
}

// CreateSubmissionRequest represents a student's work submission
type CreateSubmissionRequest struct {
	Note    string `json:"note"`
	FileURL string `json:"fileUrl"`
}

// ReviewSubmissionRequest carries the client's verdict on a submission
type ReviewSubmissionRequest struct {
	Action           string `json:"action"`
	Comment          string `json:"comment"`
	RequestedChanges string `json:"requestedChanges"`
}

// HandleApply handles a student applying to a project
func (s *Server) HandleApply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		projectID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid project ID"))
			return
		}

		studentID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req ApplyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, reqErr := s.request(s.Engine.GetApplicationActor(), &actors.ApplyMsg{
			ProjectID:   projectID,
			StudentID:   studentID,
			CoverLetter: req.CoverLetter,
			BidAmount:   req.BidAmount,
		})
		s.respondActorResult(w, result, reqErr, "application actor", http.StatusCreated)
	}
}

// HandleListProjectApplications lists a project's applications for its owner
func (s *Server) HandleListProjectApplications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		projectID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid project ID"))
			return
		}

		requesterID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		result, reqErr := s.request(s.Engine.GetApplicationActor(), &actors.GetProjectApplicationsMsg{
			ProjectID:   projectID,
			RequesterID: requesterID,
		})
		s.respondActorResult(w, result, reqErr, "application actor", http.StatusOK)
	}
}

// HandleGetApplication returns a single application to its participants
func (s *Server) HandleGetApplication() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		applicationID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid application ID"))
			return
		}

		requesterID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		result, reqErr := s.request(s.Engine.GetApplicationActor(), &actors.GetApplicationMsg{
			ApplicationID: applicationID,
			RequesterID:   requesterID,
		})
		s.respondActorResult(w, result, reqErr, "application actor", http.StatusOK)
	}
}

// HandleDecideApplication lets the project owner accept or reject a pending
// application.
func (s *Server) HandleDecideApplication() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		applicationID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid application ID"))
			return
		}

		clientID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req DecideApplicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, reqErr := s.request(s.Engine.GetApplicationActor(), &actors.DecideApplicationMsg{
			ApplicationID: applicationID,
			ClientID:      clientID,
			Status:        models.ApplicationStatus(req.Status),
		})
		s.respondActorResult(w, result, reqErr, "application actor", http.StatusOK)
	}
}

// HandleCreateSubmission handles a student submitting work on an application
func (s *Server) HandleCreateSubmission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		applicationID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid application ID"))
			return
		}

		studentID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req CreateSubmissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, reqErr := s.request(s.Engine.GetApplicationActor(), &actors.CreateSubmissionMsg{
			ApplicationID: applicationID,
			StudentID:     studentID,
			Note:          req.Note,
			FileURL:       req.FileURL,
		})
		s.respondActorResult(w, result, reqErr, "application actor", http.StatusCreated)
	}
}

// HandleListApplicationSubmissions returns an application's submission history
func (s *Server) HandleListApplicationSubmissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		applicationID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid application ID"))
			return
		}

		requesterID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		result, reqErr := s.request(s.Engine.GetApplicationActor(), &actors.GetApplicationSubmissionsMsg{
			ApplicationID: applicationID,
			RequesterID:   requesterID,
		})
		s.respondActorResult(w, result, reqErr, "application actor", http.StatusOK)
	}
}

// HandleReviewSubmission lets the project owner respond to a submission
func (s *Server) HandleReviewSubmission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		submissionID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid submission ID"))
			return
		}

		clientID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req ReviewSubmissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, reqErr := s.request(s.Engine.GetApplicationActor(), &actors.ReviewSubmissionMsg{
			SubmissionID:     submissionID,
			ClientID:         clientID,
			Action:           models.ReviewAction(req.Action),
			Comment:          req.Comment,
			RequestedChanges: req.RequestedChanges,
		})
		s.respondActorResult(w, result, reqErr, "application actor", http.StatusOK)
	}
}
