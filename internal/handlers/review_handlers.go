package handlers

import (
	"campus-gigs/internal/engine/actors"
	"campus-gigs/internal/utils"
	"encoding/json"
	"net/http"
)

// SubmitReviewRequest represents a post-completion review
type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// HandleSubmitReview lets a project participant review the other side after
// the project completes.
func (s *Server) HandleSubmitReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		projectID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid project ID"))
			return
		}

		reviewerID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req SubmitReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, reqErr := s.request(s.Engine.GetApplicationActor(), &actors.SubmitReviewMsg{
			ProjectID:  projectID,
			ReviewerID: reviewerID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		})
		s.respondActorResult(w, result, reqErr, "application actor", http.StatusCreated)
	}
}

// HandleGetUserReviews lists the reviews a user has received
func (s *Server) HandleGetUserReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		userID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid user ID"))
			return
		}

		result, reqErr := s.request(s.Engine.GetApplicationActor(), &actors.GetUserReviewsMsg{
			UserID: userID,
		})
		s.respondActorResult(w, result, reqErr, "application actor", http.StatusOK)
	}
}
