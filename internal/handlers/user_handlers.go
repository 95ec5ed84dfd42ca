package handlers

import (
	"campus-gigs/internal/engine/actors"
	"campus-gigs/internal/models"
	"campus-gigs/internal/types"
	"campus-gigs/internal/utils"
	"encoding/json"
	"log"
	"net/http"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries the editable profile fields
type UpdateProfileRequest struct {
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
	HourlyRate float64  `json:"hourlyRate"`
}

// HandleUserRegistration handles requests to register a new user
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, err := s.request(s.Engine.GetUserSupervisor(), &actors.RegisterUserMsg{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			Role:     models.UserRole(req.Role),
		})
		s.respondActorResult(w, result, err, "user supervisor", http.StatusCreated)
	}
}

// HandleUserLogin handles requests to log in a user
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, err := s.request(s.Engine.GetUserSupervisor(), &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			log.Printf("Login request failed: %v", err)
			respondAppError(w, utils.NewActorTimeoutError("user supervisor"))
			return
		}

		loginResp, ok := result.(*types.LoginResponse)
		if !ok {
			log.Printf("Unexpected login response type: %T", result)
			respondAppError(w, utils.NewAppError(utils.ErrDatabase, "Login failed", nil))
			return
		}

		if !loginResp.Success {
			s.Metrics.IncrementErrors()
			respondJSON(w, http.StatusUnauthorized, loginResp)
			return
		}
		respondJSON(w, http.StatusOK, loginResp)
	}
}

// UserProfileResponse is a public profile with its received-review summary.
type UserProfileResponse struct {
	*models.User
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// HandleGetUser returns a user's public profile
func (s *Server) HandleGetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		userID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid user ID"))
			return
		}

		result, reqErr := s.request(s.Engine.GetUserSupervisor(), &actors.GetUserProfileMsg{
			UserID: userID,
		})
		user, ok := result.(*models.User)
		if !ok {
			s.respondActorResult(w, result, reqErr, "user supervisor", http.StatusOK)
			return
		}

		profile := &UserProfileResponse{User: user}
		if summaryRes, sumErr := s.request(s.Engine.GetApplicationActor(), &actors.GetUserReviewsMsg{
			UserID: userID,
		}); sumErr == nil {
			if summary, ok := summaryRes.(*actors.ReviewSummary); ok {
				profile.AverageRating = summary.AverageRating
				profile.ReviewCount = summary.Count
			}
		} else {
			log.Printf("Review summary lookup failed for %s: %v", userID, sumErr)
		}
		respondJSON(w, http.StatusOK, profile)
	}
}

// HandleUpdateUser updates the authenticated user's own profile
func (s *Server) HandleUpdateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		userID, err := pathUUID(r, "id")
		if err != nil {
			respondAppError(w, utils.NewValidationError("Invalid user ID"))
			return
		}

		requesterID, ok := currentUser(r)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}
		if requesterID != userID {
			respondAppError(w, utils.NewForbiddenError("cannot edit another user's profile"))
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("Invalid request body"))
			return
		}

		result, reqErr := s.request(s.Engine.GetUserSupervisor(), &actors.UpdateProfileMsg{
			UserID:     userID,
			Bio:        req.Bio,
			Skills:     req.Skills,
			HourlyRate: req.HourlyRate,
		})
		s.respondActorResult(w, result, reqErr, "user supervisor", http.StatusOK)
	}
}
