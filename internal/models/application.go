package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the single source of truth for where an application
// sits in its lifecycle. All status changes must go through TransitionTo.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationInProgress  ApplicationStatus = "in_progress"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationCompleted   ApplicationStatus = "completed"
)

// applicationTransitions enumerates every legal edge of the lifecycle:
// pending -> accepted|rejected, accepted -> in_progress|under_review,
// in_progress -> under_review, under_review -> completed|in_progress.
// under_review -> in_progress covers both "request changes" and a rejected
// submission. accepted -> under_review lets a student submit without an
// explicit begin-work step.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:     {ApplicationAccepted, ApplicationRejected},
	ApplicationAccepted:    {ApplicationInProgress, ApplicationUnderReview},
	ApplicationInProgress:  {ApplicationUnderReview},
	ApplicationUnderReview: {ApplicationCompleted, ApplicationInProgress},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether the application occupies the project's single hire
// slot. At most one application per project may be active at a time.
func (s ApplicationStatus) IsActive() bool {
	switch s {
	case ApplicationAccepted, ApplicationInProgress, ApplicationUnderReview, ApplicationCompleted:
		return true
	}
	return false
}

// ValidApplicationStatus reports whether s is a known status value.
func ValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected,
		ApplicationInProgress, ApplicationUnderReview, ApplicationCompleted:
		return true
	}
	return false
}

type Application struct {
	ID          uuid.UUID         `json:"id"`
	ProjectID   uuid.UUID         `json:"projectId"`
	StudentID   uuid.UUID         `json:"studentId"`
	CoverLetter string            `json:"coverLetter,omitempty"`
	BidAmount   float64           `json:"bidAmount,omitempty"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// TransitionTo moves the application to next, failing on any edge that is not
// part of the lifecycle. A pending application that was already decided can
// never be decided again.
func (a *Application) TransitionTo(next ApplicationStatus) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("cannot transition application from %s to %s", a.Status, next)
	}
	a.Status = next
	a.UpdatedAt = time.Now()
	return nil
}

// BeginWork advances an accepted application to in_progress. It is a no-op
// for applications already past that point.
func (a *Application) BeginWork() {
	if a.Status == ApplicationAccepted {
		a.Status = ApplicationInProgress
		a.UpdatedAt = time.Now()
	}
}
