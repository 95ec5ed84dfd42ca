package models

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus records the client's verdict on a deliverable.
type SubmissionStatus string

const (
	SubmissionUnderReview      SubmissionStatus = "under_review"
	SubmissionApproved         SubmissionStatus = "approved"
	SubmissionChangesRequested SubmissionStatus = "changes_requested"
	SubmissionRejected         SubmissionStatus = "rejected"
)

// ReviewAction is the client's response to a submission under review.
type ReviewAction string

const (
	ActionApprove        ReviewAction = "approve"
	ActionRequestChanges ReviewAction = "request_changes"
	ActionReject         ReviewAction = "reject"
)

// ValidReviewAction reports whether a is a known review action.
func ValidReviewAction(a ReviewAction) bool {
	return a == ActionApprove || a == ActionRequestChanges || a == ActionReject
}

type Submission struct {
	ID               uuid.UUID        `json:"id"`
	ApplicationID    uuid.UUID        `json:"applicationId"`
	ProjectID        uuid.UUID        `json:"projectId"`
	StudentID        uuid.UUID        `json:"studentId"`
	Note             string           `json:"note,omitempty"`
	FileURL          string           `json:"fileUrl,omitempty"`
	Status           SubmissionStatus `json:"status"`
	ReviewComment    string           `json:"reviewComment,omitempty"`
	RequestedChanges string           `json:"requestedChanges,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	ReviewedAt       *time.Time       `json:"reviewedAt,omitempty"`
}
