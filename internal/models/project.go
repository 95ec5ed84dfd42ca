package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus tracks a project from posting to close-out.
type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

type Project struct {
	ID          uuid.UUID     `json:"id"`
	Reference   string        `json:"reference"` // short human-facing code, e.g. PRJ-2hYx...
	ClientID    uuid.UUID     `json:"clientId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Budget      float64       `json:"budget"`
	Skills      []string      `json:"skills,omitempty"`
	Status      ProjectStatus `json:"status"`
	AssignedTo  *uuid.UUID    `json:"assignedTo,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
