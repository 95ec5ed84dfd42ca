package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole distinguishes the two sides of the marketplace.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleClient  UserRole = "client"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r UserRole) bool {
	return r == RoleStudent || r == RoleClient
}

type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           UserRole  `json:"role"`
	Bio            string    `json:"bio,omitempty"`
	Skills         []string  `json:"skills,omitempty"`
	HourlyRate     float64   `json:"hourlyRate,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActive     time.Time `json:"lastActive"`
}
