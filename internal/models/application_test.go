package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatusTransitions(t *testing.T) {
	assert.True(t, ApplicationPending.CanTransitionTo(ApplicationAccepted))
	assert.True(t, ApplicationPending.CanTransitionTo(ApplicationRejected))
	assert.True(t, ApplicationAccepted.CanTransitionTo(ApplicationInProgress))
	assert.True(t, ApplicationAccepted.CanTransitionTo(ApplicationUnderReview))
	assert.True(t, ApplicationInProgress.CanTransitionTo(ApplicationUnderReview))
	assert.True(t, ApplicationUnderReview.CanTransitionTo(ApplicationCompleted))
	assert.True(t, ApplicationUnderReview.CanTransitionTo(ApplicationInProgress))

	// Decisions are final
	assert.False(t, ApplicationAccepted.CanTransitionTo(ApplicationRejected))
	assert.False(t, ApplicationRejected.CanTransitionTo(ApplicationAccepted))
	assert.False(t, ApplicationRejected.CanTransitionTo(ApplicationPending))
	assert.False(t, ApplicationCompleted.CanTransitionTo(ApplicationInProgress))
	assert.False(t, ApplicationPending.CanTransitionTo(ApplicationCompleted))
}

func TestApplicationTransitionTo(t *testing.T) {
	app := &Application{Status: ApplicationPending}

	err := app.TransitionTo(ApplicationAccepted)
	assert.NoError(t, err)
	assert.Equal(t, ApplicationAccepted, app.Status)

	err = app.TransitionTo(ApplicationRejected)
	assert.Error(t, err)
	assert.Equal(t, ApplicationAccepted, app.Status)
}

func TestApplicationIsActive(t *testing.T) {
	active := []ApplicationStatus{
		ApplicationAccepted,
		ApplicationInProgress,
		ApplicationUnderReview,
		ApplicationCompleted,
	}
	for _, status := range active {
		assert.True(t, status.IsActive(), "expected %s to be active", status)
	}

	assert.False(t, ApplicationPending.IsActive())
	assert.False(t, ApplicationRejected.IsActive())
}

func TestBeginWork(t *testing.T) {
	app := &Application{Status: ApplicationAccepted}
	app.BeginWork()
	assert.Equal(t, ApplicationInProgress, app.Status)

	// No-op from any other state
	app.Status = ApplicationPending
	app.BeginWork()
	assert.Equal(t, ApplicationPending, app.Status)
}
