package actors

import (
	"context"
	"testing"
	"time"

	"campus-gigs/internal/database"
	"campus-gigs/internal/models"
	"campus-gigs/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lifecycleFixture struct {
	db      database.Adapter
	system  *actor.ActorSystem
	pid     *actor.PID
	client  *models.User
	student *models.User
	project *models.Project
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	db := database.NewMemoryAdapter()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewApplicationActor(db, utils.NewMetricsCollector())
	})
	pid := system.Root.Spawn(props)

	client := seedUser(t, db, models.RoleClient)
	student := seedUser(t, db, models.RoleStudent)

	now := time.Now()
	project := &models.Project{
		ID:          uuid.New(),
		Reference:   "PRJ-test",
		ClientID:    client.ID,
		Title:       "Build a scraper",
		Description: "Scrape the things",
		Budget:      200,
		Status:      models.ProjectOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.SaveProject(context.Background(), project))

	return &lifecycleFixture{
		db:      db,
		system:  system,
		pid:     pid,
		client:  client,
		student: student,
		project: project,
	}
}

func (f *lifecycleFixture) apply(t *testing.T, student *models.User) *models.Application {
	t.Helper()
	result := ask(t, f.system, f.pid, &ApplyMsg{
		ProjectID:   f.project.ID,
		StudentID:   student.ID,
		CoverLetter: "pick me",
		BidAmount:   150,
	})
	application, ok := result.(*models.Application)
	require.True(t, ok, "unexpected response: %T", result)
	return application
}

func TestApplyCreatesPendingApplication(t *testing.T) {
	f := newLifecycleFixture(t)

	application := f.apply(t, f.student)
	assert.Equal(t, models.ApplicationPending, application.Status)
	assert.Equal(t, f.project.ID, application.ProjectID)

	// Duplicate application from the same student is rejected
	result := ask(t, f.system, f.pid, &ApplyMsg{
		ProjectID: f.project.ID,
		StudentID: f.student.ID,
		BidAmount: 100,
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrConflict, appErr.Code)
}

func TestClientsCannotApply(t *testing.T) {
	f := newLifecycleFixture(t)

	result := ask(t, f.system, f.pid, &ApplyMsg{
		ProjectID: f.project.ID,
		StudentID: f.client.ID,
		BidAmount: 100,
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestPendingApplicationDecidedExactlyOnce(t *testing.T) {
	f := newLifecycleFixture(t)
	application := f.apply(t, f.student)

	result := ask(t, f.system, f.pid, &DecideApplicationMsg{
		ApplicationID: application.ID,
		ClientID:      f.client.ID,
		Status:        models.ApplicationAccepted,
	})
	accepted, ok := result.(*models.Application)
	require.True(t, ok, "unexpected response: %T", result)
	assert.Equal(t, models.ApplicationAccepted, accepted.Status)

	// Accept assigns the project
	project, err := f.db.GetProject(context.Background(), f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectInProgress, project.Status)
	require.NotNil(t, project.AssignedTo)
	assert.Equal(t, f.student.ID, *project.AssignedTo)

	// Rejecting after accepting is not a legal lifecycle edge
	result = ask(t, f.system, f.pid, &DecideApplicationMsg{
		ApplicationID: application.ID,
		ClientID:      f.client.ID,
		Status:        models.ApplicationRejected,
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidTransition, appErr.Code)
}

func TestSingleHirePerProject(t *testing.T) {
	f := newLifecycleFixture(t)
	other := seedUser(t, f.db, models.RoleStudent)

	first := f.apply(t, f.student)
	second := f.apply(t, other)

	result := ask(t, f.system, f.pid, &DecideApplicationMsg{
		ApplicationID: first.ID,
		ClientID:      f.client.ID,
		Status:        models.ApplicationAccepted,
	})
	_, ok := result.(*models.Application)
	require.True(t, ok)

	// Accepting a second application while the first is active conflicts
	result = ask(t, f.system, f.pid, &DecideApplicationMsg{
		ApplicationID: second.ID,
		ClientID:      f.client.ID,
		Status:        models.ApplicationAccepted,
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrConflict, appErr.Code)

	// The losing application stays pending
	stored, err := f.db.GetApplication(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, stored.Status)
}

func TestOnlyOwnerDecides(t *testing.T) {
	f := newLifecycleFixture(t)
	stranger := seedUser(t, f.db, models.RoleClient)
	application := f.apply(t, f.student)

	result := ask(t, f.system, f.pid, &DecideApplicationMsg{
		ApplicationID: application.ID,
		ClientID:      stranger.ID,
		Status:        models.ApplicationAccepted,
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestSubmissionReviewLoop(t *testing.T) {
	f := newLifecycleFixture(t)
	application := f.apply(t, f.student)

	ask(t, f.system, f.pid, &DecideApplicationMsg{
		ApplicationID: application.ID,
		ClientID:      f.client.ID,
		Status:        models.ApplicationAccepted,
	})

	// First submission goes under review
	result := ask(t, f.system, f.pid, &CreateSubmissionMsg{
		ApplicationID: application.ID,
		StudentID:     f.student.ID,
		Note:          "first draft",
	})
	submission, ok := result.(*models.Submission)
	require.True(t, ok, "unexpected response: %T", result)
	assert.Equal(t, models.SubmissionUnderReview, submission.Status)

	stored, err := f.db.GetApplication(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationUnderReview, stored.Status)

	// Submitting again while under review is not a legal lifecycle edge
	result = ask(t, f.system, f.pid, &CreateSubmissionMsg{
		ApplicationID: application.ID,
		StudentID:     f.student.ID,
		Note:          "again",
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidTransition, appErr.Code)

	// Request changes sends the application back to in_progress
	result = ask(t, f.system, f.pid, &ReviewSubmissionMsg{
		SubmissionID:     submission.ID,
		ClientID:         f.client.ID,
		Action:           models.ActionRequestChanges,
		RequestedChanges: "tighten the intro",
	})
	reviewed, ok := result.(*models.Submission)
	require.True(t, ok, "unexpected response: %T", result)
	assert.Equal(t, models.SubmissionChangesRequested, reviewed.Status)

	stored, err = f.db.GetApplication(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationInProgress, stored.Status)

	// Second round: submit and approve
	result = ask(t, f.system, f.pid, &CreateSubmissionMsg{
		ApplicationID: application.ID,
		StudentID:     f.student.ID,
		Note:          "final draft",
	})
	final, ok := result.(*models.Submission)
	require.True(t, ok)

	result = ask(t, f.system, f.pid, &ReviewSubmissionMsg{
		SubmissionID: final.ID,
		ClientID:     f.client.ID,
		Action:       models.ActionApprove,
		Comment:      "ship it",
	})
	approved, ok := result.(*models.Submission)
	require.True(t, ok, "unexpected response: %T", result)
	assert.Equal(t, models.SubmissionApproved, approved.Status)

	stored, err = f.db.GetApplication(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationCompleted, stored.Status)

	project, err := f.db.GetProject(context.Background(), f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, project.Status)
}

func TestListApplicationSubmissions(t *testing.T) {
	f := newLifecycleFixture(t)
	application := f.apply(t, f.student)

	ask(t, f.system, f.pid, &DecideApplicationMsg{
		ApplicationID: application.ID,
		ClientID:      f.client.ID,
		Status:        models.ApplicationAccepted,
	})

	first := ask(t, f.system, f.pid, &CreateSubmissionMsg{
		ApplicationID: application.ID,
		StudentID:     f.student.ID,
		Note:          "first draft",
	}).(*models.Submission)
	ask(t, f.system, f.pid, &ReviewSubmissionMsg{
		SubmissionID:     first.ID,
		ClientID:         f.client.ID,
		Action:           models.ActionRequestChanges,
		RequestedChanges: "more detail",
	})
	ask(t, f.system, f.pid, &CreateSubmissionMsg{
		ApplicationID: application.ID,
		StudentID:     f.student.ID,
		Note:          "second draft",
	})

	// Both participants see the full submission history
	for _, requester := range []uuid.UUID{f.student.ID, f.client.ID} {
		result := ask(t, f.system, f.pid, &GetApplicationSubmissionsMsg{
			ApplicationID: application.ID,
			RequesterID:   requester,
		})
		submissions, ok := result.([]*models.Submission)
		require.True(t, ok, "unexpected response: %T", result)
		assert.Len(t, submissions, 2)
	}

	// Outsiders do not
	stranger := seedUser(t, f.db, models.RoleStudent)
	result := ask(t, f.system, f.pid, &GetApplicationSubmissionsMsg{
		ApplicationID: application.ID,
		RequesterID:   stranger.ID,
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)
}

func TestReviewGating(t *testing.T) {
	f := newLifecycleFixture(t)

	// No review before the project completes
	result := ask(t, f.system, f.pid, &SubmitReviewMsg{
		ProjectID:  f.project.ID,
		ReviewerID: f.client.ID,
		Rating:     5,
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	// Run the full lifecycle
	application := f.apply(t, f.student)
	ask(t, f.system, f.pid, &DecideApplicationMsg{
		ApplicationID: application.ID,
		ClientID:      f.client.ID,
		Status:        models.ApplicationAccepted,
	})
	submission := ask(t, f.system, f.pid, &CreateSubmissionMsg{
		ApplicationID: application.ID,
		StudentID:     f.student.ID,
		Note:          "done",
	}).(*models.Submission)
	ask(t, f.system, f.pid, &ReviewSubmissionMsg{
		SubmissionID: submission.ID,
		ClientID:     f.client.ID,
		Action:       models.ActionApprove,
	})

	// Both sides may now review, outsiders may not
	result = ask(t, f.system, f.pid, &SubmitReviewMsg{
		ProjectID:  f.project.ID,
		ReviewerID: f.client.ID,
		Rating:     5,
		Comment:    "great work",
	})
	clientReview, ok := result.(*models.Review)
	require.True(t, ok, "unexpected response: %T", result)
	assert.Equal(t, f.student.ID, clientReview.RevieweeID)

	result = ask(t, f.system, f.pid, &SubmitReviewMsg{
		ProjectID:  f.project.ID,
		ReviewerID: f.student.ID,
		Rating:     4,
	})
	studentReview, ok := result.(*models.Review)
	require.True(t, ok)
	assert.Equal(t, f.client.ID, studentReview.RevieweeID)

	stranger := seedUser(t, f.db, models.RoleStudent)
	result = ask(t, f.system, f.pid, &SubmitReviewMsg{
		ProjectID:  f.project.ID,
		ReviewerID: stranger.ID,
		Rating:     1,
	})
	appErr, ok = result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	// One review per reviewer per project
	result = ask(t, f.system, f.pid, &SubmitReviewMsg{
		ProjectID:  f.project.ID,
		ReviewerID: f.client.ID,
		Rating:     2,
	})
	appErr, ok = result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrConflict, appErr.Code)

	// And the summary reflects what the student received
	result = ask(t, f.system, f.pid, &GetUserReviewsMsg{UserID: f.student.ID})
	summary, ok := result.(*ReviewSummary)
	require.True(t, ok)
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, 5.0, summary.AverageRating)
}
