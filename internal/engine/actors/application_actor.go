package actors

import (
	"campus-gigs/internal/database"
	"campus-gigs/internal/models"
	"campus-gigs/internal/utils"
	"log"
	"strings"
	"time"

	stdctx "context"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for Application lifecycle operations
type (
	ApplyMsg struct {
		ProjectID   uuid.UUID
		StudentID   uuid.UUID
		CoverLetter string
		BidAmount   float64
	}

	GetApplicationMsg struct {
		ApplicationID uuid.UUID
		RequesterID   uuid.UUID
	}

	GetProjectApplicationsMsg struct {
		ProjectID   uuid.UUID
		RequesterID uuid.UUID
	}

	// DecideApplicationMsg carries the client's accept or reject verdict on a
	// pending application.
	DecideApplicationMsg struct {
		ApplicationID uuid.UUID
		ClientID      uuid.UUID
		Status        models.ApplicationStatus
	}

	CreateSubmissionMsg struct {
		ApplicationID uuid.UUID
		StudentID     uuid.UUID
		Note          string
		FileURL       string
	}

	GetApplicationSubmissionsMsg struct {
		ApplicationID uuid.UUID
		RequesterID   uuid.UUID
	}

	ReviewSubmissionMsg struct {
		SubmissionID     uuid.UUID
		ClientID         uuid.UUID
		Action           models.ReviewAction
		Comment          string
		RequestedChanges string
	}

	SubmitReviewMsg struct {
		ProjectID  uuid.UUID
		ReviewerID uuid.UUID
		Rating     int
		Comment    string
	}

	GetUserReviewsMsg struct {
		UserID uuid.UUID
	}
)

// ReviewSummary is the listing response for a user's received reviews.
type ReviewSummary struct {
	Reviews       []*models.Review `json:"reviews"`
	AverageRating float64          `json:"averageRating"`
	Count         int              `json:"count"`
}

// ApplicationActor owns the hiring lifecycle: applications, work submissions,
// submission verdicts and post-completion reviews. Serializing these through
// one actor means the single-hire check and the status update cannot
// interleave with a competing accept.
type ApplicationActor struct {
	db      database.Adapter
	metrics *utils.MetricsCollector
}

func NewApplicationActor(db database.Adapter, metrics *utils.MetricsCollector) actor.Actor {
	return &ApplicationActor{
		db:      db,
		metrics: metrics,
	}
}

func (a *ApplicationActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *ApplyMsg:
		a.handleApply(context, msg)
	case *GetApplicationMsg:
		a.handleGet(context, msg)
	case *GetProjectApplicationsMsg:
		a.handleGetProjectApplications(context, msg)
	case *DecideApplicationMsg:
		a.handleDecide(context, msg)
	case *CreateSubmissionMsg:
		a.handleCreateSubmission(context, msg)
	case *GetApplicationSubmissionsMsg:
		a.handleGetSubmissions(context, msg)
	case *ReviewSubmissionMsg:
		a.handleReviewSubmission(context, msg)
	case *SubmitReviewMsg:
		a.handleSubmitReview(context, msg)
	case *GetUserReviewsMsg:
		a.handleGetUserReviews(context, msg)
	}
}

func (a *ApplicationActor) handleApply(context actor.Context, msg *ApplyMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.BidAmount <= 0 {
		context.Respond(utils.NewValidationError("bid amount must be positive"))
		return
	}

	student, err := a.db.GetUser(ctx, msg.StudentID)
	if err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.StudentID.String()))
		return
	}
	if student.Role != models.RoleStudent {
		context.Respond(utils.NewForbiddenError("only students can apply to projects"))
		return
	}

	project, err := a.db.GetProject(ctx, msg.ProjectID)
	if err != nil {
		respondError(context, err, "Failed to fetch project")
		return
	}
	if project.Status != models.ProjectOpen {
		context.Respond(utils.NewConflictError("project is not open for applications"))
		return
	}
	if project.ClientID == msg.StudentID {
		context.Respond(utils.NewForbiddenError("cannot apply to your own project"))
		return
	}

	if existing, _ := a.db.GetApplicationByProjectAndStudent(ctx, msg.ProjectID, msg.StudentID); existing != nil {
		context.Respond(utils.NewConflictError("you have already applied to this project"))
		return
	}

	now := time.Now()
	application := &models.Application{
		ID:          uuid.New(),
		ProjectID:   msg.ProjectID,
		StudentID:   msg.StudentID,
		CoverLetter: msg.CoverLetter,
		BidAmount:   msg.BidAmount,
		Status:      models.ApplicationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := a.db.SaveApplication(ctx, application); err != nil {
		log.Printf("Failed to save application: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save application", err))
		return
	}

	a.metrics.AddOperationLatency("apply", time.Since(startTime))
	context.Respond(application)
}

func (a *ApplicationActor) handleGet(context actor.Context, msg *GetApplicationMsg) {
	ctx := stdctx.Background()

	application, err := a.db.GetApplication(ctx, msg.ApplicationID)
	if err != nil {
		respondError(context, err, "Failed to fetch application")
		return
	}

	project, err := a.db.GetProject(ctx, application.ProjectID)
	if err != nil {
		respondError(context, err, "Failed to fetch project")
		return
	}

	// Only the applicant and the project owner can see an application.
	if msg.RequesterID != application.StudentID && msg.RequesterID != project.ClientID {
		context.Respond(utils.NewForbiddenError("not your application"))
		return
	}
	context.Respond(application)
}

func (a *ApplicationActor) handleGetProjectApplications(context actor.Context, msg *GetProjectApplicationsMsg) {
	ctx := stdctx.Background()

	project, err := a.db.GetProject(ctx, msg.ProjectID)
	if err != nil {
		respondError(context, err, "Failed to fetch project")
		return
	}
	if project.ClientID != msg.RequesterID {
		context.Respond(utils.NewForbiddenError("only the project owner can list applications"))
		return
	}

	applications, err := a.db.GetProjectApplications(ctx, msg.ProjectID)
	if err != nil {
		respondError(context, err, "Failed to list applications")
		return
	}
	if applications == nil {
		applications = []*models.Application{}
	}
	context.Respond(applications)
}

func (a *ApplicationActor) handleDecide(context actor.Context, msg *DecideApplicationMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Status != models.ApplicationAccepted && msg.Status != models.ApplicationRejected {
		context.Respond(utils.NewValidationError("status must be accepted or rejected"))
		return
	}

	application, err := a.db.GetApplication(ctx, msg.ApplicationID)
	if err != nil {
		respondError(context, err, "Failed to fetch application")
		return
	}

	project, err := a.db.GetProject(ctx, application.ProjectID)
	if err != nil {
		respondError(context, err, "Failed to fetch project")
		return
	}
	if project.ClientID != msg.ClientID {
		context.Respond(utils.NewForbiddenError("only the project owner can decide applications"))
		return
	}

	from := application.Status
	if err := application.TransitionTo(msg.Status); err != nil {
		context.Respond(utils.NewInvalidTransitionError(string(from), string(msg.Status)))
		return
	}

	if msg.Status == models.ApplicationAccepted {
		active, err := a.db.HasActiveApplication(ctx, project.ID)
		if err != nil {
			respondError(context, err, "Failed to check active applications")
			return
		}
		if active {
			context.Respond(utils.NewConflictError("another application is already active for this project"))
			return
		}
	}

	if err := a.db.UpdateApplicationStatus(ctx, application.ID, from, msg.Status); err != nil {
		respondError(context, err, "Failed to update application")
		return
	}

	if msg.Status == models.ApplicationAccepted {
		studentID := application.StudentID
		if err := a.db.UpdateProjectStatus(ctx, project.ID, models.ProjectInProgress, &studentID); err != nil {
			log.Printf("Failed to assign project %s after accept: %v", project.ID, err)
		}
	}

	a.metrics.AddOperationLatency("decide_application", time.Since(startTime))
	context.Respond(application)
}

func (a *ApplicationActor) handleCreateSubmission(context actor.Context, msg *CreateSubmissionMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Note) == "" && strings.TrimSpace(msg.FileURL) == "" {
		context.Respond(utils.NewValidationError("a note or a file URL is required"))
		return
	}

	application, err := a.db.GetApplication(ctx, msg.ApplicationID)
	if err != nil {
		respondError(context, err, "Failed to fetch application")
		return
	}
	if application.StudentID != msg.StudentID {
		context.Respond(utils.NewForbiddenError("not your application"))
		return
	}
	// Work begins implicitly with the first submission-related action.
	from := application.Status
	application.BeginWork()
	if err := application.TransitionTo(models.ApplicationUnderReview); err != nil {
		context.Respond(utils.NewInvalidTransitionError(string(from), string(models.ApplicationUnderReview)))
		return
	}

	submission := &models.Submission{
		ID:            uuid.New(),
		ApplicationID: application.ID,
		ProjectID:     application.ProjectID,
		StudentID:     application.StudentID,
		Note:          msg.Note,
		FileURL:       msg.FileURL,
		Status:        models.SubmissionUnderReview,
		CreatedAt:     time.Now(),
	}
	if err := a.db.SaveSubmission(ctx, submission); err != nil {
		log.Printf("Failed to save submission: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save submission", err))
		return
	}

	if err := a.db.UpdateApplicationStatus(ctx, application.ID, from, models.ApplicationUnderReview); err != nil {
		respondError(context, err, "Failed to update application")
		return
	}

	a.metrics.AddOperationLatency("create_submission", time.Since(startTime))
	context.Respond(submission)
}

func (a *ApplicationActor) handleGetSubmissions(context actor.Context, msg *GetApplicationSubmissionsMsg) {
	ctx := stdctx.Background()

	application, err := a.db.GetApplication(ctx, msg.ApplicationID)
	if err != nil {
		respondError(context, err, "Failed to fetch application")
		return
	}

	project, err := a.db.GetProject(ctx, application.ProjectID)
	if err != nil {
		respondError(context, err, "Failed to fetch project")
		return
	}
	if msg.RequesterID != application.StudentID && msg.RequesterID != project.ClientID {
		context.Respond(utils.NewForbiddenError("not your application"))
		return
	}

	submissions, err := a.db.GetApplicationSubmissions(ctx, msg.ApplicationID)
	if err != nil {
		respondError(context, err, "Failed to list submissions")
		return
	}
	if submissions == nil {
		submissions = []*models.Submission{}
	}
	context.Respond(submissions)
}

func (a *ApplicationActor) handleReviewSubmission(context actor.Context, msg *ReviewSubmissionMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if !models.ValidReviewAction(msg.Action) {
		context.Respond(utils.NewValidationError("action must be approve, request_changes or reject"))
		return
	}

	submission, err := a.db.GetSubmission(ctx, msg.SubmissionID)
	if err != nil {
		respondError(context, err, "Failed to fetch submission")
		return
	}

	project, err := a.db.GetProject(ctx, submission.ProjectID)
	if err != nil {
		respondError(context, err, "Failed to fetch project")
		return
	}
	if project.ClientID != msg.ClientID {
		context.Respond(utils.NewForbiddenError("only the project owner can review submissions"))
		return
	}
	if submission.Status != models.SubmissionUnderReview {
		context.Respond(utils.NewConflictError("submission is no longer under review"))
		return
	}

	var submissionStatus models.SubmissionStatus
	var applicationStatus models.ApplicationStatus
	switch msg.Action {
	case models.ActionApprove:
		submissionStatus = models.SubmissionApproved
		applicationStatus = models.ApplicationCompleted
	case models.ActionRequestChanges:
		submissionStatus = models.SubmissionChangesRequested
		applicationStatus = models.ApplicationInProgress
	case models.ActionReject:
		submissionStatus = models.SubmissionRejected
		applicationStatus = models.ApplicationInProgress
	}

	application, err := a.db.GetApplication(ctx, submission.ApplicationID)
	if err != nil {
		respondError(context, err, "Failed to fetch application")
		return
	}
	from := application.Status
	if err := application.TransitionTo(applicationStatus); err != nil {
		context.Respond(utils.NewInvalidTransitionError(string(from), string(applicationStatus)))
		return
	}

	if err := a.db.UpdateSubmissionReview(ctx, submission.ID, submissionStatus, msg.Comment, msg.RequestedChanges); err != nil {
		respondError(context, err, "Failed to update submission")
		return
	}

	if err := a.db.UpdateApplicationStatus(ctx, application.ID, from, applicationStatus); err != nil {
		respondError(context, err, "Failed to update application")
		return
	}

	if msg.Action == models.ActionApprove {
		if err := a.db.UpdateProjectStatus(ctx, project.ID, models.ProjectCompleted, nil); err != nil {
			log.Printf("Failed to complete project %s after approval: %v", project.ID, err)
		}
	}

	updated, err := a.db.GetSubmission(ctx, submission.ID)
	if err != nil {
		respondError(context, err, "Failed to fetch submission")
		return
	}

	a.metrics.AddOperationLatency("review_submission", time.Since(startTime))
	context.Respond(updated)
}

func (a *ApplicationActor) handleSubmitReview(context actor.Context, msg *SubmitReviewMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Rating < 1 || msg.Rating > 5 {
		context.Respond(utils.NewValidationError("rating must be between 1 and 5"))
		return
	}

	project, err := a.db.GetProject(ctx, msg.ProjectID)
	if err != nil {
		respondError(context, err, "Failed to fetch project")
		return
	}
	if project.Status != models.ProjectCompleted {
		context.Respond(utils.NewForbiddenError("reviews can only be left on completed projects"))
		return
	}
	if project.AssignedTo == nil {
		context.Respond(utils.NewConflictError("project has no assigned student"))
		return
	}

	var revieweeID uuid.UUID
	switch msg.ReviewerID {
	case project.ClientID:
		revieweeID = *project.AssignedTo
	case *project.AssignedTo:
		revieweeID = project.ClientID
	default:
		context.Respond(utils.NewForbiddenError("only project participants can leave reviews"))
		return
	}

	if existing, _ := a.db.GetReviewByProjectAndReviewer(ctx, project.ID, msg.ReviewerID); existing != nil {
		context.Respond(utils.NewConflictError("you have already reviewed this project"))
		return
	}

	review := &models.Review{
		ID:         uuid.New(),
		ProjectID:  project.ID,
		ReviewerID: msg.ReviewerID,
		RevieweeID: revieweeID,
		Rating:     msg.Rating,
		Comment:    msg.Comment,
		CreatedAt:  time.Now(),
	}
	if err := a.db.SaveReview(ctx, review); err != nil {
		respondError(context, err, "Failed to save review")
		return
	}

	a.metrics.AddOperationLatency("submit_review", time.Since(startTime))
	context.Respond(review)
}

func (a *ApplicationActor) handleGetUserReviews(context actor.Context, msg *GetUserReviewsMsg) {
	ctx := stdctx.Background()

	reviews, err := a.db.GetReviewsForUser(ctx, msg.UserID)
	if err != nil {
		respondError(context, err, "Failed to list reviews")
		return
	}

	summary := &ReviewSummary{
		Reviews: reviews,
		Count:   len(reviews),
	}
	if summary.Reviews == nil {
		summary.Reviews = []*models.Review{}
	}
	if len(reviews) > 0 {
		total := 0
		for _, review := range reviews {
			total += review.Rating
		}
		summary.AverageRating = float64(total) / float64(len(reviews))
	}
	context.Respond(summary)
}
