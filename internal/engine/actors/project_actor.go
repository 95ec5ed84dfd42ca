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
	"github.com/lithammer/shortuuid/v4"
)

// GetCountsMsg asks an actor for the number of entities it has created in
// this process, surfaced on the health endpoint.
type GetCountsMsg struct{}

// Message types for Project operations
type (
	CreateProjectMsg struct {
		ClientID    uuid.UUID
		Title       string
		Description string
		Budget      float64
		Skills      []string
	}

	GetProjectMsg struct {
		ProjectID uuid.UUID
	}

	ListProjectsMsg struct {
		Skill string
		Limit int
	}

	CancelProjectMsg struct {
		ProjectID uuid.UUID
		ClientID  uuid.UUID
	}
)

// ProjectActor handles all project-related operations
type ProjectActor struct {
	db      database.Adapter
	metrics *utils.MetricsCollector
	created int
}

func NewProjectActor(db database.Adapter, metrics *utils.MetricsCollector) actor.Actor {
	return &ProjectActor{
		db:      db,
		metrics: metrics,
	}
}

func (a *ProjectActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *CreateProjectMsg:
		a.handleCreate(context, msg)
	case *GetProjectMsg:
		a.handleGet(context, msg)
	case *ListProjectsMsg:
		a.handleList(context, msg)
	case *CancelProjectMsg:
		a.handleCancel(context, msg)
	case *GetCountsMsg:
		context.Respond(a.created)
	}
}

func (a *ProjectActor) handleCreate(context actor.Context, msg *CreateProjectMsg) {
	startTime := time.Now()

	if strings.TrimSpace(msg.Title) == "" {
		context.Respond(utils.NewValidationError("title is required"))
		return
	}
	if strings.TrimSpace(msg.Description) == "" {
		context.Respond(utils.NewValidationError("description is required"))
		return
	}
	if msg.Budget <= 0 {
		context.Respond(utils.NewValidationError("budget must be positive"))
		return
	}

	ctx := stdctx.Background()
	client, err := a.db.GetUser(ctx, msg.ClientID)
	if err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.ClientID.String()))
		return
	}
	if client.Role != models.RoleClient {
		context.Respond(utils.NewForbiddenError("only clients can post projects"))
		return
	}

	now := time.Now()
	project := &models.Project{
		ID:          uuid.New(),
		Reference:   "PRJ-" + shortuuid.New(),
		ClientID:    msg.ClientID,
		Title:       msg.Title,
		Description: msg.Description,
		Budget:      msg.Budget,
		Skills:      msg.Skills,
		Status:      models.ProjectOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := a.db.SaveProject(ctx, project); err != nil {
		log.Printf("Failed to save project: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save project", err))
		return
	}

	a.created++
	a.metrics.AddOperationLatency("create_project", time.Since(startTime))
	context.Respond(project)
}

func (a *ProjectActor) handleGet(context actor.Context, msg *GetProjectMsg) {
	ctx := stdctx.Background()
	project, err := a.db.GetProject(ctx, msg.ProjectID)
	if err != nil {
		respondError(context, err, "Failed to fetch project")
		return
	}
	context.Respond(project)
}

func (a *ProjectActor) handleList(context actor.Context, msg *ListProjectsMsg) {
	ctx := stdctx.Background()
	projects, err := a.db.ListOpenProjects(ctx, msg.Skill, msg.Limit)
	if err != nil {
		respondError(context, err, "Failed to list projects")
		return
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	context.Respond(projects)
}

func (a *ProjectActor) handleCancel(context actor.Context, msg *CancelProjectMsg) {
	startTime := time.Now()

	ctx := stdctx.Background()
	project, err := a.db.GetProject(ctx, msg.ProjectID)
	if err != nil {
		respondError(context, err, "Failed to fetch project")
		return
	}
	if project.ClientID != msg.ClientID {
		context.Respond(utils.NewForbiddenError("only the project owner can cancel it"))
		return
	}
	if project.Status != models.ProjectOpen {
		context.Respond(utils.NewConflictError("only open projects can be cancelled"))
		return
	}

	if err := a.db.UpdateProjectStatus(ctx, project.ID, models.ProjectCancelled, nil); err != nil {
		respondError(context, err, "Failed to cancel project")
		return
	}

	a.metrics.AddOperationLatency("cancel_project", time.Since(startTime))
	context.Respond(true)
}

// respondError forwards AppErrors as-is and wraps anything else as a database
// failure.
func respondError(context actor.Context, err error, message string) {
	if appErr, ok := err.(*utils.AppError); ok {
		context.Respond(appErr)
		return
	}
	context.Respond(utils.NewAppError(utils.ErrDatabase, message, err))
}
