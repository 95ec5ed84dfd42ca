// internal/database/memory.go
package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"campus-gigs/internal/models"
	"campus-gigs/internal/utils"

	"github.com/google/uuid"
)

// MemoryAdapter is an in-memory Adapter used by tests and the simulator's
// dry-run mode. It mirrors the MongoDB adapter's semantics, including the
// conversation key uniqueness guarantee.
type MemoryAdapter struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*models.User
	usersByEmail  map[string]uuid.UUID
	projects      map[uuid.UUID]*models.Project
	applications  map[uuid.UUID]*models.Application
	submissions   map[uuid.UUID]*models.Submission
	reviews       map[uuid.UUID]*models.Review
	conversations map[uuid.UUID]*models.Conversation
	convByKey     map[string]uuid.UUID
	messages      map[uuid.UUID][]*models.Message // conversationID -> ordered log
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		users:         make(map[uuid.UUID]*models.User),
		usersByEmail:  make(map[string]uuid.UUID),
		projects:      make(map[uuid.UUID]*models.Project),
		applications:  make(map[uuid.UUID]*models.Application),
		submissions:   make(map[uuid.UUID]*models.Submission),
		reviews:       make(map[uuid.UUID]*models.Review),
		conversations: make(map[uuid.UUID]*models.Conversation),
		convByKey:     make(map[string]uuid.UUID),
		messages:      make(map[uuid.UUID][]*models.Message),
	}
}

var _ Adapter = (*MemoryAdapter)(nil)

func (m *MemoryAdapter) Close(ctx context.Context) error { return nil }

// User methods

func (m *MemoryAdapter) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.usersByEmail[user.Email]; ok && existing != user.ID {
		return utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil)
	}

	copied := *user
	m.users[user.ID] = &copied
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *MemoryAdapter) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	copied := *user
	return &copied, nil
}

func (m *MemoryAdapter) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usersByEmail[email]
	if !ok {
		return nil, utils.NewUserNotFoundError(email)
	}
	copied := *m.users[id]
	return &copied, nil
}

func (m *MemoryAdapter) UpdateUserProfile(ctx context.Context, id uuid.UUID, bio string, skills []string, hourlyRate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return utils.NewUserNotFoundError(id.String())
	}
	user.Bio = bio
	user.Skills = skills
	user.HourlyRate = hourlyRate
	return nil
}

func (m *MemoryAdapter) UpdateUserActivity(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return utils.NewUserNotFoundError(id.String())
	}
	user.LastActive = time.Now()
	return nil
}

// Project methods

func (m *MemoryAdapter) SaveProject(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *project
	m.projects[project.ID] = &copied
	return nil
}

func (m *MemoryAdapter) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	project, ok := m.projects[id]
	if !ok {
		return nil, utils.NewNotFoundError("project not found")
	}
	copied := *project
	return &copied, nil
}

func (m *MemoryAdapter) ListOpenProjects(ctx context.Context, skill string, limit int) ([]*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var projects []*models.Project
	for _, project := range m.projects {
		if project.Status != models.ProjectOpen {
			continue
		}
		if skill != "" && !containsString(project.Skills, skill) {
			continue
		}
		copied := *project
		projects = append(projects, &copied)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	if limit > 0 && len(projects) > limit {
		projects = projects[:limit]
	}
	return projects, nil
}

func (m *MemoryAdapter) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus, assignedTo *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	project, ok := m.projects[id]
	if !ok {
		return utils.NewNotFoundError("project not found")
	}
	project.Status = status
	project.UpdatedAt = time.Now()
	if assignedTo != nil {
		copied := *assignedTo
		project.AssignedTo = &copied
	}
	return nil
}

// Application methods

func (m *MemoryAdapter) SaveApplication(ctx context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *app
	m.applications[app.ID] = &copied
	return nil
}

func (m *MemoryAdapter) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.applications[id]
	if !ok {
		return nil, utils.NewNotFoundError("application not found")
	}
	copied := *app
	return &copied, nil
}

func (m *MemoryAdapter) GetProjectApplications(ctx context.Context, projectID uuid.UUID) ([]*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var apps []*models.Application
	for _, app := range m.applications {
		if app.ProjectID == projectID {
			copied := *app
			apps = append(apps, &copied)
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

func (m *MemoryAdapter) GetApplicationByProjectAndStudent(ctx context.Context, projectID, studentID uuid.UUID) (*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, app := range m.applications {
		if app.ProjectID == projectID && app.StudentID == studentID {
			copied := *app
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("application not found")
}

func (m *MemoryAdapter) HasActiveApplication(ctx context.Context, projectID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, app := range m.applications {
		if app.ProjectID == projectID && app.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryAdapter) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, from, to models.ApplicationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.applications[id]
	if !ok || app.Status != from {
		return utils.NewConflictError(
			fmt.Sprintf("application is no longer %s", from))
	}
	app.Status = to
	app.UpdatedAt = time.Now()
	return nil
}

// Submission methods

func (m *MemoryAdapter) SaveSubmission(ctx context.Context, sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *sub
	m.submissions[sub.ID] = &copied
	return nil
}

func (m *MemoryAdapter) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.submissions[id]
	if !ok {
		return nil, utils.NewNotFoundError("submission not found")
	}
	copied := *sub
	return &copied, nil
}

func (m *MemoryAdapter) GetApplicationSubmissions(ctx context.Context, applicationID uuid.UUID) ([]*models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var subs []*models.Submission
	for _, sub := range m.submissions {
		if sub.ApplicationID == applicationID {
			copied := *sub
			subs = append(subs, &copied)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return subs, nil
}

func (m *MemoryAdapter) UpdateSubmissionReview(ctx context.Context, id uuid.UUID, status models.SubmissionStatus, comment, requestedChanges string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.submissions[id]
	if !ok || sub.Status != models.SubmissionUnderReview {
		return utils.NewConflictError("submission is no longer under review")
	}
	now := time.Now()
	sub.Status = status
	sub.ReviewComment = comment
	sub.RequestedChanges = requestedChanges
	sub.ReviewedAt = &now
	return nil
}

// Review methods

func (m *MemoryAdapter) SaveReview(ctx context.Context, review *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reviews {
		if existing.ProjectID == review.ProjectID && existing.ReviewerID == review.ReviewerID {
			return utils.NewConflictError("review already submitted for this project")
		}
	}
	copied := *review
	m.reviews[review.ID] = &copied
	return nil
}

func (m *MemoryAdapter) GetReviewByProjectAndReviewer(ctx context.Context, projectID, reviewerID uuid.UUID) (*models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, review := range m.reviews {
		if review.ProjectID == projectID && review.ReviewerID == reviewerID {
			copied := *review
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("review not found")
}

func (m *MemoryAdapter) GetReviewsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var reviews []*models.Review
	for _, review := range m.reviews {
		if review.RevieweeID == userID {
			copied := *review
			reviews = append(reviews, &copied)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

// Conversation methods

func (m *MemoryAdapter) GetOrCreateConversation(ctx context.Context, userA, userB uuid.UUID) (*models.Conversation, error) {
	key := models.ConversationKey(userA, userB)

	m.mu.Lock()
	defer m.mu.Unlock()

	// convByKey plays the role of the unique index: the check and insert
	// happen under one lock, so concurrent first contacts converge.
	if id, ok := m.convByKey[key]; ok {
		copied := *m.conversations[id]
		return &copied, nil
	}

	now := time.Now()
	conv := &models.Conversation{
		ID:           uuid.New(),
		Participants: [2]uuid.UUID{userA, userB},
		Key:          key,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.conversations[conv.ID] = conv
	m.convByKey[key] = conv.ID

	copied := *conv
	return &copied, nil
}

func (m *MemoryAdapter) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conv, ok := m.conversations[id]
	if !ok {
		return nil, utils.NewNotFoundError("conversation not found")
	}
	copied := *conv
	return &copied, nil
}

func (m *MemoryAdapter) ListConversationsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var conversations []*models.Conversation
	for _, conv := range m.conversations {
		if conv.HasParticipant(userID) {
			copied := *conv
			conversations = append(conversations, &copied)
		}
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

func (m *MemoryAdapter) SetConversationLastMessage(ctx context.Context, id uuid.UUID, preview *models.MessagePreview) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[id]
	if !ok {
		return utils.NewNotFoundError("conversation not found")
	}
	copied := *preview
	conv.LastMessage = &copied
	conv.UpdatedAt = preview.CreatedAt
	return nil
}

// Message methods

func (m *MemoryAdapter) SaveChatMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *msg
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], &copied)
	return nil
}

func (m *MemoryAdapter) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log := m.messages[conversationID]
	messages := make([]*models.Message, 0, len(log))
	for _, msg := range log {
		copied := *msg
		messages = append(messages, &copied)
	}
	return messages, nil
}

func (m *MemoryAdapter) MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var updated int64
	for _, msg := range m.messages[conversationID] {
		if msg.RecipientID == userID && !msg.Read {
			msg.Read = true
			updated++
		}
	}
	return updated, nil
}

func (m *MemoryAdapter) CountUnreadMessages(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, msg := range m.messages[conversationID] {
		if msg.RecipientID == userID && !msg.Read {
			count++
		}
	}
	return count, nil
}

func containsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}
