// internal/database/database.go
package database

import (
	"context"
	"fmt"
	"time"

	"campus-gigs/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Adapter defines the storage operations the engine depends on. MongoDB is
// the production backend; MemoryAdapter backs tests and the simulator.
type Adapter interface {
	// Connection
	Close(ctx context.Context) error

	// User methods
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id uuid.UUID, bio string, skills []string, hourlyRate float64) error
	UpdateUserActivity(ctx context.Context, id uuid.UUID) error

	// Project methods
	SaveProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListOpenProjects(ctx context.Context, skill string, limit int) ([]*models.Project, error)
	UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus, assignedTo *uuid.UUID) error

	// Application methods
	SaveApplication(ctx context.Context, app *models.Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetProjectApplications(ctx context.Context, projectID uuid.UUID) ([]*models.Application, error)
	GetApplicationByProjectAndStudent(ctx context.Context, projectID, studentID uuid.UUID) (*models.Application, error)
	HasActiveApplication(ctx context.Context, projectID uuid.UUID) (bool, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, from, to models.ApplicationStatus) error

	// Submission methods
	SaveSubmission(ctx context.Context, sub *models.Submission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	GetApplicationSubmissions(ctx context.Context, applicationID uuid.UUID) ([]*models.Submission, error)
	UpdateSubmissionReview(ctx context.Context, id uuid.UUID, status models.SubmissionStatus, comment, requestedChanges string) error

	// Review methods
	SaveReview(ctx context.Context, review *models.Review) error
	GetReviewByProjectAndReviewer(ctx context.Context, projectID, reviewerID uuid.UUID) (*models.Review, error)
	GetReviewsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Review, error)

	// Conversation methods
	GetOrCreateConversation(ctx context.Context, userA, userB uuid.UUID) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error)
	SetConversationLastMessage(ctx context.Context, id uuid.UUID, preview *models.MessagePreview) error

	// Message methods
	SaveChatMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error)
	MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) (int64, error)
	CountUnreadMessages(ctx context.Context, conversationID, userID uuid.UUID) (int64, error)
}

type MongoDB struct {
	Client        *mongo.Client
	Users         *mongo.Collection
	Projects      *mongo.Collection
	Applications  *mongo.Collection
	Submissions   *mongo.Collection
	Reviews       *mongo.Collection
	Conversations *mongo.Collection
	Messages      *mongo.Collection
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(connectCtx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	db := client.Database(dbName)
	m := &MongoDB{
		Client:        client,
		Users:         db.Collection("users"),
		Projects:      db.Collection("projects"),
		Applications:  db.Collection("applications"),
		Submissions:   db.Collection("submissions"),
		Reviews:       db.Collection("reviews"),
		Conversations: db.Collection("conversations"),
		Messages:      db.Collection("messages"),
	}

	if err := m.ensureIndexes(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return m, nil
}

// ensureIndexes creates the indexes the adapter relies on. The unique index
// on conversations.key is what makes get-or-create race-safe: concurrent
// first-contact inserts collide here and the loser re-fetches.
func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := m.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = m.Conversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.Messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = m.Applications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "projectId", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = m.Reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "projectId", Value: 1}, {Key: "reviewerId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
