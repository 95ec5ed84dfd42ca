// internal/database/application_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"campus-gigs/internal/models"
	"campus-gigs/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ApplicationDocument represents the MongoDB schema for an application
type ApplicationDocument struct {
	ID          string    `bson:"_id"`
	ProjectID   string    `bson:"projectId"`
	StudentID   string    `bson:"studentId"`
	CoverLetter string    `bson:"coverLetter,omitempty"`
	BidAmount   float64   `bson:"bidAmount,omitempty"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func documentToApplication(doc ApplicationDocument) (*models.Application, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid application ID in database: %v", err)
	}
	projectID, err := uuid.Parse(doc.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project ID in database: %v", err)
	}
	studentID, err := uuid.Parse(doc.StudentID)
	if err != nil {
		return nil, fmt.Errorf("invalid student ID in database: %v", err)
	}

	return &models.Application{
		ID:          id,
		ProjectID:   projectID,
		StudentID:   studentID,
		CoverLetter: doc.CoverLetter,
		BidAmount:   doc.BidAmount,
		Status:      models.ApplicationStatus(doc.Status),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// SaveApplication creates or updates an application
func (m *MongoDB) SaveApplication(ctx context.Context, app *models.Application) error {
	doc := ApplicationDocument{
		ID:          app.ID.String(),
		ProjectID:   app.ProjectID.String(),
		StudentID:   app.StudentID.String(),
		CoverLetter: app.CoverLetter,
		BidAmount:   app.BidAmount,
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}

	opts := options.Update().SetUpsert(true)
	_, err := m.Applications.UpdateOne(ctx,
		bson.M{"_id": app.ID.String()},
		bson.M{"$set": doc},
		opts,
	)
	if err != nil {
		return fmt.Errorf("failed to save application: %v", err)
	}
	return nil
}

// GetApplication retrieves an application by ID
func (m *MongoDB) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var doc ApplicationDocument

	err := m.Applications.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("application not found")
	}
	if err != nil {
		return nil, err
	}

	return documentToApplication(doc)
}

// GetProjectApplications returns all applications for a project, newest first
func (m *MongoDB) GetProjectApplications(ctx context.Context, projectID uuid.UUID) ([]*models.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.Applications.Find(ctx, bson.M{"projectId": projectID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications: %v", err)
	}
	defer cursor.Close(ctx)

	var apps []*models.Application
	for cursor.Next(ctx) {
		var doc ApplicationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode application: %v", err)
		}
		app, err := documentToApplication(doc)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	return apps, nil
}

// GetApplicationByProjectAndStudent finds a student's application to a project
func (m *MongoDB) GetApplicationByProjectAndStudent(ctx context.Context, projectID, studentID uuid.UUID) (*models.Application, error) {
	var doc ApplicationDocument

	filter := bson.M{
		"projectId": projectID.String(),
		"studentId": studentID.String(),
	}
	err := m.Applications.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("application not found")
	}
	if err != nil {
		return nil, err
	}

	return documentToApplication(doc)
}

// activeStatuses are the statuses occupying a project's single hire slot.
var activeStatuses = []string{
	string(models.ApplicationAccepted),
	string(models.ApplicationInProgress),
	string(models.ApplicationUnderReview),
	string(models.ApplicationCompleted),
}

// HasActiveApplication reports whether the project already has a hire.
func (m *MongoDB) HasActiveApplication(ctx context.Context, projectID uuid.UUID) (bool, error) {
	filter := bson.M{
		"projectId": projectID.String(),
		"status":    bson.M{"$in": activeStatuses},
	}
	count, err := m.Applications.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateApplicationStatus moves an application from one status to another.
// The filter includes the expected current status, so a stale caller loses
// the race and gets a conflict instead of clobbering a decided application.
func (m *MongoDB) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, from, to models.ApplicationStatus) error {
	filter := bson.M{
		"_id":    id.String(),
		"status": string(from),
	}
	update := bson.M{"$set": bson.M{
		"status":    string(to),
		"updatedAt": time.Now(),
	}}

	result, err := m.Applications.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewConflictError(
			fmt.Sprintf("application is no longer %s", from))
	}
	return nil
}
