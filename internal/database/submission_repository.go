// internal/database/submission_repository.go
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

// SubmissionDocument represents the MongoDB schema for a submission
type SubmissionDocument struct {
	ID               string     `bson:"_id"`
	ApplicationID    string     `bson:"applicationId"`
	ProjectID        string     `bson:"projectId"`
	StudentID        string     `bson:"studentId"`
	Note             string     `bson:"note,omitempty"`
	FileURL          string     `bson:"fileUrl,omitempty"`
	Status           string     `bson:"status"`
	ReviewComment    string     `bson:"reviewComment,omitempty"`
	RequestedChanges string     `bson:"requestedChanges,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt"`
	ReviewedAt       *time.Time `bson:"reviewedAt,omitempty"`
}

func documentToSubmission(doc SubmissionDocument) (*models.Submission, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid submission ID in database: %v", err)
	}
	applicationID, err := uuid.Parse(doc.ApplicationID)
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

	return &models.Submission{
		ID:               id,
		ApplicationID:    applicationID,
		ProjectID:        projectID,
		StudentID:        studentID,
		Note:             doc.Note,
		FileURL:          doc.FileURL,
		Status:           models.SubmissionStatus(doc.Status),
		ReviewComment:    doc.ReviewComment,
		RequestedChanges: doc.RequestedChanges,
		CreatedAt:        doc.CreatedAt,
		ReviewedAt:       doc.ReviewedAt,
	}, nil
}

// SaveSubmission inserts a new submission
func (m *MongoDB) SaveSubmission(ctx context.Context, sub *models.Submission) error {
	doc := SubmissionDocument{
		ID:            sub.ID.String(),
		ApplicationID: sub.ApplicationID.String(),
		ProjectID:     sub.ProjectID.String(),
		StudentID:     sub.StudentID.String(),
		Note:          sub.Note,
		FileURL:       sub.FileURL,
		Status:        string(sub.Status),
		CreatedAt:     sub.CreatedAt,
	}

	_, err := m.Submissions.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to save submission: %v", err)
	}
	return nil
}

// GetSubmission retrieves a submission by ID
func (m *MongoDB) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var doc SubmissionDocument

	err := m.Submissions.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("submission not found")
	}
	if err != nil {
		return nil, err
	}

	return documentToSubmission(doc)
}

// GetApplicationSubmissions returns an application's submissions, newest first
func (m *MongoDB) GetApplicationSubmissions(ctx context.Context, applicationID uuid.UUID) ([]*models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.Submissions.Find(ctx, bson.M{"applicationId": applicationID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %v", err)
	}
	defer cursor.Close(ctx)

	var subs []*models.Submission
	for cursor.Next(ctx) {
		var doc SubmissionDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode submission: %v", err)
		}
		sub, err := documentToSubmission(doc)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, nil
}

// UpdateSubmissionReview records the client's verdict on a submission still
// under review.
func (m *MongoDB) UpdateSubmissionReview(ctx context.Context, id uuid.UUID, status models.SubmissionStatus, comment, requestedChanges string) error {
	filter := bson.M{
		"_id":    id.String(),
		"status": string(models.SubmissionUnderReview),
	}
	update := bson.M{"$set": bson.M{
		"status":           string(status),
		"reviewComment":    comment,
		"requestedChanges": requestedChanges,
		"reviewedAt":       time.Now(),
	}}

	result, err := m.Submissions.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewConflictError("submission is no longer under review")
	}
	return nil
}
