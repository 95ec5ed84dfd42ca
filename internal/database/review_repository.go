// internal/database/review_repository.go
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

// ReviewDocument represents the MongoDB schema for a review
type ReviewDocument struct {
	ID         string    `bson:"_id"`
	ProjectID  string    `bson:"projectId"`
	ReviewerID string    `bson:"reviewerId"`
	RevieweeID string    `bson:"revieweeId"`
	Rating     int       `bson:"rating"`
	Comment    string    `bson:"comment,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func documentToReview(doc ReviewDocument) (*models.Review, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid review ID in database: %v", err)
	}
	projectID, err := uuid.Parse(doc.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project ID in database: %v", err)
	}
	reviewerID, err := uuid.Parse(doc.ReviewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid reviewer ID in database: %v", err)
	}
	revieweeID, err := uuid.Parse(doc.RevieweeID)
	if err != nil {
		return nil, fmt.Errorf("invalid reviewee ID in database: %v", err)
	}

	return &models.Review{
		ID:         id,
		ProjectID:  projectID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     doc.Rating,
		Comment:    doc.Comment,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

// SaveReview inserts a review. The unique (projectId, reviewerId) index keeps
// it to one review per reviewer per project.
func (m *MongoDB) SaveReview(ctx context.Context, review *models.Review) error {
	doc := ReviewDocument{
		ID:         review.ID.String(),
		ProjectID:  review.ProjectID.String(),
		ReviewerID: review.ReviewerID.String(),
		RevieweeID: review.RevieweeID.String(),
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	}

	_, err := m.Reviews.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewConflictError("review already submitted for this project")
	}
	if err != nil {
		return fmt.Errorf("failed to save review: %v", err)
	}
	return nil
}

// GetReviewByProjectAndReviewer finds a reviewer's review of a project
func (m *MongoDB) GetReviewByProjectAndReviewer(ctx context.Context, projectID, reviewerID uuid.UUID) (*models.Review, error) {
	var doc ReviewDocument

	filter := bson.M{
		"projectId":  projectID.String(),
		"reviewerId": reviewerID.String(),
	}
	err := m.Reviews.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("review not found")
	}
	if err != nil {
		return nil, err
	}

	return documentToReview(doc)
}

// GetReviewsForUser returns reviews about the given user, newest first
func (m *MongoDB) GetReviewsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.Reviews.Find(ctx, bson.M{"revieweeId": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %v", err)
	}
	defer cursor.Close(ctx)

	var reviews []*models.Review
	for cursor.Next(ctx) {
		var doc ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode review: %v", err)
		}
		review, err := documentToReview(doc)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	return reviews, nil
}
