// internal/database/project_repository.go
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

// ProjectDocument represents the MongoDB schema for a project
type ProjectDocument struct {
	ID          string    `bson:"_id"`
	Reference   string    `bson:"reference"`
	ClientID    string    `bson:"clientId"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Budget      float64   `bson:"budget"`
	Skills      []string  `bson:"skills,omitempty"`
	Status      string    `bson:"status"`
	AssignedTo  *string   `bson:"assignedTo,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func documentToProject(doc ProjectDocument) (*models.Project, error) {
	projectID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid project ID in database: %v", err)
	}
	clientID, err := uuid.Parse(doc.ClientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client ID in database: %v", err)
	}

	project := &models.Project{
		ID:          projectID,
		Reference:   doc.Reference,
		ClientID:    clientID,
		Title:       doc.Title,
		Description: doc.Description,
		Budget:      doc.Budget,
		Skills:      doc.Skills,
		Status:      models.ProjectStatus(doc.Status),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}

	if doc.AssignedTo != nil {
		assignedTo, err := uuid.Parse(*doc.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee ID in database: %v", err)
		}
		project.AssignedTo = &assignedTo
	}

	return project, nil
}

// SaveProject creates or updates a project in MongoDB
func (m *MongoDB) SaveProject(ctx context.Context, project *models.Project) error {
	doc := ProjectDocument{
		ID:          project.ID.String(),
		Reference:   project.Reference,
		ClientID:    project.ClientID.String(),
		Title:       project.Title,
		Description: project.Description,
		Budget:      project.Budget,
		Skills:      project.Skills,
		Status:      string(project.Status),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
	if project.AssignedTo != nil {
		assignedTo := project.AssignedTo.String()
		doc.AssignedTo = &assignedTo
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": project.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Projects.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save project: %v", err)
	}
	return nil
}

// GetProject retrieves a project by its ID
func (m *MongoDB) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var doc ProjectDocument

	err := m.Projects.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("project not found")
	}
	if err != nil {
		return nil, err
	}

	return documentToProject(doc)
}

// ListOpenProjects returns open projects, newest first, optionally filtered
// by a required skill.
func (m *MongoDB) ListOpenProjects(ctx context.Context, skill string, limit int) ([]*models.Project, error) {
	filter := bson.M{"status": string(models.ProjectOpen)}
	if skill != "" {
		filter["skills"] = skill
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.Projects.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %v", err)
	}
	defer cursor.Close(ctx)

	var projects []*models.Project
	for cursor.Next(ctx) {
		var doc ProjectDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode project: %v", err)
		}
		project, err := documentToProject(doc)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// UpdateProjectStatus sets the project status and, when provided, the
// assigned student.
func (m *MongoDB) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus, assignedTo *uuid.UUID) error {
	set := bson.M{
		"status":    string(status),
		"updatedAt": time.Now(),
	}
	if assignedTo != nil {
		set["assignedTo"] = assignedTo.String()
	}

	result, err := m.Projects.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("project not found")
	}
	return nil
}
