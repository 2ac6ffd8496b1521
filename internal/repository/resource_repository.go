package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

const resourceColumns = "id, lesson_id, title, url, file_path, resource_type, description, created_at, updated_at"

// ResourceRepository persists lesson resources.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository constructs the repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// ListByLesson returns a lesson's resources in insertion order.
func (r *ResourceRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.Resource, error) {
	query := fmt.Sprintf("SELECT %s FROM resources WHERE lesson_id = $1 ORDER BY created_at ASC, id ASC", resourceColumns)
	resources := []models.Resource{}
	if err := r.db.SelectContext(ctx, &resources, query, lessonID); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// FindByID returns a resource belonging to lessonID.
func (r *ResourceRepository) FindByID(ctx context.Context, lessonID, id string) (*models.Resource, error) {
	query := fmt.Sprintf("SELECT %s FROM resources WHERE id = $1 AND lesson_id = $2", resourceColumns)
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id, lessonID); err != nil {
		return nil, err
	}
	return &resource, nil
}

// Create persists a new resource.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now
	const query = `INSERT INTO resources (id, lesson_id, title, url, file_path, resource_type, description, created_at, updated_at)
VALUES (:id, :lesson_id, :title, :url, :file_path, :resource_type, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// Update modifies a resource.
func (r *ResourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	resource.UpdatedAt = time.Now().UTC()
	const query = `UPDATE resources SET title = :title, url = :url, file_path = :file_path, resource_type = :resource_type,
description = :description, updated_at = :updated_at WHERE id = :id AND lesson_id = :lesson_id`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	return nil
}

// Delete removes a resource. It returns sql.ErrNoRows when nothing matched.
func (r *ResourceRepository) Delete(ctx context.Context, lessonID, id string) error {
	return deleteAttachment(ctx, r.db, "resources", lessonID, id)
}
