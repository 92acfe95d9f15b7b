package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bittutor/bittutor-api/internal/models"
)

// ResourceRepository handles persistence of course material records.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository constructs the repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts a resource row.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	const query = `INSERT INTO resources (name, course_id, title, format, in_page_location, description)
        VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, resource.Name, resource.CourseID, resource.Title,
		resource.Format, resource.InPageLocation, resource.Description); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// FindByKey returns a resource by its composite (name, course) key.
func (r *ResourceRepository) FindByKey(ctx context.Context, name string, courseID int) (*models.Resource, error) {
	const query = `SELECT name, course_id, title, format, in_page_location, description
        FROM resources WHERE name = $1 AND course_id = $2`
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, name, courseID); err != nil {
		return nil, err
	}
	return &resource, nil
}

// ListByCourse returns a course's resources ordered by their page position.
func (r *ResourceRepository) ListByCourse(ctx context.Context, courseID int) ([]models.Resource, error) {
	const query = `SELECT name, course_id, title, format, in_page_location, description
        FROM resources WHERE course_id = $1 ORDER BY in_page_location, name`
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, courseID); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// Delete removes a resource row.
func (r *ResourceRepository) Delete(ctx context.Context, name string, courseID int) error {
	const query = `DELETE FROM resources WHERE name = $1 AND course_id = $2`
	if _, err := r.db.ExecContext(ctx, query, name, courseID); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}
