package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bittutor/bittutor-api/internal/models"
)

// CategoryRepository handles persistence of categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs the repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category row.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	const query = `INSERT INTO categories (name, description) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, category.Name, category.Description); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// FindByName returns a category by its name.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	const query = `SELECT name, description FROM categories WHERE name = $1`
	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, name); err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	const query = `SELECT name, description FROM categories ORDER BY name`
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Delete removes a category row.
func (r *CategoryRepository) Delete(ctx context.Context, name string) error {
	const query = `DELETE FROM categories WHERE name = $1`
	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
