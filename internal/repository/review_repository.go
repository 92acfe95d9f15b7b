package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bittutor/bittutor-api/internal/models"
)

// ReviewRepository handles persistence of course reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs the repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review row.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	const query = `INSERT INTO reviews (author, course_id, stars, comments) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, review.Author, review.CourseID, review.Stars, review.Comments); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ListByCourse returns all reviews for a course.
func (r *ReviewRepository) ListByCourse(ctx context.Context, courseID int) ([]models.Review, error) {
	const query = `SELECT author, course_id, stars, comments FROM reviews WHERE course_id = $1 ORDER BY author`
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, courseID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
