package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bittutor/bittutor-api/internal/models"
)

// CatalogRepository computes the course offer and wishlist views: which
// courses a user may be shown, ranked by average review score.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const offerColumns = `c.id, c.name, c.duration, c.language, c.low_age_range, c.up_age_range, c.category, c.reports, c.description,
        AVG(r.stars) AS avg_score, u.id AS teacher_id, u.name AS teacher_name`

// OfferForUser returns the courses in a category the user is eligible for:
// not banned, not the teacher, not subscribed, not completed, and with the
// user's age inside the course's inclusive age range. Results are ordered by
// descending average rating; unreviewed courses sort last, ties break on id.
func (r *CatalogRepository) OfferForUser(ctx context.Context, category string, userID, age int) ([]models.CourseOffer, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM courses c
        JOIN teaches t ON t.course_id = c.id
        JOIN users u ON u.id = t.user_id
        LEFT JOIN reviews r ON r.course_id = c.id
        WHERE c.category = $1
          AND $3 BETWEEN c.low_age_range AND c.up_age_range
          AND NOT EXISTS (SELECT 1 FROM teaches tx WHERE tx.course_id = c.id AND tx.user_id = $2)
          AND NOT EXISTS (SELECT 1 FROM bans b WHERE b.course_id = c.id AND b.user_id = $2)
          AND NOT EXISTS (SELECT 1 FROM subscriptions s WHERE s.course_id = c.id AND s.user_id = $2)
          AND NOT EXISTS (SELECT 1 FROM completions f WHERE f.course_id = c.id AND f.user_id = $2)
        GROUP BY c.id, u.id
        ORDER BY avg_score DESC NULLS LAST, c.id`, offerColumns)

	var offers []models.CourseOffer
	if err := r.db.SelectContext(ctx, &offers, query, category, userID, age); err != nil {
		return nil, fmt.Errorf("offer courses: %w", err)
	}
	return offers, nil
}

// WishListForUser returns the user's wishlist with the same ranking as the
// offer view but no eligibility filtering beyond wishlist membership.
func (r *CatalogRepository) WishListForUser(ctx context.Context, userID int) ([]models.CourseOffer, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM courses c
        JOIN wishes w ON w.course_id = c.id AND w.user_id = $1
        JOIN teaches t ON t.course_id = c.id
        JOIN users u ON u.id = t.user_id
        LEFT JOIN reviews r ON r.course_id = c.id
        GROUP BY c.id, u.id
        ORDER BY avg_score DESC NULLS LAST, c.id`, offerColumns)

	var offers []models.CourseOffer
	if err := r.db.SelectContext(ctx, &offers, query, userID); err != nil {
		return nil, fmt.Errorf("wishlist courses: %w", err)
	}
	return offers, nil
}
