package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bittutor/bittutor-api/internal/models"
)

// MembershipRepository handles the user↔course relationship rows:
// subscriptions, wishlist entries, bans, completions and resource access logs.
type MembershipRepository struct {
	db *sqlx.DB
}

// NewMembershipRepository constructs the repository.
func NewMembershipRepository(db *sqlx.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Subscribe enrolls a user in a course.
func (r *MembershipRepository) Subscribe(ctx context.Context, userID, courseID int) error {
	const query = `INSERT INTO subscriptions (user_id, course_id) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// Unsubscribe removes an enrollment row.
func (r *MembershipRepository) Unsubscribe(ctx context.Context, userID, courseID int) error {
	const query = `DELETE FROM subscriptions WHERE user_id = $1 AND course_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

// Subscribers returns mail and name for every user enrolled in a course.
func (r *MembershipRepository) Subscribers(ctx context.Context, courseID int) ([]models.Subscriber, error) {
	const query = `SELECT u.id, u.mail, u.name FROM users u
        JOIN subscriptions s ON s.user_id = u.id WHERE s.course_id = $1 ORDER BY u.id`
	var subscribers []models.Subscriber
	if err := r.db.SelectContext(ctx, &subscribers, query, courseID); err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subscribers, nil
}

// AddWish saves a course to a user's wishlist.
func (r *MembershipRepository) AddWish(ctx context.Context, userID, courseID int) error {
	const query = `INSERT INTO wishes (user_id, course_id) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID); err != nil {
		return fmt.Errorf("add wish: %w", err)
	}
	return nil
}

// RemoveWish drops a course from a user's wishlist.
func (r *MembershipRepository) RemoveWish(ctx context.Context, userID, courseID int) error {
	const query = `DELETE FROM wishes WHERE user_id = $1 AND course_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID); err != nil {
		return fmt.Errorf("remove wish: %w", err)
	}
	return nil
}

// Ban excludes a user from a course.
func (r *MembershipRepository) Ban(ctx context.Context, userID, courseID int) error {
	const query = `INSERT INTO bans (user_id, course_id) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID); err != nil {
		return fmt.Errorf("ban user: %w", err)
	}
	return nil
}

// Unban lifts a course exclusion.
func (r *MembershipRepository) Unban(ctx context.Context, userID, courseID int) error {
	const query = `DELETE FROM bans WHERE user_id = $1 AND course_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID); err != nil {
		return fmt.Errorf("unban user: %w", err)
	}
	return nil
}

// Complete records that a user finished a course.
func (r *MembershipRepository) Complete(ctx context.Context, userID, courseID int, date time.Time) error {
	const query = `INSERT INTO completions (user_id, course_id, date) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID, date); err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

// FindCompletion returns the completion row for (user, course), if any.
func (r *MembershipRepository) FindCompletion(ctx context.Context, userID, courseID int) (*models.Completion, error) {
	const query = `SELECT user_id, course_id, date FROM completions WHERE user_id = $1 AND course_id = $2`
	var completion models.Completion
	if err := r.db.GetContext(ctx, &completion, query, userID, courseID); err != nil {
		return nil, err
	}
	return &completion, nil
}

// IsSubscribed checks whether an enrollment row exists.
func (r *MembershipRepository) IsSubscribed(ctx context.Context, userID, courseID int) (bool, error) {
	const query = `SELECT 1 FROM subscriptions WHERE user_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, userID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return true, nil
}

// LogResourceAccess records a user fetching a course resource.
func (r *MembershipRepository) LogResourceAccess(ctx context.Context, access models.ResourceAccess) error {
	const query = `INSERT INTO resource_access (resource_name, course_id, user_id) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, access.ResourceName, access.CourseID, access.UserID); err != nil {
		return fmt.Errorf("log resource access: %w", err)
	}
	return nil
}
