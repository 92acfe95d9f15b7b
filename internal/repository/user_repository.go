package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bittutor/bittutor-api/internal/models"
)

// UserRepository handles persistence of users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create allocates the next user id and inserts the row. Allocation and
// insert share one transaction so concurrent creators cannot interleave.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id, err := nextID(ctx, tx, "users")
	if err != nil {
		return err
	}
	user.ID = id

	const query = `INSERT INTO users (id, mail, name, password, age, study_level, description)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, query, user.ID, user.Mail, user.Name, user.Password, user.Age, user.StudyLevel, user.Description); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

// FindByID returns a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	const query = `SELECT id, mail, name, password, age, study_level, description FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByMail returns a user by mail address.
func (r *UserRepository) FindByMail(ctx context.Context, mail string) (*models.User, error) {
	const query = `SELECT id, mail, name, password, age, study_level, description FROM users WHERE mail = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, mail); err != nil {
		return nil, err
	}
	return &user, nil
}

// FullName returns just the display name of a user.
func (r *UserRepository) FullName(ctx context.Context, id int) (string, error) {
	const query = `SELECT name FROM users WHERE id = $1`
	var name string
	if err := r.db.GetContext(ctx, &name, query, id); err != nil {
		return "", err
	}
	return name, nil
}

// Update persists mutable profile fields.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	const query = `UPDATE users SET name = $2, age = $3, study_level = $4, description = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Age, user.StudyLevel, user.Description); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	const query = `UPDATE users SET password = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return nil
}

// Delete removes the user row. Courses taught by the user, and every record
// hanging off them, are removed by schema-level ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM users WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
