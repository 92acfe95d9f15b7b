package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bittutor/bittutor-api/internal/models"
)

// CourseRepository handles persistence of courses and their teacher link.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create allocates the next course id and inserts the course row together
// with its Teaches row. Both rows commit or roll back as one unit.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course, teacherID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create course: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id, err := nextID(ctx, tx, "courses")
	if err != nil {
		return err
	}
	course.ID = id

	const insertCourse = `INSERT INTO courses (id, name, duration, language, low_age_range, up_age_range, category, reports, description)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)`
	if _, err := tx.ExecContext(ctx, insertCourse, course.ID, course.Name, course.Duration, course.Language,
		course.LowAgeRange, course.UpAgeRange, course.Category, course.Description); err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	const insertTeaches = `INSERT INTO teaches (user_id, course_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, insertTeaches, teacherID, course.ID); err != nil {
		return fmt.Errorf("link teacher: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create course: %w", err)
	}
	course.Reports = 0
	return nil
}

// FindByID returns a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id int) (*models.Course, error) {
	const query = `SELECT id, name, duration, language, low_age_range, up_age_range, category, reports, description
        FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Title returns just the course name.
func (r *CourseRepository) Title(ctx context.Context, id int) (string, error) {
	const query = `SELECT name FROM courses WHERE id = $1`
	var title string
	if err := r.db.GetContext(ctx, &title, query, id); err != nil {
		return "", err
	}
	return title, nil
}

// Teacher returns the user teaching the course.
func (r *CourseRepository) Teacher(ctx context.Context, courseID int) (*models.User, error) {
	const query = `SELECT u.id, u.mail, u.name, u.password, u.age, u.study_level, u.description
        FROM users u JOIN teaches t ON t.user_id = u.id WHERE t.course_id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, courseID); err != nil {
		return nil, err
	}
	return &user, nil
}

// IDsTaughtBy returns the ids of every course taught by a user.
func (r *CourseRepository) IDsTaughtBy(ctx context.Context, userID int) ([]int, error) {
	const query = `SELECT course_id FROM teaches WHERE user_id = $1`
	var ids []int
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list taught courses: %w", err)
	}
	return ids, nil
}

// IDsInCategory returns the ids of every course filed under a category.
func (r *CourseRepository) IDsInCategory(ctx context.Context, category string) ([]int, error) {
	const query = `SELECT id FROM courses WHERE category = $1`
	var ids []int
	if err := r.db.SelectContext(ctx, &ids, query, category); err != nil {
		return nil, fmt.Errorf("list courses in category: %w", err)
	}
	return ids, nil
}

// ListByTeacher returns every course taught by a user.
func (r *CourseRepository) ListByTeacher(ctx context.Context, userID int) ([]models.Course, error) {
	const query = `SELECT c.id, c.name, c.duration, c.language, c.low_age_range, c.up_age_range, c.category, c.reports, c.description
        FROM courses c JOIN teaches t ON t.course_id = c.id WHERE t.user_id = $1 ORDER BY c.id`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, userID); err != nil {
		return nil, fmt.Errorf("list courses by teacher: %w", err)
	}
	return courses, nil
}

// UpdateReports persists a new report count.
func (r *CourseRepository) UpdateReports(ctx context.Context, id, reports int) error {
	const query = `UPDATE courses SET reports = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, reports); err != nil {
		return fmt.Errorf("update course reports: %w", err)
	}
	return nil
}

// Delete removes the course row; dependent rows cascade in the schema.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM courses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
