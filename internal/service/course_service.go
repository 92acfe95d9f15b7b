package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
	"github.com/bittutor/bittutor-api/pkg/media"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course, teacherID int) error
	FindByID(ctx context.Context, id int) (*models.Course, error)
	Teacher(ctx context.Context, courseID int) (*models.User, error)
	ListByTeacher(ctx context.Context, userID int) ([]models.Course, error)
	Delete(ctx context.Context, id int) error
}

type categoryFinder interface {
	FindByName(ctx context.Context, name string) (*models.Category, error)
}

// offerCacheInvalidator is satisfied by CatalogService. Services that change
// course visibility inputs call it after the write lands; nil disables it.
type offerCacheInvalidator interface {
	InvalidateOffers(ctx context.Context)
}

// CreateCourseRequest holds the payload for publishing a course.
type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required,plaintext"`
	Duration    int    `json:"duration" validate:"required,min=1"`
	Language    string `json:"language" validate:"required,plaintext"`
	LowAgeRange int    `json:"low_age_range" validate:"min=0"`
	UpAgeRange  int    `json:"up_age_range" validate:"required,gtefield=LowAgeRange"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"plaintext"`
	Image       []byte `json:"image,omitempty"`
	ImageExt    string `json:"image_ext,omitempty"`
}

// CourseService manages course publication, lookup and removal. The course
// row and its teacher link commit as one transaction; the course's media
// directory is created after commit.
type CourseService struct {
	repo       courseRepository
	categories categoryFinder
	store      *media.Store
	offers     offerCacheInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCourseService constructs the course service. offers may be nil.
func NewCourseService(repo courseRepository, categories categoryFinder, store *media.Store, offers offerCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, categories: categories, store: store, offers: offers, validator: validate, logger: logger}
}

// Create publishes a course taught by teacherID.
func (s *CourseService) Create(ctx context.Context, teacherID int, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if _, err := s.categories.FindByName(ctx, req.Category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check category")
	}

	course := &models.Course{
		Name:        req.Name,
		Duration:    req.Duration,
		Language:    req.Language,
		LowAgeRange: req.LowAgeRange,
		UpAgeRange:  req.UpAgeRange,
		Category:    req.Category,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, course, teacherID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	if s.offers != nil {
		s.offers.InvalidateOffers(ctx)
	}

	dir := s.store.CourseDir(course.ID)
	if err := s.store.EnsureDir(s.store.ContentDir(course.ID)); err != nil {
		s.logger.Warn("course directory not created", zap.Int("course_id", course.ID), zap.Error(err))
		return course, nil
	}
	if len(req.Image) > 0 {
		if err := s.store.WriteAsset(dir, media.CourseImagePrefix, req.ImageExt, req.Image); err != nil {
			s.logger.Warn("course image not written", zap.Int("course_id", course.ID), zap.Error(err))
		}
	}
	return course, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Teacher returns the user teaching a course.
func (s *CourseService) Teacher(ctx context.Context, courseID int) (*models.User, error) {
	teacher, err := s.repo.Teacher(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// ListByTeacher returns the courses taught by a user.
func (s *CourseService) ListByTeacher(ctx context.Context, userID int) ([]models.Course, error) {
	courses, err := s.repo.ListByTeacher(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Delete removes the course row, then its media subtree. Only the teacher may
// delete their course.
func (s *CourseService) Delete(ctx context.Context, courseID, requesterID int) error {
	teacher, err := s.Teacher(ctx, courseID)
	if err != nil {
		return err
	}
	if teacher.ID != requesterID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the teacher may delete the course")
	}
	if err := s.repo.Delete(ctx, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	if s.offers != nil {
		s.offers.InvalidateOffers(ctx)
	}
	if err := s.store.RemoveSubtree(s.store.CourseDir(courseID)); err != nil {
		s.logger.Warn("course directory not removed", zap.Int("course_id", courseID), zap.Error(err))
	}
	return nil
}

// Image returns the course's picture bytes, if any.
func (s *CourseService) Image(ctx context.Context, courseID int) ([]byte, error) {
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}
	data, found, err := s.store.ReadAsset(s.store.CourseDir(courseID), media.CourseImagePrefix)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read course image")
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course image not found")
	}
	return data, nil
}

// ReplaceImage swaps the course's picture.
func (s *CourseService) ReplaceImage(ctx context.Context, courseID int, ext string, data []byte) error {
	if _, err := s.Get(ctx, courseID); err != nil {
		return err
	}
	dir := s.store.CourseDir(courseID)
	if err := s.store.EnsureDir(dir); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prepare course directory")
	}
	if err := s.store.ReplaceAsset(dir, media.CourseImagePrefix, ext, data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write course image")
	}
	return nil
}
