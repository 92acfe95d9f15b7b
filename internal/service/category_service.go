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

type categoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Delete(ctx context.Context, name string) error
}

type categoryCourseLister interface {
	IDsInCategory(ctx context.Context, category string) ([]int, error)
}

// CreateCategoryRequest holds the payload for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,plaintext"`
	Description string `json:"description" validate:"plaintext"`
	Image       []byte `json:"image,omitempty"`
	ImageExt    string `json:"image_ext,omitempty"`
}

// CategoryService manages course categories and their media directories.
type CategoryService struct {
	repo      categoryRepository
	courses   categoryCourseLister
	store     *media.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs the category service.
func NewCategoryService(repo categoryRepository, courses categoryCourseLister, store *media.Store, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, courses: courses, store: store, validator: validate, logger: logger}
}

// Create inserts the category row, then prepares its directory and image.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "category already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check category")
	}

	category := &models.Category{Name: req.Name}
	if req.Description != "" {
		category.Description = &req.Description
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}

	dir := s.store.CategoryDir(category.Name)
	if err := s.store.EnsureDir(dir); err != nil {
		s.logger.Warn("category directory not created", zap.String("category", category.Name), zap.Error(err))
		return category, nil
	}
	if len(req.Image) > 0 {
		if err := s.store.WriteAsset(dir, media.CategoryImagePrefix, req.ImageExt, req.Image); err != nil {
			s.logger.Warn("category image not written", zap.String("category", category.Name), zap.Error(err))
		}
	}
	return category, nil
}

// Get returns a category by name.
func (s *CategoryService) Get(ctx context.Context, name string) (*models.Category, error) {
	category, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	return category, nil
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	return categories, nil
}

// Delete removes the category row and, after commit, its directory and the
// directory of every course filed under it. The course rows themselves fall
// to the schema's cascade.
func (s *CategoryService) Delete(ctx context.Context, name string) error {
	if _, err := s.Get(ctx, name); err != nil {
		return err
	}
	courseIDs, err := s.courses.IDsInCategory(ctx, name)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list category courses")
	}
	if err := s.repo.Delete(ctx, name); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete category")
	}

	for _, courseID := range courseIDs {
		if err := s.store.RemoveSubtree(s.store.CourseDir(courseID)); err != nil {
			s.logger.Warn("course directory not removed", zap.Int("course_id", courseID), zap.Error(err))
		}
	}
	if err := s.store.RemoveSubtree(s.store.CategoryDir(name)); err != nil {
		s.logger.Warn("category directory not removed", zap.String("category", name), zap.Error(err))
	}
	return nil
}

// Image returns the category's picture bytes, if any.
func (s *CategoryService) Image(ctx context.Context, name string) ([]byte, error) {
	if _, err := s.Get(ctx, name); err != nil {
		return nil, err
	}
	data, found, err := s.store.ReadAsset(s.store.CategoryDir(name), media.CategoryImagePrefix)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read category image")
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "category image not found")
	}
	return data, nil
}

// ReplaceImage swaps the category's picture.
func (s *CategoryService) ReplaceImage(ctx context.Context, name, ext string, data []byte) error {
	if _, err := s.Get(ctx, name); err != nil {
		return err
	}
	dir := s.store.CategoryDir(name)
	if err := s.store.EnsureDir(dir); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prepare category directory")
	}
	if err := s.store.ReplaceAsset(dir, media.CategoryImagePrefix, ext, data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write category image")
	}
	return nil
}
