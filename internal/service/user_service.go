package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
	"github.com/bittutor/bittutor-api/pkg/media"
)

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int) (*models.User, error)
	FindByMail(ctx context.Context, mail string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Delete(ctx context.Context, id int) error
}

type taughtCourseLister interface {
	IDsTaughtBy(ctx context.Context, userID int) ([]int, error)
}

// RegisterUserRequest holds the payload for creating a user.
type RegisterUserRequest struct {
	Mail        string `json:"mail" validate:"required,email"`
	Name        string `json:"name" validate:"required,plaintext"`
	Password    string `json:"password" validate:"required,min=6"`
	Age         int    `json:"age" validate:"required,min=1"`
	StudyLevel  string `json:"study_level" validate:"required,plaintext"`
	Description string `json:"description" validate:"plaintext"`
	// Image is an optional profile picture stored beside the user's record.
	Image    []byte `json:"image,omitempty"`
	ImageExt string `json:"image_ext,omitempty"`
}

// UpdateUserRequest holds the mutable profile fields.
type UpdateUserRequest struct {
	Name        string `json:"name" validate:"required,plaintext"`
	Age         int    `json:"age" validate:"required,min=1"`
	StudyLevel  string `json:"study_level" validate:"required,plaintext"`
	Description string `json:"description" validate:"plaintext"`
}

// UserService handles user registration, profile management and removal.
// Writes land in the database first; the filesystem phase runs only after the
// transaction committed, and a filesystem failure at that point is logged
// rather than surfaced.
type UserService struct {
	repo      userRepository
	courses   taughtCourseLister
	store     *media.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo userRepository, courses taughtCourseLister, store *media.Store, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, courses: courses, store: store, validator: validate, logger: logger}
}

// Register creates a user and its media directory.
func (s *UserService) Register(ctx context.Context, req RegisterUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	if _, err := s.repo.FindByMail(ctx, req.Mail); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "mail already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mail")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Mail:       req.Mail,
		Name:       req.Name,
		Password:   string(hash),
		Age:        req.Age,
		StudyLevel: req.StudyLevel,
	}
	if req.Description != "" {
		user.Description = &req.Description
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	// Database committed; filesystem problems from here on are logged only.
	dir := s.store.UserDir(user.ID)
	if err := s.store.EnsureDir(dir); err != nil {
		s.logger.Warn("user directory not created", zap.Int("user_id", user.ID), zap.Error(err))
		return user, nil
	}
	if len(req.Image) > 0 {
		if err := s.store.WriteAsset(dir, media.ProfileImagePrefix, req.ImageExt, req.Image); err != nil {
			s.logger.Warn("profile image not written", zap.Int("user_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Update persists the mutable profile fields.
func (s *UserService) Update(ctx context.Context, id int, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	user.Age = req.Age
	user.StudyLevel = req.StudyLevel
	user.Description = nil
	if req.Description != "" {
		user.Description = &req.Description
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	return user, nil
}

// ChangePassword replaces the stored hash after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, id int, current, next string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return appErrors.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	return nil
}

// Delete removes the user row and, after commit, the user's directory and the
// directory of every course the user taught. The course rows themselves fall
// to the schema's cascade.
func (s *UserService) Delete(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	taught, err := s.courses.IDsTaughtBy(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list taught courses")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}

	for _, courseID := range taught {
		if err := s.store.RemoveSubtree(s.store.CourseDir(courseID)); err != nil {
			s.logger.Warn("course directory not removed", zap.Int("course_id", courseID), zap.Error(err))
		}
	}
	if err := s.store.RemoveSubtree(s.store.UserDir(id)); err != nil {
		s.logger.Warn("user directory not removed", zap.Int("user_id", id), zap.Error(err))
	}
	return nil
}

// ProfileImage returns the stored profile picture bytes, if any.
func (s *UserService) ProfileImage(ctx context.Context, id int) ([]byte, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	data, found, err := s.store.ReadAsset(s.store.UserDir(id), media.ProfileImagePrefix)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read profile image")
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "profile image not found")
	}
	return data, nil
}

// ReplaceProfileImage swaps the stored profile picture.
func (s *UserService) ReplaceProfileImage(ctx context.Context, id int, ext string, data []byte) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	dir := s.store.UserDir(id)
	if err := s.store.EnsureDir(dir); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prepare user directory")
	}
	if err := s.store.ReplaceAsset(dir, media.ProfileImagePrefix, ext, data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write profile image")
	}
	return nil
}
