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

type resourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	FindByKey(ctx context.Context, name string, courseID int) (*models.Resource, error)
	ListByCourse(ctx context.Context, courseID int) ([]models.Resource, error)
	Delete(ctx context.Context, name string, courseID int) error
}

type accessLogger interface {
	LogResourceAccess(ctx context.Context, access models.ResourceAccess) error
}

// AddResourceRequest holds the payload for attaching material to a course.
type AddResourceRequest struct {
	Name           string                `json:"name" validate:"required,plaintext"`
	Title          string                `json:"title" validate:"required,plaintext"`
	Format         models.ResourceFormat `json:"format" validate:"required,oneof=pdf swf image txt file other"`
	InPageLocation int                   `json:"in_page_location" validate:"min=0"`
	Description    string                `json:"description" validate:"plaintext"`
	Data           []byte                `json:"data,omitempty"`
}

// ResourceService manages course materials: the database record and, for
// loadable formats, the bytes under the course's Content directory.
type ResourceService struct {
	repo      resourceRepository
	access    accessLogger
	store     *media.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResourceService constructs the resource service.
func NewResourceService(repo resourceRepository, access accessLogger, store *media.Store, validate *validator.Validate, logger *zap.Logger) *ResourceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{repo: repo, access: access, store: store, validator: validate, logger: logger}
}

// Add records a resource and, when its format is loadable, writes the bytes
// to the course's Content directory after the row committed.
func (s *ResourceService) Add(ctx context.Context, courseID int, req AddResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}
	if req.Format.Loadable() && len(req.Data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "loadable resource requires file data")
	}

	if _, err := s.repo.FindByKey(ctx, req.Name, courseID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "resource name already used on this course")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check resource")
	}

	resource := &models.Resource{
		Name:           req.Name,
		CourseID:       courseID,
		Title:          req.Title,
		Format:         req.Format,
		InPageLocation: req.InPageLocation,
		Description:    req.Description,
	}
	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}

	if resource.Format.Loadable() {
		if err := s.store.WriteContent(courseID, resource.Name, req.Data); err != nil {
			s.logger.Warn("resource content not written",
				zap.Int("course_id", courseID), zap.String("resource", resource.Name), zap.Error(err))
		}
	}
	return resource, nil
}

// Get returns a resource record with its bytes when the format is loadable,
// and logs the access for the requesting user.
func (s *ResourceService) Get(ctx context.Context, courseID int, name string, userID int) (*models.ResourceContent, error) {
	resource, err := s.repo.FindByKey(ctx, name, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}

	content := &models.ResourceContent{Resource: *resource}
	if resource.Format.Loadable() {
		data, found, err := s.store.ReadContent(courseID, name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read resource content")
		}
		if found {
			content.Data = data
		} else {
			s.logger.Warn("resource record has no content file",
				zap.Int("course_id", courseID), zap.String("resource", name))
		}
	}

	if err := s.access.LogResourceAccess(ctx, models.ResourceAccess{ResourceName: name, CourseID: courseID, UserID: userID}); err != nil {
		s.logger.Warn("resource access not logged",
			zap.Int("course_id", courseID), zap.String("resource", name), zap.Error(err))
	}
	return content, nil
}

// List returns a course's resources in page order.
func (s *ResourceService) List(ctx context.Context, courseID int) ([]models.Resource, error) {
	resources, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	return resources, nil
}

// Delete removes the record, then the content file when one exists.
func (s *ResourceService) Delete(ctx context.Context, courseID int, name string) error {
	resource, err := s.repo.FindByKey(ctx, name, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if err := s.repo.Delete(ctx, name, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete resource")
	}
	if resource.Format.Loadable() {
		if err := s.store.RemoveContent(courseID, name); err != nil {
			s.logger.Warn("resource content not removed",
				zap.Int("course_id", courseID), zap.String("resource", name), zap.Error(err))
		}
	}
	return nil
}
