package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/bittutor/bittutor-api/internal/models"
	"github.com/bittutor/bittutor-api/pkg/certificate"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
	"github.com/bittutor/bittutor-api/pkg/media"
)

type completionFinder interface {
	FindCompletion(ctx context.Context, userID, courseID int) (*models.Completion, error)
}

type namedEntityRepository interface {
	FullName(ctx context.Context, id int) (string, error)
}

type titledCourseRepository interface {
	Title(ctx context.Context, id int) (string, error)
}

// CertificateService renders completion certificates. The image is rasterized
// to a temp file inside the user's media directory, read back, and removed;
// callers only ever see the bytes.
type CertificateService struct {
	completions completionFinder
	users       namedEntityRepository
	courses     titledCourseRepository
	renderer    *certificate.Renderer
	store       *media.Store
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewCertificateService constructs the certificate service. metrics may be nil.
func NewCertificateService(completions completionFinder, users namedEntityRepository, courses titledCourseRepository, renderer *certificate.Renderer, store *media.Store, metrics *MetricsService, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{
		completions: completions,
		users:       users,
		courses:     courses,
		renderer:    renderer,
		store:       store,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Generate renders the certificate for (user, course) and returns the JPEG
// bytes. Fails with a precondition error when the user never completed the
// course.
func (s *CertificateService) Generate(ctx context.Context, userID, courseID int) ([]byte, error) {
	completion, err := s.completions.FindCompletion(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "user has not completed the course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completion")
	}

	userName, err := s.users.FullName(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	courseTitle, err := s.courses.Title(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	dir := s.store.UserDir(userID)
	if err := s.store.EnsureDir(dir); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prepare user directory")
	}
	outPath := filepath.Join(dir, fmt.Sprintf("Certificate_%d.jpg", s.now().UnixMilli()))

	if err := s.renderer.Render(userName, courseTitle, completion.Date, outPath); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}
	data, err := s.store.ReadFile(outPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read certificate")
	}
	if err := s.store.Remove(outPath); err != nil {
		s.logger.Warn("certificate temp file not removed", zap.String("path", outPath), zap.Error(err))
	}
	s.metrics.RecordCertificateRendered()
	return data, nil
}
