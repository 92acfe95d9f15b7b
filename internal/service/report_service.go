package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
	"github.com/bittutor/bittutor-api/pkg/mailer"
	"github.com/bittutor/bittutor-api/pkg/media"
)

type reportedCourseRepository interface {
	FindByID(ctx context.Context, id int) (*models.Course, error)
	Teacher(ctx context.Context, courseID int) (*models.User, error)
	UpdateReports(ctx context.Context, id, reports int) error
	Delete(ctx context.Context, id int) error
}

type subscriberLister interface {
	Subscribers(ctx context.Context, courseID int) ([]models.Subscriber, error)
}

// ReportService runs the report/cancellation workflow. A report against a
// course below the threshold increments its counter; a report against a
// course already at the threshold cancels it instead: every subscriber is
// notified, then the course is removed from both stores. The stored counter
// never exceeds the threshold.
type ReportService struct {
	courses     reportedCourseRepository
	memberships subscriberLister
	mail        mailer.Mailer
	store       *media.Store
	offers      offerCacheInvalidator
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewReportService constructs the report service. offers and metrics may be nil.
func NewReportService(courses reportedCourseRepository, memberships subscriberLister, mail mailer.Mailer, store *media.Store, offers offerCacheInvalidator, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{courses: courses, memberships: memberships, mail: mail, store: store, offers: offers, metrics: metrics, logger: logger}
}

// RaiseReport registers one report against a course.
func (s *ReportService) RaiseReport(ctx context.Context, courseID int) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if course.Reports >= models.ReportThreshold {
		if err := s.cancel(ctx, course); err != nil {
			return err
		}
		s.metrics.RecordReport(true)
		return nil
	}

	if err := s.courses.UpdateReports(ctx, courseID, course.Reports+1); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report count")
	}
	s.metrics.RecordReport(false)
	return nil
}

// cancel notifies every subscriber and removes the course. Notification
// failures are logged per recipient; they never block the removal.
func (s *ReportService) cancel(ctx context.Context, course *models.Course) error {
	teacher, err := s.courses.Teacher(ctx, course.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	subscribers, err := s.memberships.Subscribers(ctx, course.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscribers")
	}

	for _, subscriber := range subscribers {
		notice := mailer.CancellationNotice{
			RecipientEmail:    subscriber.Mail,
			RecipientName:     subscriber.Name,
			CourseName:        course.Name,
			CourseDescription: course.Description,
			TeacherName:       teacher.Name,
		}
		if err := s.mail.SendCancellation(ctx, notice); err != nil {
			s.logger.Warn("cancellation notice not sent",
				zap.Int("course_id", course.ID), zap.String("recipient", subscriber.Mail), zap.Error(err))
		}
	}

	if err := s.courses.Delete(ctx, course.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	if s.offers != nil {
		s.offers.InvalidateOffers(ctx)
	}
	if err := s.store.RemoveSubtree(s.store.CourseDir(course.ID)); err != nil {
		s.logger.Warn("course directory not removed", zap.Int("course_id", course.ID), zap.Error(err))
	}
	s.logger.Info("course cancelled after report threshold",
		zap.Int("course_id", course.ID), zap.Int("subscribers_notified", len(subscribers)))
	return nil
}
