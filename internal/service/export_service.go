package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bittutor/bittutor-api/internal/models"
	"github.com/bittutor/bittutor-api/pkg/config"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
	"github.com/bittutor/bittutor-api/pkg/export"
	"github.com/bittutor/bittutor-api/pkg/jobs"
	"github.com/bittutor/bittutor-api/pkg/media"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type rosterExportPayload struct {
	CourseID int
	Format   models.ExportFormat
	FileName string
}

// ExportService renders course subscriber rosters as CSV or PDF files through
// a background worker queue. Finished files land in the media Exports
// directory and expire after the configured TTL.
type ExportService struct {
	memberships subscriberLister
	courses     titledCourseRepository
	csv         csvRenderer
	pdf         pdfRenderer
	store       *media.Store
	metrics     *MetricsService
	queue       *jobs.Queue
	cfg         config.ExportsConfig
	logger      *zap.Logger
}

// NewExportService constructs the export service and its worker queue.
// metrics may be nil.
func NewExportService(memberships subscriberLister, courses titledCourseRepository, csv csvRenderer, pdf pdfRenderer, store *media.Store, metrics *MetricsService, cfg config.ExportsConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		memberships: memberships,
		courses:     courses,
		csv:         csv,
		pdf:         pdf,
		store:       store,
		metrics:     metrics,
		cfg:         cfg,
		logger:      logger,
	}
	s.queue = jobs.NewQueue("roster-export", s.process, jobs.Config{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers and the retention sweeper.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if s.cfg.ResultTTL > 0 {
		go s.sweepLoop(ctx)
	}
}

func (s *ExportService) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ResultTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules a roster export for a course and returns the job
// descriptor the caller can poll with Result.
func (s *ExportService) Enqueue(ctx context.Context, courseID int, format models.ExportFormat) (*models.ExportJob, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are disabled")
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if _, err := s.courses.Title(ctx, courseID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	id := uuid.NewString()
	job := &models.ExportJob{
		ID:       id,
		CourseID: courseID,
		Format:   format,
		FileName: fmt.Sprintf("roster_%d_%s.%s", courseID, id, format),
	}
	payload := rosterExportPayload{CourseID: courseID, Format: format, FileName: job.FileName}
	if err := s.queue.Enqueue(jobs.Job{ID: id, Type: "roster_export", Payload: payload}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return job, nil
}

// Result returns the rendered file bytes, or not-found while the job is
// still pending or already expired.
func (s *ExportService) Result(fileName string) ([]byte, error) {
	data, err := s.store.ReadFile(filepath.Join(s.store.ExportsDir(), filepath.Base(fileName)))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not ready or expired")
	}
	return data, nil
}

// Sweep removes finished exports older than the configured TTL.
func (s *ExportService) Sweep() {
	if s.cfg.ResultTTL <= 0 {
		return
	}
	removed, err := s.store.RemoveOlderThan(s.store.ExportsDir(), s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export sweep failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(rosterExportPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	title, err := s.courses.Title(ctx, payload.CourseID)
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	subscribers, err := s.memberships.Subscribers(ctx, payload.CourseID)
	if err != nil {
		return fmt.Errorf("load subscribers: %w", err)
	}

	dataset := export.Dataset{Headers: []string{"ID", "Name", "Mail"}}
	for _, subscriber := range subscribers {
		dataset.Rows = append(dataset.Rows, []string{strconv.Itoa(subscriber.ID), subscriber.Name, subscriber.Mail})
	}

	var rendered []byte
	switch payload.Format {
	case models.ExportPDF:
		rendered, err = s.pdf.Render(dataset, fmt.Sprintf("Subscribers: %s", title))
	default:
		rendered, err = s.csv.Render(dataset)
	}
	if err != nil {
		return fmt.Errorf("render roster: %w", err)
	}

	path := filepath.Join(s.store.ExportsDir(), payload.FileName)
	if err := s.store.WriteFile(path, rendered); err != nil {
		return fmt.Errorf("store roster: %w", err)
	}
	s.metrics.RecordExportJob()
	s.logger.Info("roster export finished",
		zap.Int("course_id", payload.CourseID), zap.String("file", payload.FileName))
	return nil
}
