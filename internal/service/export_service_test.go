package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittutor/bittutor-api/internal/models"
	"github.com/bittutor/bittutor-api/pkg/config"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
	"github.com/bittutor/bittutor-api/pkg/export"
	"github.com/bittutor/bittutor-api/pkg/jobs"
)

func newExportService(t *testing.T, subscribers []models.Subscriber) *ExportService {
	t.Helper()
	return NewExportService(
		&subscriberListStub{subscribers: subscribers},
		&titleStub{titles: map[int]string{5: "Algebra"}},
		export.NewCSVExporter(),
		export.NewPDFExporter(),
		newTestStore(t),
		nil,
		config.ExportsConfig{Enabled: true, WorkerConcurrency: 1},
		nil,
	)
}

func TestEnqueueRejectsUnknownFormat(t *testing.T) {
	svc := newExportService(t, nil)
	_, err := svc.Enqueue(context.Background(), 5, "xml")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnqueueRejectsUnknownCourse(t *testing.T) {
	svc := newExportService(t, nil)
	_, err := svc.Enqueue(context.Background(), 99, models.ExportCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProcessRendersRosterCSV(t *testing.T) {
	subscribers := []models.Subscriber{
		{ID: 7, Mail: "bob@example.com", Name: "Bob"},
		{ID: 8, Mail: "eve@example.com", Name: "Eve"},
	}
	svc := newExportService(t, subscribers)

	payload := rosterExportPayload{CourseID: 5, Format: models.ExportCSV, FileName: "roster_5_test.csv"}
	require.NoError(t, svc.process(context.Background(), jobs.Job{ID: "test", Type: "roster_export", Payload: payload}))

	data, err := svc.Result("roster_5_test.csv")
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "ID,Name,Mail"))
	assert.Contains(t, content, "7,Bob,bob@example.com")
	assert.Contains(t, content, "8,Eve,eve@example.com")
}

func TestProcessRendersRosterPDF(t *testing.T) {
	svc := newExportService(t, []models.Subscriber{{ID: 7, Mail: "bob@example.com", Name: "Bob"}})

	payload := rosterExportPayload{CourseID: 5, Format: models.ExportPDF, FileName: "roster_5_test.pdf"}
	require.NoError(t, svc.process(context.Background(), jobs.Job{ID: "test", Type: "roster_export", Payload: payload}))

	data, err := svc.Result(filepath.Base("roster_5_test.pdf"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestResultPendingJobIsNotFound(t *testing.T) {
	svc := newExportService(t, nil)
	_, err := svc.Result("roster_5_missing.csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
