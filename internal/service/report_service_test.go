package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittutor/bittutor-api/internal/models"
	"github.com/bittutor/bittutor-api/pkg/mailer"
	"github.com/bittutor/bittutor-api/pkg/media"
)

type reportCourseStub struct {
	course  *models.Course
	teacher *models.User

	updatedReports int
	updated        bool
	deleted        bool
}

func (s *reportCourseStub) FindByID(ctx context.Context, id int) (*models.Course, error) {
	if s.course == nil || s.course.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.course, nil
}

func (s *reportCourseStub) Teacher(ctx context.Context, courseID int) (*models.User, error) {
	return s.teacher, nil
}

func (s *reportCourseStub) UpdateReports(ctx context.Context, id, reports int) error {
	s.updated = true
	s.updatedReports = reports
	return nil
}

func (s *reportCourseStub) Delete(ctx context.Context, id int) error {
	s.deleted = true
	return nil
}

type subscriberListStub struct {
	subscribers []models.Subscriber
}

func (s *subscriberListStub) Subscribers(ctx context.Context, courseID int) ([]models.Subscriber, error) {
	return s.subscribers, nil
}

type mailerStub struct {
	notices []mailer.CancellationNotice
	fail    bool
}

func (m *mailerStub) SendCancellation(_ context.Context, notice mailer.CancellationNotice) error {
	m.notices = append(m.notices, notice)
	if m.fail {
		return errors.New("smtp down")
	}
	return nil
}

func newTestStore(t *testing.T) *media.Store {
	t.Helper()
	store, err := media.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestRaiseReportIncrementsBelowThreshold(t *testing.T) {
	courses := &reportCourseStub{course: &models.Course{ID: 5, Name: "Algebra", Reports: 3}}
	svc := NewReportService(courses, &subscriberListStub{}, &mailerStub{}, newTestStore(t), nil, nil, nil)

	require.NoError(t, svc.RaiseReport(context.Background(), 5))
	assert.True(t, courses.updated)
	assert.Equal(t, 4, courses.updatedReports)
	assert.False(t, courses.deleted)
}

func TestRaiseReportJustBelowThresholdStoresThresholdWithoutCancelling(t *testing.T) {
	courses := &reportCourseStub{course: &models.Course{ID: 5, Name: "Algebra", Reports: models.ReportThreshold - 1}}
	mail := &mailerStub{}
	svc := NewReportService(courses, &subscriberListStub{}, mail, newTestStore(t), nil, nil, nil)

	require.NoError(t, svc.RaiseReport(context.Background(), 5))
	assert.True(t, courses.updated)
	assert.Equal(t, models.ReportThreshold, courses.updatedReports)
	assert.False(t, courses.deleted)
	assert.Empty(t, mail.notices)
}

func TestRaiseReportAtThresholdCancelsCourse(t *testing.T) {
	courses := &reportCourseStub{
		course:  &models.Course{ID: 5, Name: "Algebra", Description: "Intro", Reports: models.ReportThreshold},
		teacher: &models.User{ID: 3, Name: "Ada"},
	}
	subs := &subscriberListStub{subscribers: []models.Subscriber{
		{ID: 7, Mail: "bob@example.com", Name: "Bob"},
		{ID: 8, Mail: "eve@example.com", Name: "Eve"},
	}}
	mail := &mailerStub{}
	svc := NewReportService(courses, subs, mail, newTestStore(t), nil, nil, nil)

	require.NoError(t, svc.RaiseReport(context.Background(), 5))

	require.Len(t, mail.notices, 2)
	assert.Equal(t, "bob@example.com", mail.notices[0].RecipientEmail)
	assert.Equal(t, "Algebra", mail.notices[0].CourseName)
	assert.Equal(t, "Ada", mail.notices[0].TeacherName)
	assert.True(t, courses.deleted)
	assert.False(t, courses.updated, "cancellation must not store a count above the threshold")
}

func TestRaiseReportNotificationFailureStillCancels(t *testing.T) {
	courses := &reportCourseStub{
		course:  &models.Course{ID: 5, Name: "Algebra", Reports: models.ReportThreshold},
		teacher: &models.User{ID: 3, Name: "Ada"},
	}
	subs := &subscriberListStub{subscribers: []models.Subscriber{{ID: 7, Mail: "bob@example.com", Name: "Bob"}}}
	svc := NewReportService(courses, subs, &mailerStub{fail: true}, newTestStore(t), nil, nil, nil)

	require.NoError(t, svc.RaiseReport(context.Background(), 5))
	assert.True(t, courses.deleted)
}

func TestRaiseReportUnknownCourse(t *testing.T) {
	svc := NewReportService(&reportCourseStub{}, &subscriberListStub{}, &mailerStub{}, newTestStore(t), nil, nil, nil)
	err := svc.RaiseReport(context.Background(), 99)
	require.Error(t, err)
}
