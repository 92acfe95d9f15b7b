package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/bittutor/bittutor-api/internal/models"
)

func TestCourseRepositoryCreateInsertsCourseAndTeaches(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(id), 0) + 1 FROM courses")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WithArgs(5, "Algebra", 40, "en", 12, 99, "Math", "Intro algebra").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teaches (user_id, course_id) VALUES ($1, $2)")).
		WithArgs(3, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	course := &models.Course{Name: "Algebra", Duration: 40, Language: "en", LowAgeRange: 12, UpAgeRange: 99, Category: "Math", Description: "Intro algebra"}
	require.NoError(t, repo.Create(context.Background(), course, 3))
	require.Equal(t, 5, course.ID)
	require.Equal(t, 0, course.Reports)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateRollsBackWhenTeachesFails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(id), 0) + 1 FROM courses")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teaches")).
		WillReturnError(errors.New("missing teacher"))
	mock.ExpectRollback()

	course := &models.Course{Name: "Algebra", Category: "Math"}
	require.Error(t, repo.Create(context.Background(), course, 99))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryIDsTaughtBy(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id FROM teaches WHERE user_id = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}).AddRow(5).AddRow(8))

	ids, err := repo.IDsTaughtBy(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, []int{5, 8}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateReports(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET reports = $2 WHERE id = $1")).
		WithArgs(5, 15).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateReports(context.Background(), 5, 15))
	require.NoError(t, mock.ExpectationsWereMet())
}
