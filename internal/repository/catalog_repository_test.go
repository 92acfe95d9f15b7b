package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var offerColumnNames = []string{
	"id", "name", "duration", "language", "low_age_range", "up_age_range",
	"category", "reports", "description", "avg_score", "teacher_id", "teacher_name",
}

func TestCatalogRepositoryOfferForUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows(offerColumnNames).
		AddRow(5, "Algebra", 40, "en", 12, 99, "Math", 0, "Intro algebra", 4.5, 3, "Ada").
		AddRow(8, "Geometry", 30, "en", 12, 99, "Math", 2, "Shapes", nil, 3, "Ada")
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY avg_score DESC NULLS LAST, c.id")).
		WithArgs("Math", 7, 20).
		WillReturnRows(rows)

	offers, err := repo.OfferForUser(context.Background(), "Math", 7, 20)
	require.NoError(t, err)
	require.Len(t, offers, 2)

	require.Equal(t, 5, offers[0].ID)
	require.NotNil(t, offers[0].AvgScore)
	require.InDelta(t, 4.5, *offers[0].AvgScore, 1e-9)
	require.Equal(t, "Ada", offers[0].TeacherName)

	// unreviewed course carries no score and sorts after reviewed ones
	require.Equal(t, 8, offers[1].ID)
	require.Nil(t, offers[1].AvgScore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryOfferExcludesCoTaughtCourses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	// the exclusion must cover every teaches row of a course, not just the
	// one joined for the teacher columns
	mock.ExpectQuery(regexp.QuoteMeta("NOT EXISTS (SELECT 1 FROM teaches tx WHERE tx.course_id = c.id AND tx.user_id = $2)")).
		WithArgs("Math", 3, 35).
		WillReturnRows(sqlmock.NewRows(offerColumnNames))

	offers, err := repo.OfferForUser(context.Background(), "Math", 3, 35)
	require.NoError(t, err)
	require.Empty(t, offers)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryWishListForUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows(offerColumnNames).
		AddRow(8, "Geometry", 30, "en", 12, 99, "Math", 2, "Shapes", 3.0, 3, "Ada")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN wishes w ON w.course_id = c.id AND w.user_id = $1")).
		WithArgs(7).
		WillReturnRows(rows)

	offers, err := repo.WishListForUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.Equal(t, "Geometry", offers[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
