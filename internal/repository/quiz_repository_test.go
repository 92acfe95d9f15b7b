package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/bittutor/bittutor-api/internal/models"
)

func TestQuizRepositoryCreateQuestionNumbersPerQuiz(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(number), 0) + 1 FROM questions WHERE quiz_id = $1")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO questions")).
		WithArgs(3, 9, "What is 2+2?", "b", "3", "4", "5", "6").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	question := &models.Question{QuizID: 9, Instruction: "What is 2+2?", CorrectOption: "b",
		OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "6"}
	require.NoError(t, repo.CreateQuestion(context.Background(), question))
	require.Equal(t, 3, question.Number)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepositorySaveResultReplacesPriorRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM quiz_results WHERE quiz_id = $1 AND user_id = $2")).
		WithArgs(9, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO quiz_results (quiz_id, user_id, correct_answers) VALUES ($1, $2, $3)")).
		WithArgs(9, 7, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result := models.QuizResult{QuizID: 9, UserID: 7, CorrectAnswers: 4}
	require.NoError(t, repo.SaveResult(context.Background(), result))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepositoryAvailableForUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "title", "instructions"}).
		AddRow(2, 5, "Midterm", "Answer all questions").
		AddRow(4, 5, "Final", "No notes allowed")
	mock.ExpectQuery(regexp.QuoteMeta("r.quiz_id IS NULL OR r.correct_answers <")).
		WithArgs(5, 7).
		WillReturnRows(rows)

	quizzes, err := repo.AvailableForUser(context.Background(), 5, 7)
	require.NoError(t, err)
	require.Len(t, quizzes, 2)
	require.Equal(t, "Midterm", quizzes[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}
