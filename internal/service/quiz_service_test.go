package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
)

type quizRepoStub struct {
	quizzes   map[int]*models.Quiz
	questions map[int][]models.Question
	results   map[[2]int]models.QuizResult
	nextQuiz  int
}

func newQuizRepoStub() *quizRepoStub {
	return &quizRepoStub{
		quizzes:   map[int]*models.Quiz{},
		questions: map[int][]models.Question{},
		results:   map[[2]int]models.QuizResult{},
		nextQuiz:  1,
	}
}

func (r *quizRepoStub) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	quiz.ID = r.nextQuiz
	r.nextQuiz++
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r *quizRepoStub) CreateQuestion(ctx context.Context, question *models.Question) error {
	question.Number = len(r.questions[question.QuizID]) + 1
	r.questions[question.QuizID] = append(r.questions[question.QuizID], *question)
	return nil
}

func (r *quizRepoStub) FindQuiz(ctx context.Context, id int) (*models.Quiz, error) {
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return quiz, nil
}

func (r *quizRepoStub) Questions(ctx context.Context, quizID int) ([]models.Question, error) {
	return r.questions[quizID], nil
}

func (r *quizRepoStub) AvailableForUser(ctx context.Context, courseID, userID int) ([]models.Quiz, error) {
	var available []models.Quiz
	for _, quiz := range r.quizzes {
		if quiz.CourseID != courseID {
			continue
		}
		result, ok := r.results[[2]int{quiz.ID, userID}]
		if !ok || result.CorrectAnswers < len(r.questions[quiz.ID]) {
			available = append(available, *quiz)
		}
	}
	return available, nil
}

func (r *quizRepoStub) SaveResult(ctx context.Context, result models.QuizResult) error {
	r.results[[2]int{result.QuizID, result.UserID}] = result
	return nil
}

func (r *quizRepoStub) FindResult(ctx context.Context, quizID, userID int) (*models.QuizResult, error) {
	result, ok := r.results[[2]int{quizID, userID}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &result, nil
}

type courseFinderStub struct {
	courses map[int]*models.Course
}

func (s *courseFinderStub) FindByID(ctx context.Context, id int) (*models.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func newQuizService(repo *quizRepoStub) *QuizService {
	courses := &courseFinderStub{courses: map[int]*models.Course{5: {ID: 5, Name: "Algebra"}}}
	return NewQuizService(repo, courses, nil, nil)
}

func seedQuiz(t *testing.T, svc *QuizService) *models.Quiz {
	t.Helper()
	quiz, err := svc.Create(context.Background(), 5, CreateQuizRequest{Title: "Midterm"})
	require.NoError(t, err)
	for _, correct := range []string{"a", "b", "c"} {
		_, err := svc.AddQuestion(context.Background(), quiz.ID, AddQuestionRequest{
			Instruction: "pick " + correct, CorrectOption: correct,
			OptionA: "A", OptionB: "B", OptionC: "C", OptionD: "D",
		})
		require.NoError(t, err)
	}
	return quiz
}

func TestRegisterResultGradesAnswers(t *testing.T) {
	repo := newQuizRepoStub()
	svc := newQuizService(repo)
	quiz := seedQuiz(t, svc)

	result, err := svc.RegisterResult(context.Background(), quiz.ID, 7, map[int]string{1: "a", 2: "d", 3: "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.CorrectAnswers)
}

func TestRegisterResultReplacesPriorAttempt(t *testing.T) {
	repo := newQuizRepoStub()
	svc := newQuizService(repo)
	quiz := seedQuiz(t, svc)

	_, err := svc.RegisterResult(context.Background(), quiz.ID, 7, map[int]string{1: "a"})
	require.NoError(t, err)
	result, err := svc.RegisterResult(context.Background(), quiz.ID, 7, map[int]string{1: "a", 2: "b", 3: "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.CorrectAnswers)

	stored, err := svc.Result(context.Background(), quiz.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CorrectAnswers)
}

func TestAvailableExcludesFullyCompletedQuizzes(t *testing.T) {
	repo := newQuizRepoStub()
	svc := newQuizService(repo)
	quiz := seedQuiz(t, svc)

	available, err := svc.Available(context.Background(), 5, 7)
	require.NoError(t, err)
	require.Len(t, available, 1)

	_, err = svc.RegisterResult(context.Background(), quiz.ID, 7, map[int]string{1: "a", 2: "b", 3: "c"})
	require.NoError(t, err)

	available, err = svc.Available(context.Background(), 5, 7)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestAvailableKeepsQuizAfterPartialScoreWhenQuestionsGrow(t *testing.T) {
	repo := newQuizRepoStub()
	svc := newQuizService(repo)
	quiz := seedQuiz(t, svc)

	// full marks on three questions
	_, err := svc.RegisterResult(context.Background(), quiz.ID, 7, map[int]string{1: "a", 2: "b", 3: "c"})
	require.NoError(t, err)

	// a fourth question reopens the quiz for the user
	_, err = svc.AddQuestion(context.Background(), quiz.ID, AddQuestionRequest{
		Instruction: "pick d", CorrectOption: "d", OptionA: "A", OptionB: "B", OptionC: "C", OptionD: "D",
	})
	require.NoError(t, err)

	available, err := svc.Available(context.Background(), 5, 7)
	require.NoError(t, err)
	assert.Len(t, available, 1)
}

func TestAddQuestionRejectsUnknownOption(t *testing.T) {
	repo := newQuizRepoStub()
	svc := newQuizService(repo)
	quiz, err := svc.Create(context.Background(), 5, CreateQuizRequest{Title: "Midterm"})
	require.NoError(t, err)

	_, err = svc.AddQuestion(context.Background(), quiz.ID, AddQuestionRequest{
		Instruction: "bad", CorrectOption: "e", OptionA: "A", OptionB: "B", OptionC: "C", OptionD: "D",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterResultRequiresQuestions(t *testing.T) {
	repo := newQuizRepoStub()
	svc := newQuizService(repo)
	quiz, err := svc.Create(context.Background(), 5, CreateQuizRequest{Title: "Empty"})
	require.NoError(t, err)

	_, err = svc.RegisterResult(context.Background(), quiz.ID, 7, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
