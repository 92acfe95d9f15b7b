package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bittutor/bittutor-api/internal/models"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
)

type quizRepository interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	CreateQuestion(ctx context.Context, question *models.Question) error
	FindQuiz(ctx context.Context, id int) (*models.Quiz, error)
	Questions(ctx context.Context, quizID int) ([]models.Question, error)
	AvailableForUser(ctx context.Context, courseID, userID int) ([]models.Quiz, error)
	SaveResult(ctx context.Context, result models.QuizResult) error
	FindResult(ctx context.Context, quizID, userID int) (*models.QuizResult, error)
}

// CreateQuizRequest holds the payload for adding a quiz to a course.
type CreateQuizRequest struct {
	Title        string `json:"title" validate:"required,plaintext"`
	Instructions string `json:"instructions" validate:"plaintext"`
}

// AddQuestionRequest holds the payload for appending a question to a quiz.
type AddQuestionRequest struct {
	Instruction   string `json:"instruction" validate:"required,plaintext"`
	CorrectOption string `json:"correct_option" validate:"required,oneof=a b c d"`
	OptionA       string `json:"option_a" validate:"required,plaintext"`
	OptionB       string `json:"option_b" validate:"required,plaintext"`
	OptionC       string `json:"option_c" validate:"required,plaintext"`
	OptionD       string `json:"option_d" validate:"required,plaintext"`
}

// QuizService manages quizzes, their questions and recorded results.
type QuizService struct {
	repo      quizRepository
	courses   courseFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQuizService constructs the quiz service.
func NewQuizService(repo quizRepository, courses courseFinder, validate *validator.Validate, logger *zap.Logger) *QuizService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// Create adds a quiz to a course.
func (s *QuizService) Create(ctx context.Context, courseID int, req CreateQuizRequest) (*models.Quiz, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz payload")
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	quiz := &models.Quiz{CourseID: courseID, Title: req.Title, Instructions: req.Instructions}
	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create quiz")
	}
	return quiz, nil
}

// AddQuestion appends a question to a quiz; numbering is handled by storage.
func (s *QuizService) AddQuestion(ctx context.Context, quizID int, req AddQuestionRequest) (*models.Question, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid question payload")
	}
	if _, err := s.repo.FindQuiz(ctx, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}
	question := &models.Question{
		QuizID:        quizID,
		Instruction:   req.Instruction,
		CorrectOption: req.CorrectOption,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
	}
	if err := s.repo.CreateQuestion(ctx, question); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create question")
	}
	return question, nil
}

// Questions returns a quiz's questions in order.
func (s *QuizService) Questions(ctx context.Context, quizID int) ([]models.Question, error) {
	if _, err := s.repo.FindQuiz(ctx, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}
	questions, err := s.repo.Questions(ctx, quizID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list questions")
	}
	return questions, nil
}

// Available returns the quizzes on a course the user has not yet passed in
// full: quizzes without a recorded result, or whose recorded score is below
// the current question count.
func (s *QuizService) Available(ctx context.Context, courseID, userID int) ([]models.Quiz, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	quizzes, err := s.repo.AvailableForUser(ctx, courseID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list quizzes")
	}
	return quizzes, nil
}

// RegisterResult grades the submitted answers against the quiz's questions
// and stores the score, replacing any prior attempt.
func (s *QuizService) RegisterResult(ctx context.Context, quizID, userID int, answers map[int]string) (*models.QuizResult, error) {
	questions, err := s.Questions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "quiz has no questions")
	}

	correct := 0
	for _, question := range questions {
		if answers[question.Number] == question.CorrectOption {
			correct++
		}
	}

	result := models.QuizResult{QuizID: quizID, UserID: userID, CorrectAnswers: correct}
	if err := s.repo.SaveResult(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save result")
	}
	return &result, nil
}

// Result returns the user's recorded score on a quiz.
func (s *QuizService) Result(ctx context.Context, quizID, userID int) (*models.QuizResult, error) {
	result, err := s.repo.FindResult(ctx, quizID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no result recorded")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	return result, nil
}
