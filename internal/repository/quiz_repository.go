package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bittutor/bittutor-api/internal/models"
)

// QuizRepository handles persistence of quizzes, questions and results.
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository constructs the repository.
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// CreateQuiz allocates the next quiz id (one global sequence across all
// courses) and inserts the row in one transaction.
func (r *QuizRepository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create quiz: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id, err := nextID(ctx, tx, "quizzes")
	if err != nil {
		return err
	}
	quiz.ID = id

	const query = `INSERT INTO quizzes (id, course_id, title, instructions) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, quiz.ID, quiz.CourseID, quiz.Title, quiz.Instructions); err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create quiz: %w", err)
	}
	return nil
}

// CreateQuestion numbers the question 1..N within its quiz and inserts it in
// one transaction.
func (r *QuizRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create question: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	number, err := nextQuestionNumber(ctx, tx, question.QuizID)
	if err != nil {
		return err
	}
	question.Number = number

	const query = `INSERT INTO questions (number, quiz_id, instruction, correct_option, option_a, option_b, option_c, option_d)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, query, question.Number, question.QuizID, question.Instruction,
		question.CorrectOption, question.OptionA, question.OptionB, question.OptionC, question.OptionD); err != nil {
		return fmt.Errorf("create question: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create question: %w", err)
	}
	return nil
}

// FindQuiz returns a quiz by id.
func (r *QuizRepository) FindQuiz(ctx context.Context, id int) (*models.Quiz, error) {
	const query = `SELECT id, course_id, title, instructions FROM quizzes WHERE id = $1`
	var quiz models.Quiz
	if err := r.db.GetContext(ctx, &quiz, query, id); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Questions returns a quiz's questions ordered by number, ascending.
func (r *QuizRepository) Questions(ctx context.Context, quizID int) ([]models.Question, error) {
	const query = `SELECT number, quiz_id, instruction, correct_option, option_a, option_b, option_c, option_d
        FROM questions WHERE quiz_id = $1 ORDER BY number`
	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, query, quizID); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// AvailableForUser returns the quizzes on a course the user has not yet fully
// completed: quizzes with no recorded result, or with a recorded score below
// the quiz's current question count.
func (r *QuizRepository) AvailableForUser(ctx context.Context, courseID, userID int) ([]models.Quiz, error) {
	const query = `SELECT q.id, q.course_id, q.title, q.instructions
        FROM quizzes q
        LEFT JOIN quiz_results r ON r.quiz_id = q.id AND r.user_id = $2
        WHERE q.course_id = $1
          AND (r.quiz_id IS NULL OR r.correct_answers < (SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = q.id))
        ORDER BY q.id`
	var quizzes []models.Quiz
	if err := r.db.SelectContext(ctx, &quizzes, query, courseID, userID); err != nil {
		return nil, fmt.Errorf("list available quizzes: %w", err)
	}
	return quizzes, nil
}

// SaveResult stores a user's score, replacing any prior row for the same
// (quiz, user) pair. Delete and insert share one transaction so at most one
// row ever exists for the pair.
func (r *QuizRepository) SaveResult(ctx context.Context, result models.QuizResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save result: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const remove = `DELETE FROM quiz_results WHERE quiz_id = $1 AND user_id = $2`
	if _, err := tx.ExecContext(ctx, remove, result.QuizID, result.UserID); err != nil {
		return fmt.Errorf("clear prior result: %w", err)
	}

	const insert = `INSERT INTO quiz_results (quiz_id, user_id, correct_answers) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insert, result.QuizID, result.UserID, result.CorrectAnswers); err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save result: %w", err)
	}
	return nil
}

// FindResult returns the recorded result for (quiz, user), if any.
func (r *QuizRepository) FindResult(ctx context.Context, quizID, userID int) (*models.QuizResult, error) {
	const query = `SELECT quiz_id, user_id, correct_answers FROM quiz_results WHERE quiz_id = $1 AND user_id = $2`
	var result models.QuizResult
	if err := r.db.GetContext(ctx, &result, query, quizID, userID); err != nil {
		return nil, err
	}
	return &result, nil
}
