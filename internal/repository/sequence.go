package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// nextID returns max(id)+1 for the given table, or 1 when the table is empty.
// Ids are monotonic per entity type; gaps left by deletions are never refilled.
// Callers must run this on the same transaction as the insert that consumes
// the id, so the allocate+insert pair forms one unit of work.
func nextID(ctx context.Context, q sqlx.QueryerContext, table string) (int, error) {
	var id int
	// table is always a compile-time constant, never caller input
	query := fmt.Sprintf("SELECT COALESCE(MAX(id), 0) + 1 FROM %s", table)
	if err := sqlx.GetContext(ctx, q, &id, query); err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", table, err)
	}
	return id, nil
}

// nextQuestionNumber allocates the next question number scoped to a quiz.
func nextQuestionNumber(ctx context.Context, q sqlx.QueryerContext, quizID int) (int, error) {
	var number int
	const query = `SELECT COALESCE(MAX(number), 0) + 1 FROM questions WHERE quiz_id = $1`
	if err := sqlx.GetContext(ctx, q, &number, query, quizID); err != nil {
		return 0, fmt.Errorf("allocate question number: %w", err)
	}
	return number, nil
}
