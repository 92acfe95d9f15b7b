package models

// Quiz belongs to a course. Ids are allocated from a single global sequence.
type Quiz struct {
	ID           int    `db:"id" json:"id"`
	CourseID     int    `db:"course_id" json:"course_id"`
	Title        string `db:"title" json:"title"`
	Instructions string `db:"instructions" json:"instructions"`
}

// Question is keyed by (number, quiz); numbers count 1..N within their quiz.
type Question struct {
	Number        int    `db:"number" json:"number"`
	QuizID        int    `db:"quiz_id" json:"quiz_id"`
	Instruction   string `db:"instruction" json:"instruction"`
	CorrectOption string `db:"correct_option" json:"correct_option"`
	OptionA       string `db:"option_a" json:"option_a"`
	OptionB       string `db:"option_b" json:"option_b"`
	OptionC       string `db:"option_c" json:"option_c"`
	OptionD       string `db:"option_d" json:"option_d"`
}

// QuizResult records a user's latest score on a quiz. At most one row exists
// per (quiz, user); re-submission replaces the prior row.
type QuizResult struct {
	QuizID         int `db:"quiz_id" json:"quiz_id"`
	UserID         int `db:"user_id" json:"user_id"`
	CorrectAnswers int `db:"correct_answers" json:"correct_answers"`
}
