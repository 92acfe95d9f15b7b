package models

// Review is a star rating with optional comments, one per (author, course).
type Review struct {
	Author   int    `db:"author" json:"author"`
	CourseID int    `db:"course_id" json:"course_id"`
	Stars    int    `db:"stars" json:"stars"`
	Comments string `db:"comments" json:"comments"`
}
