package models

// ReportThreshold is the report count at which a course is cancelled. The
// stored counter never exceeds this value.
const ReportThreshold = 15

// Course represents a published course.
type Course struct {
	ID          int    `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Duration    int    `db:"duration" json:"duration"`
	Language    string `db:"language" json:"language"`
	LowAgeRange int    `db:"low_age_range" json:"low_age_range"`
	UpAgeRange  int    `db:"up_age_range" json:"up_age_range"`
	Category    string `db:"category" json:"category"`
	Reports     int    `db:"reports" json:"reports"`
	Description string `db:"description" json:"description"`
}

// CourseOffer is a catalog result row: the course record plus its computed
// average rating and the teacher's identity. AvgScore is nil for courses
// without reviews; those sort after every rated course.
type CourseOffer struct {
	Course
	AvgScore    *float64 `db:"avg_score" json:"avg_score,omitempty"`
	TeacherID   int      `db:"teacher_id" json:"teacher_id"`
	TeacherName string   `db:"teacher_name" json:"teacher_name"`
}
