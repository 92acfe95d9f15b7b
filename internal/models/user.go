package models

// User represents a platform member stored in the users table. The password
// column holds a bcrypt hash, never the raw credential.
type User struct {
	ID          int     `db:"id" json:"id"`
	Mail        string  `db:"mail" json:"mail"`
	Name        string  `db:"name" json:"name"`
	Password    string  `db:"password" json:"-"`
	Age         int     `db:"age" json:"age"`
	StudyLevel  string  `db:"study_level" json:"study_level"`
	Description *string `db:"description" json:"description,omitempty"`
}

// Subscriber is the slice of user data needed to notify a course's students.
type Subscriber struct {
	ID   int    `db:"id" json:"id"`
	Mail string `db:"mail" json:"mail"`
	Name string `db:"name" json:"name"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
