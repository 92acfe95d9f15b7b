package models

import "time"

// Teaches links a course to the user teaching it.
type Teaches struct {
	UserID   int `db:"user_id" json:"user_id"`
	CourseID int `db:"course_id" json:"course_id"`
}

// Subscription marks a user as enrolled in a course.
type Subscription struct {
	UserID   int `db:"user_id" json:"user_id"`
	CourseID int `db:"course_id" json:"course_id"`
}

// Wish marks a course saved to a user's wishlist.
type Wish struct {
	UserID   int `db:"user_id" json:"user_id"`
	CourseID int `db:"course_id" json:"course_id"`
}

// Ban excludes a user from seeing or joining a course.
type Ban struct {
	UserID   int `db:"user_id" json:"user_id"`
	CourseID int `db:"course_id" json:"course_id"`
}

// Completion records that a user finished a course on a given date.
type Completion struct {
	UserID   int       `db:"user_id" json:"user_id"`
	CourseID int       `db:"course_id" json:"course_id"`
	Date     time.Time `db:"date" json:"date"`
}

// ResourceAccess logs a user fetching a course resource.
type ResourceAccess struct {
	ResourceName string `db:"resource_name" json:"resource_name"`
	CourseID     int    `db:"course_id" json:"course_id"`
	UserID       int    `db:"user_id" json:"user_id"`
}
