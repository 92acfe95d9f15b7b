package models

// Category groups courses. The name is the primary key.
type Category struct {
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
}
