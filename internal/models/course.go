package models

// Course is the database row for published course content.
type Course struct {
	CourseID    string `json:"courseID" db:"course_id"`
	Slug        string `json:"slug" db:"slug"`
	Title       string `json:"title" db:"title"`
	Summary     string `json:"summary" db:"summary"`
	Body        string `json:"body" db:"body"`
	IsPublished bool   `json:"isPublished" db:"is_published"`
	SortOrder   int    `json:"sortOrder" db:"sort_order"`
	AuditFields
}
