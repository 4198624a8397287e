package domain

// Course is a unit of training content. The published copy lives in the
// database; unpublished drafts are fetched from the CMS on preview.
type Course struct {
	CourseID    string `json:"courseID"` // Primary Key (UUID)
	Slug        string `json:"slug"`     // Unique, URL-facing identifier
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Body        string `json:"body"`
	IsPublished bool   `json:"isPublished"`
	SortOrder   int    `json:"sortOrder"`
	AuditFields
}
