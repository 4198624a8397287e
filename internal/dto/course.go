package dto

import (
	"time"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// --- Course DTOs ---

// UpsertCourseRequest creates or replaces a catalogue entry by slug.
type UpsertCourseRequest struct {
	Slug        string `json:"slug" binding:"required,max=200"`
	Title       string `json:"title" binding:"required,max=300"`
	Summary     string `json:"summary"`
	Body        string `json:"body"`
	IsPublished bool   `json:"isPublished"`
	SortOrder   int    `json:"sortOrder"`
}

// CourseResponse defines data returned for a course. Body is present only
// when the caller is entitled to the full content.
type CourseResponse struct {
	CourseID    string    `json:"courseID"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Body        string    `json:"body,omitempty"`
	IsPublished bool      `json:"isPublished"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToCourseResponse converts domain.Course to DTO.
func ToCourseResponse(course *domain.Course) CourseResponse {
	return CourseResponse{
		CourseID:    course.CourseID,
		Slug:        course.Slug,
		Title:       course.Title,
		Summary:     course.Summary,
		Body:        course.Body,
		IsPublished: course.IsPublished,
		SortOrder:   course.SortOrder,
		CreatedAt:   course.CreatedAt,
	}
}

// ListCoursesResponse wraps the course catalogue.
type ListCoursesResponse struct {
	Courses []CourseResponse `json:"courses"`
}

// ToListCoursesResponse converts a slice of domain.Course to DTO.
func ToListCoursesResponse(courses []domain.Course) ListCoursesResponse {
	list := make([]CourseResponse, len(courses))
	for i, c := range courses {
		list[i] = ToCourseResponse(&c)
	}
	return ListCoursesResponse{Courses: list}
}
