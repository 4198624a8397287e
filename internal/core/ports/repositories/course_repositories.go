package repositories

import (
	"context"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// CourseReader defines read operations over the course catalogue.
type CourseReader interface {
	// ListPublishedCourses returns every published course ordered by sort
	// order, then title.
	ListPublishedCourses(ctx context.Context) ([]domain.Course, error)
	// FindCourseBySlug retrieves a course by its URL slug regardless of
	// publication state. Callers decide whether unpublished courses are
	// visible.
	FindCourseBySlug(ctx context.Context, slug string) (*domain.Course, error)
}

// CourseWriter defines write operations over the course catalogue.
type CourseWriter interface {
	// UpsertCourse inserts the course or, when the slug already exists,
	// updates the existing row in place.
	UpsertCourse(ctx context.Context, course domain.Course) (*domain.Course, error)
}

// CourseRepositoryFacade combines course read and write operations.
type CourseRepositoryFacade interface {
	CourseReader
	CourseWriter
}
