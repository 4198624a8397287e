package services

import (
	"context"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	"github.com/skillgrove/skillgrove_app/internal/dto"
)

// CourseSvcFacade serves the course catalogue.
type CourseSvcFacade interface {
	// ListCourses returns the published catalogue ordered for display.
	ListCourses(ctx context.Context) ([]domain.Course, error)

	// GetCourseBySlug retrieves a course. Content requires an entitled
	// caller: individuals without a purchased package are refused. Admins may
	// request preview to read the CMS draft, degrading to the published copy
	// when the CMS cannot serve one.
	GetCourseBySlug(ctx context.Context, caller domain.Caller, slug string, preview bool) (*domain.Course, error)

	// UpsertCourse creates or updates a catalogue entry by slug.
	UpsertCourse(ctx context.Context, caller domain.Caller, req dto.UpsertCourseRequest) (*domain.Course, error)
}
