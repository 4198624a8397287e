package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portsrepo "github.com/skillgrove/skillgrove_app/internal/core/ports/repositories"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/dto"
)

// courseService implements the CourseSvcFacade interface
type courseService struct {
	BaseService
	courseRepo portsrepo.CourseRepositoryFacade
	userRepo   portsrepo.UserRepositoryFacade
	cms        portssvc.CourseCMS
}

// NewCourseService creates a new course service
func NewCourseService(courseRepo portsrepo.CourseRepositoryFacade, userRepo portsrepo.UserRepositoryFacade, cms portssvc.CourseCMS) portssvc.CourseSvcFacade {
	return &courseService{
		courseRepo: courseRepo,
		userRepo:   userRepo,
		cms:        cms,
	}
}

// ListCourses returns the published catalogue with bodies stripped; full
// content is served per course through GetCourseBySlug.
func (s *courseService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	courses, err := s.courseRepo.ListPublishedCourses(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list courses")
		return nil, err
	}
	if courses == nil {
		return []domain.Course{}, nil
	}
	for i := range courses {
		courses[i].Body = ""
	}
	return courses, nil
}

// GetCourseBySlug serves one course. Preview (admins only) reads the CMS
// draft first and degrades to the published copy when the CMS has no draft or
// is unreachable. Course content requires an entitled caller.
func (s *courseService) GetCourseBySlug(ctx context.Context, caller domain.Caller, slug string, preview bool) (*domain.Course, error) {
	if preview {
		if !caller.IsAdmin() {
			return nil, apperrors.NewForbiddenError("preview requires a platform admin")
		}
		draft, err := s.cms.FetchDraftCourse(ctx, slug)
		if err == nil {
			return draft, nil
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "No draft in CMS, serving published copy", slog.String("slug", slug))
		} else {
			s.LogWarn(ctx, "CMS draft fetch failed, serving published copy",
				slog.String("slug", slug),
				slog.String("error", err.Error()))
		}
	}

	if err := s.ensureEntitled(ctx, caller); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.FindCourseBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find course", slog.String("slug", slug))
		}
		return nil, err
	}
	if !course.IsPublished && !caller.IsAdmin() {
		// Unpublished rows read as missing outside preview.
		return nil, apperrors.ErrNotFound
	}
	return course, nil
}

// ensureEntitled checks that the caller may read course content. Business
// owners and staff are covered by their business; individuals need a
// purchased package.
func (s *courseService) ensureEntitled(ctx context.Context, caller domain.Caller) error {
	switch caller.Role {
	case domain.RoleAdmin, domain.RoleBusiness, domain.RoleStaff:
		return nil
	}
	user, err := s.userRepo.FindUserByID(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if !user.HasPaid {
		return apperrors.NewForbiddenError("purchase a course package to access course content")
	}
	return nil
}

// UpsertCourse creates or replaces a catalogue entry by slug.
func (s *courseService) UpsertCourse(ctx context.Context, caller domain.Caller, req dto.UpsertCourseRequest) (*domain.Course, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only platform admins manage the catalogue")
	}

	now := time.Now()
	course := domain.Course{
		CourseID:    uuid.NewString(),
		Slug:        strings.ToLower(strings.TrimSpace(req.Slug)),
		Title:       req.Title,
		Summary:     req.Summary,
		Body:        req.Body,
		IsPublished: req.IsPublished,
		SortOrder:   req.SortOrder,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	saved, err := s.courseRepo.UpsertCourse(ctx, course)
	if err != nil {
		s.LogError(ctx, err, "Failed to upsert course", slog.String("slug", course.Slug))
		return nil, err
	}

	s.LogInfo(ctx, "Course upserted",
		slog.String("slug", saved.Slug),
		slog.Bool("published", saved.IsPublished))
	return saved, nil
}
