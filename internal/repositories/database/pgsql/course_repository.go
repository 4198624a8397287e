package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portsrepo "github.com/skillgrove/skillgrove_app/internal/core/ports/repositories"
	"github.com/skillgrove/skillgrove_app/internal/models"
	"github.com/skillgrove/skillgrove_app/internal/utils/mapping"
)

type PgxCourseRepository struct {
	BaseRepository
}

// newPgxCourseRepository creates a new repository for course catalogue data.
func newPgxCourseRepository(pool *pgxpool.Pool) portsrepo.CourseRepositoryFacade {
	return &PgxCourseRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxCourseRepository implements portsrepo.CourseRepositoryFacade
var _ portsrepo.CourseRepositoryFacade = (*PgxCourseRepository)(nil)

var FULL_COURSE_SELECT_QUERY = `
SELECT
	c.course_id, c.slug, c.title, c.summary, c.body, c.is_published, c.sort_order,
	c.created_at, c.created_by, c.last_updated_at, c.last_updated_by
FROM courses c
`

// getCourses runs the full select with the given filter suffix and maps rows
// to domain courses.
func (r *PgxCourseRepository) getCourses(ctx context.Context, filterQuery string, args ...any) ([]domain.Course, error) {
	query := FULL_COURSE_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query courses", err)
	}
	defer rows.Close()
	modelCourses, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Course])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Course{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect course rows", err)
	}

	return mapping.ToDomainCourseSlice(modelCourses), nil
}

func (r *PgxCourseRepository) ListPublishedCourses(ctx context.Context) ([]domain.Course, error) {
	filter := `WHERE c.is_published = TRUE ORDER BY c.sort_order ASC, c.title ASC`
	return r.getCourses(ctx, filter)
}

func (r *PgxCourseRepository) FindCourseBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	filter := `WHERE c.slug = $1`
	courses, err := r.getCourses(ctx, filter, slug)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &courses[0], nil
}

// UpsertCourse writes the catalogue entry keyed by slug and returns the
// stored row.
func (r *PgxCourseRepository) UpsertCourse(ctx context.Context, course domain.Course) (*domain.Course, error) {
	modelCourse := mapping.ToModelCourse(course)
	query := `
		INSERT INTO courses (
			course_id, slug, title, summary, body, is_published, sort_order,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			body = EXCLUDED.body,
			is_published = EXCLUDED.is_published,
			sort_order = EXCLUDED.sort_order,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by
		RETURNING course_id;
	`
	var storedID string
	err := r.Pool.QueryRow(ctx, query,
		modelCourse.CourseID,
		modelCourse.Slug,
		modelCourse.Title,
		modelCourse.Summary,
		modelCourse.Body,
		modelCourse.IsPublished,
		modelCourse.SortOrder,
		modelCourse.CreatedAt,
		modelCourse.CreatedBy,
		modelCourse.LastUpdatedAt,
		modelCourse.LastUpdatedBy,
	).Scan(&storedID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to upsert course "+course.Slug, err)
	}

	filter := `WHERE c.course_id = $1`
	courses, err := r.getCourses(ctx, filter, storedID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &courses[0], nil
}
