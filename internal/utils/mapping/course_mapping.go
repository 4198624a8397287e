package mapping

import (
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	"github.com/skillgrove/skillgrove_app/internal/models"
)

// ToModelCourse converts a domain Course to a model Course
func ToModelCourse(d domain.Course) models.Course {
	return models.Course{
		CourseID:    d.CourseID,
		Slug:        d.Slug,
		Title:       d.Title,
		Summary:     d.Summary,
		Body:        d.Body,
		IsPublished: d.IsPublished,
		SortOrder:   d.SortOrder,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCourse converts a model Course to a domain Course
func ToDomainCourse(m models.Course) domain.Course {
	return domain.Course{
		CourseID:    m.CourseID,
		Slug:        m.Slug,
		Title:       m.Title,
		Summary:     m.Summary,
		Body:        m.Body,
		IsPublished: m.IsPublished,
		SortOrder:   m.SortOrder,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCourseSlice converts a slice of model Courses to domain Courses
func ToDomainCourseSlice(ms []models.Course) []domain.Course {
	ds := make([]domain.Course, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCourse(m)
	}
	return ds
}
