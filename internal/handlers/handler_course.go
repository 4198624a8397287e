package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/dto"
	"github.com/skillgrove/skillgrove_app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// courseHandler handles HTTP requests for the course catalogue.
type courseHandler struct {
	courseService portssvc.CourseSvcFacade
}

// newCourseHandler creates a new courseHandler.
func newCourseHandler(cs portssvc.CourseSvcFacade) *courseHandler {
	return &courseHandler{
		courseService: cs,
	}
}

// registerCourseRoutes registers routes for the course catalogue.
func registerCourseRoutes(rg *gin.RouterGroup, courseService portssvc.CourseSvcFacade) {
	h := newCourseHandler(courseService)

	courses := rg.Group("/courses")
	{
		courses.GET("", h.listCourses)
		courses.GET("/:slug", h.getCourse)
		courses.POST("", h.upsertCourse)
	}
}

// listCourses godoc
// @Summary List published courses
// @Description Lists the published course catalogue without course bodies. Any authenticated account may call this.
// @Tags courses
// @Produce  json
// @Success 200 {object} dto.ListCoursesResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /courses [get]
func (h *courseHandler) listCourses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	courses, err := h.courseService.ListCourses(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list courses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list courses"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListCoursesResponse(courses))
}

// getCourse godoc
// @Summary Get a course with its content
// @Description Retrieves one course including the body. Course content requires an entitled caller; individuals need a purchased package. Platform admins may pass ?preview=true to read the CMS draft.
// @Tags courses
// @Produce  json
// @Param   slug path string true "Course slug"
// @Param   preview query bool false "Serve the CMS draft (platform admins only)"
// @Success 200 {object} dto.CourseResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Caller is not entitled to course content"
// @Failure 404 {object} ErrorResponse "Course not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /courses/{slug} [get]
func (h *courseHandler) getCourse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	slug := c.Param("slug")
	preview := c.Query("preview") == "true"

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	course, err := h.courseService.GetCourseBySlug(c.Request.Context(), caller, slug, preview)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Course not found"})
			return
		}
		respondError(c, err, "Failed to retrieve course")
		return
	}

	c.JSON(http.StatusOK, dto.ToCourseResponse(course))
}

// upsertCourse godoc
// @Summary Create or replace a course
// @Description Upserts a catalogue entry by slug. Platform admins only.
// @Tags courses
// @Accept  json
// @Produce  json
// @Param   course body dto.UpsertCourseRequest true "Course details"
// @Success 200 {object} dto.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Caller is not a platform admin"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /courses [post]
func (h *courseHandler) upsertCourse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpsertCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	course, err := h.courseService.UpsertCourse(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to save course")
		return
	}

	logger.Info("Course saved", slog.String("slug", course.Slug))
	c.JSON(http.StatusOK, dto.ToCourseResponse(course))
}
