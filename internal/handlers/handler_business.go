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

// businessHandler handles HTTP requests related to business customers.
type businessHandler struct {
	businessService portssvc.BusinessSvcFacade
}

// newBusinessHandler creates a new businessHandler.
func newBusinessHandler(bs portssvc.BusinessSvcFacade) *businessHandler {
	return &businessHandler{
		businessService: bs,
	}
}

// registerBusinessRoutes registers routes for business administration.
func registerBusinessRoutes(rg *gin.RouterGroup, businessService portssvc.BusinessSvcFacade) {
	h := newBusinessHandler(businessService)

	businesses := rg.Group("/businesses")
	{
		businesses.POST("", h.createBusiness)
		businesses.GET("", h.listBusinesses)
		businesses.GET("/:business_id", h.getBusiness)
	}
}

// createBusiness godoc
// @Summary Onboard a new business customer
// @Description Creates a business together with its owner account. The owner receives a welcome email with a temporary password.
// @Tags businesses
// @Accept  json
// @Produce  json
// @Param   business body dto.CreateBusinessRequest true "Business and owner details"
// @Success 201 {object} dto.CreateBusinessResponse
// @Failure 400 {object} ErrorResponse "Invalid input or public mailbox domain"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Caller is not a platform admin"
// @Failure 409 {object} ErrorResponse "Owner email or business already exists"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /businesses [post]
func (h *businessHandler) createBusiness(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateBusinessRequest
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

	business, owner, err := h.businessService.CreateBusiness(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to create business")
		return
	}

	logger.Info("Business created", slog.String("business_id", business.BusinessID), slog.String("owner_user_id", owner.UserID))
	c.JSON(http.StatusCreated, dto.CreateBusinessResponse{
		Business: dto.ToBusinessResponse(business),
		Owner:    dto.ToUserResponse(owner),
	})
}

// listBusinesses godoc
// @Summary List all businesses
// @Description Retrieves every business, newest first. Platform admins only.
// @Tags businesses
// @Produce  json
// @Success 200 {object} dto.ListBusinessesResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /businesses [get]
func (h *businessHandler) listBusinesses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	if !caller.IsAdmin() {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only platform admins may list businesses"})
		return
	}

	businesses, err := h.businessService.ListBusinesses(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list businesses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list businesses"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListBusinessesResponse(businesses))
}

// getBusiness godoc
// @Summary Get a business by ID
// @Description Retrieves one business. Platform admins only.
// @Tags businesses
// @Produce  json
// @Param   business_id path string true "Business ID"
// @Success 200 {object} dto.BusinessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Business not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /businesses/{business_id} [get]
func (h *businessHandler) getBusiness(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	businessID := c.Param("business_id")

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	if !caller.IsAdmin() {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only platform admins may view businesses"})
		return
	}

	business, err := h.businessService.GetBusinessByID(c.Request.Context(), businessID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Business not found"})
			return
		}
		logger.Error("Failed to get business", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve business"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBusinessResponse(business))
}
