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

// staffHandler handles HTTP requests for staff seat management.
type staffHandler struct {
	staffService portssvc.StaffSvcFacade
}

// newStaffHandler creates a new staffHandler.
func newStaffHandler(ss portssvc.StaffSvcFacade) *staffHandler {
	return &staffHandler{
		staffService: ss,
	}
}

// registerStaffRoutes registers routes for staff management.
func registerStaffRoutes(rg *gin.RouterGroup, staffService portssvc.StaffSvcFacade) {
	h := newStaffHandler(staffService)

	staff := rg.Group("/staff")
	{
		staff.POST("", h.provisionStaff)
		staff.GET("", h.listStaff)
		staff.GET("/eligibility", h.seatEligibility)
		staff.DELETE("/:user_id", h.deactivateStaff)
	}
}

// provisionStaff godoc
// @Summary Provision a staff account
// @Description Creates a staff account under the caller's business. When the business is out of free seats the account stays inactive and the response carries a checkout URL for the seat payment.
// @Tags staff
// @Accept  json
// @Produce  json
// @Param   staff body dto.ProvisionStaffRequest true "Staff details"
// @Success 201 {object} dto.ProvisionStaffResponse
// @Failure 400 {object} ErrorResponse "Invalid input, weak password, or email outside the business domain"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Caller may not manage staff for this business"
// @Failure 409 {object} ErrorResponse "An active account with this email already exists"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /staff [post]
func (h *staffHandler) provisionStaff(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ProvisionStaffRequest
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

	result, err := h.staffService.ProvisionStaff(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to provision staff account")
		return
	}

	logger.Info("Staff account provisioned",
		slog.String("staff_user_id", result.User.UserID),
		slog.Bool("requires_payment", result.RequiresPayment),
	)
	c.JSON(http.StatusCreated, dto.ToProvisionStaffResponse(result))
}

// listStaff godoc
// @Summary List the business staff roster
// @Description Lists all staff accounts of the caller's business, inactive ones included. Platform admins pass ?businessID= to pick the business.
// @Tags staff
// @Produce  json
// @Param   businessID query string false "Business ID (platform admins only)"
// @Success 200 {object} dto.ListStaffResponse
// @Failure 400 {object} ErrorResponse "Admin call without businessID"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /staff [get]
func (h *staffHandler) listStaff(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	staff, err := h.staffService.ListStaff(c.Request.Context(), caller, c.Query("businessID"))
	if err != nil {
		respondError(c, err, "Failed to list staff")
		return
	}

	c.JSON(http.StatusOK, dto.ToListStaffResponse(staff))
}

// seatEligibility godoc
// @Summary Check whether the next staff seat is billable
// @Description Reports the current seat usage of the caller's business and whether the next seat requires payment, with the seat price.
// @Tags staff
// @Produce  json
// @Success 200 {object} dto.SeatEligibilityResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /staff/eligibility [get]
func (h *staffHandler) seatEligibility(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	eligibility, err := h.staffService.SeatEligibility(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err, "Failed to check seat eligibility")
		return
	}

	c.JSON(http.StatusOK, dto.ToSeatEligibilityResponse(eligibility))
}

// deactivateStaff godoc
// @Summary Deactivate a staff account
// @Description Disables a staff account and frees its seat. The account and its payment history are kept.
// @Tags staff
// @Produce  json
// @Param   user_id path string true "Staff user ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Target is not a staff account or is the caller"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Staff account not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /staff/{user_id} [delete]
func (h *staffHandler) deactivateStaff(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	staffUserID := c.Param("user_id")

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.staffService.DeactivateStaff(c.Request.Context(), caller, staffUserID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Staff account not found"})
			return
		}
		respondError(c, err, "Failed to deactivate staff account")
		return
	}

	logger.Info("Staff account deactivated", slog.String("staff_user_id", staffUserID))
	c.Status(http.StatusNoContent)
}
