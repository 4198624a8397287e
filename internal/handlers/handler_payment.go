package handlers

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/dto"
	"github.com/skillgrove/skillgrove_app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// paymentHandler handles HTTP requests for payment history and checkouts.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: ps,
	}
}

// registerPaymentRoutes registers routes for payment history and checkout
// session creation.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := rg.Group("/payments")
	{
		payments.GET("", h.listPayments)
		payments.GET("/export", h.exportPayments)
	}

	checkout := rg.Group("/checkout")
	{
		checkout.POST("/package", h.createPackageCheckout)
	}
}

// listPayments godoc
// @Summary List payment history
// @Description Lists completed payments visible to the caller. Admins see everything plus the distinct payer list and may filter by purpose or payer email; business owners see their business; individuals see their own purchases.
// @Tags payments
// @Produce  json
// @Param   purpose query string false "Filter by purpose (admins)" Enums(PACKAGE, STAFF_SEAT)
// @Param   payerEmail query string false "Filter by payer email (admins)"
// @Success 200 {object} dto.PaymentHistoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Staff accounts cannot view billing"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	history, err := h.paymentService.ListPayments(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to list payments")
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentHistoryResponse(history))
}

// exportPayments godoc
// @Summary Export payment history as CSV
// @Description Exports the same payment listing the caller would see, one row per payment, as a CSV download.
// @Tags payments
// @Produce  text/csv
// @Param   purpose query string false "Filter by purpose (admins)" Enums(PACKAGE, STAFF_SEAT)
// @Param   payerEmail query string false "Filter by payer email (admins)"
// @Success 200 {string} string "CSV payload"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments/export [get]
func (h *paymentHandler) exportPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	history, err := h.paymentService.ListPayments(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to export payments")
		return
	}

	filename := "payments-" + time.Now().Format("2006-01-02") + ".csv"
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	header := []string{"payment_id", "completed_at", "payer_email", "payer_name", "beneficiary_email", "beneficiary_name", "purpose", "description", "amount", "currency", "status"}
	if err := w.Write(header); err != nil {
		logger.Error("Failed to write CSV header", slog.String("error", err.Error()))
		return
	}
	for i := range history.Payments {
		p := &history.Payments[i]
		completedAt := ""
		if p.CompletedAt != nil {
			completedAt = p.CompletedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			p.PaymentID,
			completedAt,
			p.PayerEmail,
			p.PayerName,
			p.BeneficiaryEmail,
			p.BeneficiaryName,
			string(p.Purpose),
			p.Description,
			p.Amount.StringFixed(2),
			p.Currency,
			string(p.Status),
		}
		if err := w.Write(row); err != nil {
			logger.Error("Failed to write CSV row", slog.String("error", err.Error()))
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logger.Error("Failed to flush CSV export", slog.String("error", err.Error()))
	}
}

// createPackageCheckout godoc
// @Summary Start a course package checkout
// @Description Creates a hosted checkout session for the caller buying a BASIC or PREMIUM course package for themselves. Individual accounts only.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   checkout body dto.PackageCheckoutRequest true "Package tier"
// @Success 200 {object} dto.CheckoutSessionResponse
// @Failure 400 {object} ErrorResponse "Unknown package"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Only individual accounts purchase packages"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /checkout/package [post]
func (h *paymentHandler) createPackageCheckout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PackageCheckoutRequest
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

	session, err := h.paymentService.CreatePackageCheckout(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to create checkout session")
		return
	}

	logger.Info("Package checkout session created",
		slog.String("session_id", session.SessionID),
		slog.String("package", req.Package),
	)
	c.JSON(http.StatusOK, dto.ToCheckoutSessionResponse(session))
}
