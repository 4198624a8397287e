package handlers

import (
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// webhookBodyLimit caps how much of a webhook delivery is read. Checkout
// session events are far below this.
const webhookBodyLimit = 65536

// webhookHandler consumes payment provider webhook deliveries.
type webhookHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newWebhookHandler creates a new webhookHandler.
func newWebhookHandler(ps portssvc.PaymentSvcFacade) *webhookHandler {
	return &webhookHandler{
		paymentService: ps,
	}
}

// registerWebhookRoutes registers the payment webhook endpoint. It sits
// outside the authenticated API group; the delivery signature is the
// authentication.
func registerWebhookRoutes(r *gin.Engine, paymentService portssvc.PaymentSvcFacade) {
	h := newWebhookHandler(paymentService)
	r.POST("/webhooks/stripe", h.handleStripeWebhook)
}

// handleStripeWebhook godoc
// @Summary Receive a Stripe webhook delivery
// @Description Verifies the delivery signature and applies completed checkout sessions. Repeated deliveries of the same session are acknowledged without effect.
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse "Invalid signature or payload"
// @Failure 500 {object} ErrorResponse "Reconciliation failed; the provider retries"
// @Router /webhooks/stripe [post]
func (h *webhookHandler) handleStripeWebhook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit))
	if err != nil {
		logger.Warn("Failed to read webhook payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read request body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		logger.Warn("Webhook delivery without signature header")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing Stripe-Signature header"})
		return
	}

	// A non-2xx response makes the provider redeliver, so only verification
	// failures answer 400; reconciliation failures answer 500 and retry.
	if err := h.paymentService.ProcessWebhook(c.Request.Context(), payload, signature); err != nil {
		logger.Error("Webhook processing failed", slog.String("error", err.Error()))
		respondError(c, err, "Failed to process webhook")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
