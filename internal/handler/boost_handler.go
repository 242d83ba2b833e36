package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sublethub/sublethub-backend/internal/common"
	"github.com/sublethub/sublethub-backend/internal/middleware"
	"github.com/sublethub/sublethub-backend/internal/service"
)

// maxWebhookBody caps webhook payload reads at 64KB
const maxWebhookBody = 64 << 10

// BoostHandler handles boost payment HTTP requests
type BoostHandler struct {
	service service.BoostService
}

// NewBoostHandler creates a new BoostHandler
func NewBoostHandler(service service.BoostService) *BoostHandler {
	return &BoostHandler{service: service}
}

// RequestBoost handles POST /listings/:id/boost
func (h *BoostHandler) RequestBoost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	checkout, err := h.service.RequestBoost(c.Request.Context(), userID, listingID)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to start boost checkout", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: checkout})
}

// ConfirmSuccess handles GET /boost/success?session_id=...
// The payment gateway redirects the buyer here after checkout. The
// webhook may have confirmed the session already; either way the
// response reflects the final payment state.
func (h *BoostHandler) ConfirmSuccess(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing session_id parameter", nil)
		return
	}

	payment, err := h.service.ConfirmCheckout(c.Request.Context(), sessionID)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to confirm payment", err)
		return
	}

	middleware.CountBoostPayment("redirect")
	c.JSON(http.StatusOK, common.APIResponse{Data: payment})
}

// Webhook handles POST /webhooks/stripe
func (h *BoostHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to read payload", err)
		return
	}

	err = h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, common.ErrInvalidSignature) || errors.Is(err, common.ErrValidation) {
			common.ErrorResponse(c, http.StatusBadRequest, "Webhook rejected", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Webhook processing failed", err)
		return
	}

	middleware.CountBoostPayment("webhook")
	c.JSON(http.StatusOK, gin.H{"received": true})
}
