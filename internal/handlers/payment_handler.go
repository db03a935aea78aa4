package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// PaymentHandler handles payment intent creation
type PaymentHandler struct {
	paymentIntentService *services.PaymentIntentService
	logger               *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentIntentService *services.PaymentIntentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{paymentIntentService: paymentIntentService, logger: logger}
}

// CreatePaymentIntent handles POST /create-payment-intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}

	var req models.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	secret, err := h.paymentIntentService.Create(c.Request.Context(), req.Price, userCtx.Email, requestMeta(c))
	switch {
	case errors.Is(err, services.ErrPriceBelowMinimum):
		respondError(c, http.StatusBadRequest, "validation_error", "Price is below the minimum charge", "PRICE_BELOW_MINIMUM")
		return
	case errors.Is(err, services.ErrPaymentsDisabled):
		respondError(c, http.StatusServiceUnavailable, "payments_unavailable", "Payments are not configured", "PAYMENTS_DISABLED")
		return
	case err != nil:
		respondError(c, http.StatusBadGateway, "payment_provider_error", "Could not create payment intent", "PAYMENT_INTENT_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.CreatePaymentIntentResponse{ClientSecret: secret})
}
