package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// BookingHandler handles booking endpoints
type BookingHandler struct {
	bookingRepository *database.BookingRepository
	payments          *services.PaymentIntentService
	auditService      *services.AuditService
	logger            *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	bookingRepository *database.BookingRepository,
	payments *services.PaymentIntentService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookingRepository: bookingRepository,
		payments:          payments,
		auditService:      auditService,
		logger:            logger,
	}
}

// CreateBooking handles POST /booking.
// The transactionId must name a succeeded Stripe intent that charged the room price.
// A repeated transactionId returns the stored booking with 200 instead of 201.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if !ownsEmail(userCtx, req.GuestEmail) {
		respondForbidden(c)
		return
	}

	booking, err := req.ToBooking()
	if err != nil {
		respondValidation(c, err)
		return
	}

	intent, err := h.payments.Settled(c.Request.Context(), booking.TransactionID)
	switch {
	case errors.Is(err, services.ErrPaymentNotSettled):
		respondError(c, http.StatusPaymentRequired, "payment_required", "Payment has not succeeded", "PAYMENT_NOT_SETTLED")
		return
	case errors.Is(err, services.ErrPaymentsDisabled):
		respondError(c, http.StatusServiceUnavailable, "payments_unavailable", "Payments are not configured", "PAYMENTS_DISABLED")
		return
	case err != nil:
		h.logger.WithField("transaction_id", booking.TransactionID).WithError(err).Error("Failed to verify payment")
		respondError(c, http.StatusBadGateway, "payment_provider_error", "Could not verify payment", "PAYMENT_VERIFICATION_FAILED")
		return
	}
	if payer := intent.Metadata["user_email"]; payer != "" && payer != booking.GuestEmail {
		respondError(c, http.StatusForbidden, "forbidden", "Payment belongs to another user", "PAYMENT_OWNER_MISMATCH")
		return
	}

	stored, replayed, err := h.bookingRepository.Create(c.Request.Context(), booking, func(room *models.Room) error {
		return services.MatchesPrice(intent, room.Price)
	})
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondNotFound(c, "Room")
		return
	case errors.Is(err, database.ErrRoomUnavailable):
		respondError(c, http.StatusConflict, "conflict", "Room is already booked", "ROOM_UNAVAILABLE")
		return
	case errors.Is(err, services.ErrAmountMismatch):
		h.logger.WithFields(logrus.Fields{
			"transaction_id": booking.TransactionID,
			"amount":         intent.Amount,
		}).Warn("Charged amount does not match room price")
		respondError(c, http.StatusUnprocessableEntity, "validation_error", "Charged amount does not match the room price", "AMOUNT_MISMATCH")
		return
	case err != nil:
		h.logger.WithFields(logrus.Fields{
			"transaction_id": booking.TransactionID,
			"room_id":        booking.RoomID,
		}).WithError(err).Error("Failed to record booking")
		respondInternal(c, "Failed to record booking")
		return
	}
	if replayed && stored.GuestEmail != booking.GuestEmail {
		respondError(c, http.StatusConflict, "conflict", "Transaction is already recorded", "TRANSACTION_IN_USE")
		return
	}

	h.auditService.LogBookingRecorded(c.Request.Context(), stored, replayed, requestMeta(c))

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
		h.logger.WithField("transaction_id", stored.TransactionID).Info("Booking replayed")
	}
	c.JSON(status, stored)
}

// ListByGuest handles GET /my-bookings/:email
func (h *BookingHandler) ListByGuest(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}
	email := c.Param("email")
	if !ownsEmail(userCtx, email) {
		respondForbidden(c)
		return
	}

	bookings, err := h.bookingRepository.ListByGuest(c.Request.Context(), email)
	if err != nil {
		h.logger.WithField("guest", email).WithError(err).Error("Failed to list bookings")
		respondInternal(c, "Failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// ListByHost handles GET /manage-bookings/:email
func (h *BookingHandler) ListByHost(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}
	email := c.Param("email")
	if !ownsEmail(userCtx, email) {
		respondForbidden(c)
		return
	}

	bookings, err := h.bookingRepository.ListByHost(c.Request.Context(), email)
	if err != nil {
		h.logger.WithField("host", email).WithError(err).Error("Failed to list host bookings")
		respondInternal(c, "Failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// CancelBooking handles DELETE /booking/:id. Guest, host or admin may cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	existing, err := h.bookingRepository.GetByID(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "Booking")
		return
	}
	if err != nil {
		h.logger.WithField("booking_id", id).WithError(err).Error("Failed to fetch booking")
		respondInternal(c, "Failed to cancel booking")
		return
	}
	if !ownsEmail(userCtx, existing.GuestEmail) && userCtx.Email != existing.HostEmail {
		respondForbidden(c)
		return
	}

	deleted, err := h.bookingRepository.Delete(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "Booking")
		return
	}
	if err != nil {
		h.logger.WithField("booking_id", id).WithError(err).Error("Failed to cancel booking")
		respondInternal(c, "Failed to cancel booking")
		return
	}

	h.auditService.LogBookingCancelled(c.Request.Context(), deleted, userCtx.Email, requestMeta(c))
	c.JSON(http.StatusOK, gin.H{"deletedCount": 1})
}
