package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/models"
)

// RoomHandler handles listing endpoints
type RoomHandler struct {
	roomRepository *database.RoomRepository
	logger         *logrus.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomRepository *database.RoomRepository, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{roomRepository: roomRepository, logger: logger}
}

func validStay(req models.RoomRequest) bool {
	return !req.To.Before(req.From)
}

// ListRooms handles GET /rooms?category=
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomRepository.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list rooms")
		respondInternal(c, "Failed to list rooms")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom handles GET /room/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	room, err := h.roomRepository.GetByID(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "Room")
		return
	}
	if err != nil {
		h.logger.WithField("room_id", id).WithError(err).Error("Failed to fetch room")
		respondInternal(c, "Failed to fetch room")
		return
	}
	c.JSON(http.StatusOK, room)
}

// CreateRoom handles POST /room. The caller becomes the host.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}

	var req models.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if !validStay(req) {
		respondError(c, http.StatusBadRequest, "validation_error", "Availability ends before it starts", "INVALID_DATES")
		return
	}

	room := req.ToRoom(models.RoomHost{Name: req.Host.Name, Image: req.Host.Image, Email: userCtx.Email})
	if err := h.roomRepository.Create(c.Request.Context(), room); err != nil {
		h.logger.WithField("host", userCtx.Email).WithError(err).Error("Failed to create room")
		respondInternal(c, "Failed to create room")
		return
	}

	h.logger.WithFields(logrus.Fields{"room_id": room.ID, "host": userCtx.Email}).Info("Room listed")
	c.JSON(http.StatusCreated, room)
}

// ListByHost handles GET /my-listings/:email
func (h *RoomHandler) ListByHost(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}
	email := c.Param("email")
	if !ownsEmail(userCtx, email) {
		respondForbidden(c)
		return
	}

	rooms, err := h.roomRepository.ListByHost(c.Request.Context(), email)
	if err != nil {
		h.logger.WithField("host", email).WithError(err).Error("Failed to list host rooms")
		respondInternal(c, "Failed to list rooms")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// UpdateRoom handles PUT /room/update/:id. Only the host may edit.
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req models.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if !validStay(req) {
		respondError(c, http.StatusBadRequest, "validation_error", "Availability ends before it starts", "INVALID_DATES")
		return
	}

	room, err := h.roomRepository.Update(c.Request.Context(), id, userCtx.Email, req)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "Room")
		return
	}
	if err != nil {
		h.logger.WithField("room_id", id).WithError(err).Error("Failed to update room")
		respondInternal(c, "Failed to update room")
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /room/:id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	err := h.roomRepository.Delete(c.Request.Context(), id, userCtx.Email)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "Room")
		return
	}
	if err != nil {
		h.logger.WithField("room_id", id).WithError(err).Error("Failed to delete room")
		respondInternal(c, "Failed to delete room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": 1})
}

// SetStatus handles PATCH /room/status/:id
func (h *RoomHandler) SetStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req models.RoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	err := h.roomRepository.SetBooked(c.Request.Context(), id, *req.Status)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "Room")
		return
	}
	if err != nil {
		h.logger.WithField("room_id", id).WithError(err).Error("Failed to update room status")
		respondInternal(c, "Failed to update room status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"modifiedCount": 1})
}
