package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/internal/utils"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func respondError(c *gin.Context, status int, errKey, message, code string) {
	c.JSON(status, ErrorResponse{Error: errKey, Message: message, Code: code})
}

func respondValidation(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "validation_error", err.Error(), "INVALID_REQUEST")
}

func respondNotFound(c *gin.Context, what string) {
	respondError(c, http.StatusNotFound, "not_found", what+" not found", "NOT_FOUND")
}

func respondInternal(c *gin.Context, message string) {
	respondError(c, http.StatusInternalServerError, "internal_error", message, "INTERNAL_ERROR")
}

func respondForbidden(c *gin.Context) {
	respondError(c, http.StatusForbidden, "forbidden", "You don't have permission to access this resource", "INSUFFICIENT_PERMISSIONS")
}

// caller returns the authenticated user or writes a 401
func caller(c *gin.Context) (middleware.UserContext, bool) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Authentication required", "MISSING_USER_CONTEXT")
	}
	return userCtx, ok
}

// ownsEmail reports whether the caller may act on data belonging to email
func ownsEmail(userCtx middleware.UserContext, email string) bool {
	return userCtx.Email == email || userCtx.Role == models.RoleAdmin
}

func idParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_id", "Invalid "+name, "INVALID_ID")
		return uuid.Nil, false
	}
	return id, true
}

func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: utils.ClientIP(c),
		UserAgent: utils.UserAgent(c),
	}
}
