package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/pkg/jwt"
)

// UserHandler handles tokens, accounts, roles and the dashboard menu
type UserHandler struct {
	jwtService     *jwt.Service
	userRepository *database.UserRepository
	roleCache      *services.RoleCache
	menuService    *services.MenuService
	logger         *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	jwtService *jwt.Service,
	userRepository *database.UserRepository,
	roleCache *services.RoleCache,
	menuService *services.MenuService,
	logger *logrus.Logger,
) *UserHandler {
	return &UserHandler{
		jwtService:     jwtService,
		userRepository: userRepository,
		roleCache:      roleCache,
		menuService:    menuService,
		logger:         logger,
	}
}

// IssueToken handles POST /jwt.
// Unknown emails get a guest token; PUT /user registers them.
func (h *UserHandler) IssueToken(c *gin.Context) {
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	h.issueTokens(c, req.Email)
}

// RefreshToken handles POST /jwt/refresh. The role is read again so a
// promotion shows up in the new access token.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		h.logger.WithError(err).Warn("Refresh token rejected")
		respondError(c, http.StatusUnauthorized, "invalid_token", "Invalid or expired refresh token", "INVALID_REFRESH_TOKEN")
		return
	}
	h.issueTokens(c, claims.Email)
}

func (h *UserHandler) issueTokens(c *gin.Context, email string) {
	userID := uuid.Nil
	role := models.RoleGuest
	user, err := h.userRepository.GetByEmail(email)
	switch {
	case err == nil:
		userID, role = user.ID, user.Role
	case !errors.Is(err, database.ErrNotFound):
		h.logger.WithField("email", email).WithError(err).Error("Failed to load user for token")
		respondInternal(c, "Failed to issue token")
		return
	}

	access, err := h.jwtService.GenerateAccessToken(userID, email, role)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign access token")
		respondInternal(c, "Failed to issue token")
		return
	}
	refresh, err := h.jwtService.GenerateRefreshToken(userID, email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign refresh token")
		respondInternal(c, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{
		Token:        access,
		RefreshToken: refresh,
		Role:         role,
		ExpiresIn:    int64(h.jwtService.AccessTokenExpiry().Seconds()),
	})
}

// SaveUser handles PUT /user
func (h *UserHandler) SaveUser(c *gin.Context) {
	var req models.SaveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	resp, err := h.userRepository.Save(req)
	if err != nil {
		h.logger.WithField("email", req.Email).WithError(err).Error("Failed to save user")
		respondInternal(c, "Failed to save user")
		return
	}

	if resp.ModifiedCount > 0 {
		h.logger.WithField("email", req.Email).Info("Host request submitted")
	}
	c.JSON(http.StatusOK, resp)
}

// GetRole handles GET /user/role/:email
func (h *UserHandler) GetRole(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}
	email := c.Param("email")
	if !ownsEmail(userCtx, email) {
		respondForbidden(c)
		return
	}

	role, err := h.roleCache.Role(c.Request.Context(), email)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "User")
		return
	}
	if err != nil {
		h.logger.WithField("email", email).WithError(err).Error("Failed to resolve role")
		respondInternal(c, "Failed to resolve role")
		return
	}

	c.JSON(http.StatusOK, models.RoleResponse{Role: role})
}

// Menu handles GET /dashboard/menu
func (h *UserHandler) Menu(c *gin.Context) {
	userCtx, ok := caller(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.MenuResponse{
		Role:  userCtx.Role,
		Items: h.menuService.ItemsFor(userCtx.Role),
	})
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepository.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list users")
		respondInternal(c, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser handles PATCH /users/update/:email
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if !models.ValidRole(req.Role) {
		respondError(c, http.StatusBadRequest, "validation_error", "Unknown role: "+req.Role, "INVALID_ROLE")
		return
	}

	email := c.Param("email")
	err := h.userRepository.UpdateRole(email, req.Role, req.Status)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "User")
		return
	}
	if err != nil {
		h.logger.WithField("email", email).WithError(err).Error("Failed to update user")
		respondInternal(c, "Failed to update user")
		return
	}

	h.roleCache.Invalidate(c.Request.Context(), email)
	h.logger.WithFields(logrus.Fields{"email": email, "role": req.Role}).Info("User role updated")

	c.JSON(http.StatusOK, models.SaveUserResponse{ModifiedCount: 1})
}
