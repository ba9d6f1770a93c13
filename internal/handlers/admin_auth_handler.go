package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/middleware"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
)

// AdminAuthHandler handles admin authentication HTTP requests
type AdminAuthHandler struct {
	adminAuthService *services.AdminAuthService
	rateLimiter      *services.RateLimitService
	auditService     *services.AuditService
	logger           *logrus.Logger
}

// NewAdminAuthHandler creates a new admin auth handler
func NewAdminAuthHandler(adminAuthService *services.AdminAuthService, rateLimiter *services.RateLimitService, auditService *services.AuditService, logger *logrus.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{
		adminAuthService: adminAuthService,
		rateLimiter:      rateLimiter,
		auditService:     auditService,
		logger:           logger,
	}
}

// Login handles admin login requests
// @Summary Admin login
// @Description Authenticate admin user and return access and refresh tokens
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Param loginRequest body models.AdminLoginRequest true "Login credentials"
// @Success 200 {object} models.AdminLoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /admin/auth/login [post]
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	client := clientInfo(c)

	if err := h.rateLimiter.CheckLoginRateLimit(ctx, req.Email, client.IPAddress); err != nil {
		var limited *services.RateLimitError
		if errors.As(err, &limited) {
			h.safeLogAdminLogin(c, nil, req.Email, false, "rate_limited")
		}
		respondError(c, h.logger, err, "")
		return
	}

	response, err := h.adminAuthService.Login(ctx, req.Email, req.Password, client)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"email": req.Email,
			"error": err.Error(),
		}).Warn("Admin login failed")

		if errors.Is(err, services.ErrInvalidCredentials) {
			if rerr := h.rateLimiter.RecordFailedLogin(ctx, req.Email, client.IPAddress); rerr != nil {
				h.logger.WithError(rerr).Warn("Failed to record failed admin login")
			}
		}
		h.safeLogAdminLogin(c, nil, req.Email, false, err.Error())
		respondError(c, h.logger, err, "")
		return
	}

	if err := h.rateLimiter.ClearFailures(ctx, req.Email); err != nil {
		h.logger.WithError(err).Warn("Failed to clear admin login failures")
	}
	h.safeLogAdminLogin(c, &response.AdminUser.ID, response.AdminUser.Email, true, "")

	h.logger.WithFields(logrus.Fields{
		"admin_id": response.AdminUser.ID,
		"email":    response.AdminUser.Email,
	}).Info("Admin login successful")

	c.JSON(http.StatusOK, response)
}

// RefreshToken handles token refresh requests
// @Summary Refresh access token
// @Description Generate a new access token using a refresh token
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Param refreshRequest body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.AdminLoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /admin/auth/refresh [post]
func (h *AdminAuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	response, err := h.adminAuthService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.logger.WithError(err).Warn("Token refresh failed")
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Logout handles admin logout requests
// @Summary Admin logout
// @Description Revoke the refresh token
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Param refreshRequest body models.RefreshRequest true "Refresh token"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/auth/logout [post]
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.adminAuthService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.WithError(err).Warn("Logout failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "logout_failed", Message: err.Error()})
		return
	}

	if user, ok := middleware.GetUserContext(c); ok && h.auditService != nil {
		client := clientInfo(c)
		logAuditError("LogLogout", h.auditService.LogLogout(c.Request.Context(), user.UserID, "admin", client.IPAddress, client.UserAgent))
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out successfully"})
}

// GetProfile retrieves the current admin's profile
// @Summary Get admin profile
// @Description Get the authenticated admin user's profile
// @Tags Admin Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AdminUser
// @Failure 401 {object} ErrorResponse
// @Router /admin/profile [get]
func (h *AdminAuthHandler) GetProfile(c *gin.Context) {
	admin, err := h.adminAuthService.GetAdminProfile(c.Request.Context(), middleware.MustGetUserContext(c).UserID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, admin)
}

// ChangePassword handles password change requests
// @Summary Change admin password
// @Description Change the authenticated admin user's password. Other sessions are signed out.
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param changePasswordRequest body models.AdminChangePasswordRequest true "Password change request"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /admin/change-password [post]
func (h *AdminAuthHandler) ChangePassword(c *gin.Context) {
	var req models.AdminChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	adminID := middleware.MustGetUserContext(c).UserID
	if err := h.adminAuthService.ChangePassword(c.Request.Context(), adminID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "admin_password_change", "admin_user", adminID.String(), nil)
	h.logger.WithField("admin_id", adminID).Info("Admin password changed")
	c.JSON(http.StatusOK, SuccessResponse{Message: "Password changed successfully"})
}

// CreateAdmin creates a new admin user (only accessible by existing admins)
// @Summary Create new admin user
// @Description Create a new admin user (requires superadmin)
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param createRequest body models.AdminCreateRequest true "Admin creation request"
// @Success 201 {object} models.AdminUser
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /admin/admins [post]
func (h *AdminAuthHandler) CreateAdmin(c *gin.Context) {
	var req models.AdminCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	creatorID := middleware.MustGetUserContext(c).UserID
	admin, err := h.adminAuthService.CreateAdmin(c.Request.Context(), req, creatorID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "admin_create", "admin_user", admin.ID.String(), map[string]interface{}{
		"email": admin.Email,
		"role":  admin.Role,
	})
	h.logger.WithFields(logrus.Fields{
		"admin_id":   admin.ID,
		"email":      admin.Email,
		"created_by": creatorID,
	}).Info("New admin user created")

	c.JSON(http.StatusCreated, admin)
}

// DeactivateAdmin disables an admin account
// @Summary Deactivate admin user
// @Tags Admin Auth
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/admins/{id}/deactivate [post]
func (h *AdminAuthHandler) DeactivateAdmin(c *gin.Context) {
	adminID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Invalid admin ID"})
		return
	}

	actingID := middleware.MustGetUserContext(c).UserID
	if err := h.adminAuthService.Deactivate(c.Request.Context(), adminID, actingID); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "admin_deactivate", "admin_user", adminID.String(), nil)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Admin deactivated"})
}

// ListAdmins retrieves all admin users
// @Summary List all admin users
// @Description Get a list of all admin users (requires admin authentication)
// @Tags Admin Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.AdminUser
// @Failure 401 {object} ErrorResponse
// @Router /admin/admins [get]
func (h *AdminAuthHandler) ListAdmins(c *gin.Context) {
	admins, err := h.adminAuthService.ListAdmins(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to retrieve admin users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "Failed to retrieve admin users"})
		return
	}

	c.JSON(http.StatusOK, admins)
}
