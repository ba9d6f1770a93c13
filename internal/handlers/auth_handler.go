package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/middleware"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/utils"
)

// AuthHandler handles passenger authentication HTTP requests
type AuthHandler struct {
	authService  *services.PassengerAuthService
	rateLimiter  *services.RateLimitService
	auditService *services.AuditService
	drafts       *services.DraftPersistenceService
	logger       *logrus.Logger
	loginURL     string
}

// NewAuthHandler creates a new passenger auth handler
func NewAuthHandler(
	authService *services.PassengerAuthService,
	rateLimiter *services.RateLimitService,
	auditService *services.AuditService,
	drafts *services.DraftPersistenceService,
	loginURL string,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		rateLimiter:  rateLimiter,
		auditService: auditService,
		drafts:       drafts,
		logger:       logger,
		loginURL:     loginURL,
	}
}

func clientInfo(c *gin.Context) services.ClientInfo {
	userAgent := utils.GetUserAgent(c)
	return services.ClientInfo{
		IPAddress:  utils.GetRealIP(c),
		UserAgent:  userAgent,
		DeviceType: utils.DeviceType(userAgent),
	}
}

// Register handles passenger sign up
// @Summary Register passenger
// @Description Create a passenger account and return tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Account details"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	client := clientInfo(c)
	response, err := h.authService.Register(c.Request.Context(), req, client)
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}

	response.RedirectURL = h.resumeURL(c)
	h.safeLogPassengerLogin(c, response.User, "passenger_register", client)

	c.JSON(http.StatusCreated, response)
}

// Login handles passenger login
// @Summary Passenger login
// @Description Authenticate with email and password. When the booking session has a saved draft the response carries its return URL.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	client := clientInfo(c)

	if err := h.rateLimiter.CheckLoginRateLimit(ctx, req.Email, client.IPAddress); err != nil {
		var limited *services.RateLimitError
		if !errors.As(err, &limited) {
			h.logger.WithError(err).Error("Failed to check login rate limit")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "rate_limit_check_failed",
				Message: "Failed to check rate limit",
			})
			return
		}
		respondError(c, h.logger, err, h.loginURL)
		return
	}

	response, err := h.authService.Login(ctx, req.Email, req.Password, client)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			if recErr := h.rateLimiter.RecordFailedLogin(ctx, req.Email, client.IPAddress); recErr != nil {
				h.logger.WithError(recErr).Warn("Failed to record failed login")
			}
		}
		h.logger.WithFields(logrus.Fields{
			"email": req.Email,
			"ip":    client.IPAddress,
			"error": err.Error(),
		}).Warn("Passenger login failed")
		respondError(c, h.logger, err, h.loginURL)
		return
	}

	if err := h.rateLimiter.ClearFailures(ctx, req.Email); err != nil {
		h.logger.WithError(err).Warn("Failed to clear login failures")
	}

	response.RedirectURL = h.resumeURL(c)
	h.safeLogPassengerLogin(c, response.User, "passenger_login", client)

	c.JSON(http.StatusOK, response)
}

// Refresh issues a new access token
// @Summary Refresh passenger token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	response, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Logout revokes the refresh token
// @Summary Passenger logout
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh token"
// @Success 200 {object} SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.WithError(err).Warn("Passenger logout failed")
	}

	if userCtx, ok := middleware.GetUserContext(c); ok {
		client := clientInfo(c)
		h.safeLogLogout(c, userCtx.UserID, "user", client)
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out successfully"})
}

// GetProfile returns the signed-in passenger
// @Summary Get passenger profile
// @Tags Passenger
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /user/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	user, err := h.authService.Profile(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}
	c.JSON(http.StatusOK, user)
}

// resumeURL returns where a guest was headed before being sent to log in
func (h *AuthHandler) resumeURL(c *gin.Context) string {
	key := middleware.SessionKey(c)
	if key == "" || h.drafts == nil {
		return ""
	}
	snapshot, err := h.drafts.Resume(c.Request.Context(), key)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read booking draft after login")
		return ""
	}
	if snapshot == nil {
		return ""
	}
	return snapshot.ReturnURL
}
