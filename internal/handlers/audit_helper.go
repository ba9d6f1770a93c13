package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/middleware"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
)

// logAuditError logs audit service errors without failing the request
func logAuditError(operation string, err error) {
	if err != nil {
		logrus.WithField("operation", operation).WithError(err).Error("AUDIT ERROR")
	}
}

// Helper functions to log audit events with error handling

func (h *AuthHandler) safeLogPassengerLogin(c *gin.Context, user *models.User, action string, client services.ClientInfo) {
	if h.auditService == nil || user == nil {
		return
	}
	err := h.auditService.LogPassengerLogin(c.Request.Context(), user.ID, user.Email, action, client.IPAddress, client.UserAgent)
	logAuditError("LogPassengerLogin", err)
}

func (h *AuthHandler) safeLogLogout(c *gin.Context, userID uuid.UUID, entityType string, client services.ClientInfo) {
	if h.auditService == nil {
		return
	}
	logAuditError("LogLogout", h.auditService.LogLogout(c.Request.Context(), userID, entityType, client.IPAddress, client.UserAgent))
}

func (h *AdminAuthHandler) safeLogAdminLogin(c *gin.Context, adminID *uuid.UUID, email string, success bool, reason string) {
	if h.auditService == nil {
		return
	}
	client := clientInfo(c)
	err := h.auditService.LogAdminLogin(c.Request.Context(), adminID, email, client.IPAddress, client.UserAgent, success, reason)
	logAuditError("LogAdminLogin", err)
}

// safeLogAdminAction records a back office change made by the signed-in admin
func safeLogAdminAction(c *gin.Context, auditService *services.AuditService, action, entityType, entityID string, details map[string]interface{}) {
	if auditService == nil {
		return
	}
	user, ok := middleware.GetUserContext(c)
	if !ok {
		return
	}
	client := clientInfo(c)
	err := auditService.LogAdminAction(c.Request.Context(), user.UserID, action, entityType, entityID, client.IPAddress, client.UserAgent, details)
	logAuditError("LogAdminAction", err)
}

func (h *ReceiptHandler) safeLogReceiptAction(c *gin.Context, adminID uuid.UUID, action, receiptID string, result models.ReceiptActionResult) {
	if h.auditService == nil {
		return
	}
	client := clientInfo(c)
	err := h.auditService.LogReceiptAction(c.Request.Context(), adminID, action, receiptID, client.IPAddress, client.UserAgent, result)
	logAuditError("LogReceiptAction", err)
}

func (h *BookingHandler) safeLogBookingCreated(c *gin.Context, userID uuid.UUID, result *models.SubmissionResult) {
	if h.auditService == nil {
		return
	}
	client := clientInfo(c)
	err := h.auditService.LogBookingCreated(c.Request.Context(), userID, result, client.IPAddress, client.UserAgent)
	logAuditError("LogBookingCreated", err)
}
