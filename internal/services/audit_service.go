package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/utils"
)

// AuditService writes security and back office events to audit_logs
type AuditService struct {
	db      database.DB
	enabled bool
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB, enabled bool) *AuditService {
	return &AuditService{
		db:      db,
		enabled: enabled,
	}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	UserID     *uuid.UUID             // nil for pre-authentication events
	Action     string                 // e.g. "admin_login", "receipt_verify", "booking_create"
	EntityType string                 // e.g. "admin", "receipt", "booking"
	EntityID   *string                // id of the affected entity
	IPAddress  string                 // client IP address
	UserAgent  string                 // client user agent
	Details    map[string]interface{} // stored as JSONB
}

// LogAdminLogin logs a back office login attempt
func (s *AuditService) LogAdminLogin(ctx context.Context, adminID *uuid.UUID, email, ipAddress, userAgent string, success bool, reason string) error {
	details := map[string]interface{}{
		"email":       email,
		"success":     success,
		"device_info": utils.ParseUserAgent(userAgent),
	}
	if reason != "" {
		details["reason"] = reason
	}

	action := "admin_login_failed"
	if success {
		action = "admin_login"
	}

	return s.logEvent(ctx, AuditEvent{
		UserID:     adminID,
		Action:     action,
		EntityType: "admin",
		EntityID:   uuidString(adminID),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogLogout logs a logout for a passenger or admin
func (s *AuditService) LogLogout(ctx context.Context, userID uuid.UUID, entityType, ipAddress, userAgent string) error {
	return s.logEvent(ctx, AuditEvent{
		UserID:     &userID,
		Action:     "logout",
		EntityType: entityType,
		EntityID:   uuidString(&userID),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// LogPassengerLogin logs a passenger sign-in or registration
func (s *AuditService) LogPassengerLogin(ctx context.Context, userID uuid.UUID, email, action, ipAddress, userAgent string) error {
	return s.logEvent(ctx, AuditEvent{
		UserID:     &userID,
		Action:     action,
		EntityType: "user",
		EntityID:   uuidString(&userID),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"email":       email,
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// LogReceiptAction logs an admin verify or sign-off of a receipt
func (s *AuditService) LogReceiptAction(ctx context.Context, adminID uuid.UUID, action, receiptID, ipAddress, userAgent string, result models.ReceiptActionResult) error {
	details := map[string]interface{}{
		"device_info": utils.ParseUserAgent(userAgent),
	}
	if result != nil {
		details["result"] = map[string]interface{}(result)
	}

	return s.logEvent(ctx, AuditEvent{
		UserID:     &adminID,
		Action:     action,
		EntityType: "receipt",
		EntityID:   &receiptID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogBookingCreated logs a confirmed booking
func (s *AuditService) LogBookingCreated(ctx context.Context, userID uuid.UUID, result *models.SubmissionResult, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"route_id":       result.Payload.RouteID,
		"departure_date": result.Payload.DepartureDate,
		"departure_time": result.Payload.DepartureTime,
		"seats":          result.Payload.SeatNumbers,
		"price":          result.Payload.Price,
		"bus_id":         result.Payload.BusID,
		"receipt_id":     result.Booking.ReceiptID,
		"device_info":    utils.ParseUserAgent(userAgent),
	}
	bookingID := result.Booking.BookingID

	return s.logEvent(ctx, AuditEvent{
		UserID:     &userID,
		Action:     "booking_create",
		EntityType: "booking",
		EntityID:   &bookingID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogAdminAction logs any other back office change
func (s *AuditService) LogAdminAction(ctx context.Context, adminID uuid.UUID, action, entityType, entityID, ipAddress, userAgent string, details map[string]interface{}) error {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["device_info"] = utils.ParseUserAgent(userAgent)

	var id *string
	if entityID != "" {
		id = &entityID
	}
	return s.logEvent(ctx, AuditEvent{
		UserID:     &adminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   id,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// logEvent writes one row to audit_logs
func (s *AuditService) logEvent(ctx context.Context, event AuditEvent) error {
	if !s.enabled {
		return nil
	}

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err = s.db.ExecContext(ctx, query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		string(details),
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}

// AuditEntry is one row returned by GetRecentEvents
type AuditEntry struct {
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   *string         `json:"entity_id,omitempty" db:"entity_id"`
	IPAddress  *string         `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string         `json:"user_agent,omitempty" db:"user_agent"`
	Details    json.RawMessage `json:"details" db:"details"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// GetRecentEvents retrieves recent audit events for a user
func (s *AuditService) GetRecentEvents(ctx context.Context, userID uuid.UUID, limit int) ([]AuditEntry, error) {
	query := `
		SELECT action, entity_type, entity_id, ip_address, user_agent, details, created_at
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	entries := []AuditEntry{}
	if err := s.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}
	return entries, nil
}

// CleanupOldAuditLogs removes audit logs older than the specified duration
func (s *AuditService) CleanupOldAuditLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-olderThan)

	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
