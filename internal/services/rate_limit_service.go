package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
)

// RateLimitService throttles failed sign-in attempts per account and per IP
type RateLimitService struct {
	db     database.DB
	config RateLimitConfig
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB) *RateLimitService {
	return &RateLimitService{
		db:     db,
		config: DefaultRateLimitConfig(),
	}
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxAccountFailures int           // failed logins per email
	AccountWindow      time.Duration // window for the email limit
	MaxIPFailures      int           // failed logins per IP
	IPWindow           time.Duration // window for the IP limit
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAccountFailures: 5,
		AccountWindow:      15 * time.Minute,
		MaxIPFailures:      20,
		IPWindow:           1 * time.Hour,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "account" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckLoginRateLimit fails when the email or IP has too many recent failures
func (s *RateLimitService) CheckLoginRateLimit(ctx context.Context, email, ip string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if email != "" {
		count, lastAttempt, err := s.getAttemptCount(ctx, email, "account", s.config.AccountWindow)
		if err != nil {
			return fmt.Errorf("failed to check account rate limit: %w", err)
		}
		if count >= s.config.MaxAccountFailures {
			retryAfter := lastAttempt.Add(s.config.AccountWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed sign-in attempts for this account. Please try again after %s", retryAfter.In(eastAfricaTime).Format("15:04")),
				RetryAfter: retryAfter,
				Type:       "account",
			}
		}
	}

	if ip != "" {
		count, lastAttempt, err := s.getAttemptCount(ctx, ip, "ip", s.config.IPWindow)
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}
		if count >= s.config.MaxIPFailures {
			retryAfter := lastAttempt.Add(s.config.IPWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed sign-in attempts from this network. Please try again after %s", retryAfter.In(eastAfricaTime).Format("15:04")),
				RetryAfter: retryAfter,
				Type:       "ip",
			}
		}
	}

	return nil
}

// getAttemptCount gets the number of failures within the time window
func (s *RateLimitService) getAttemptCount(ctx context.Context, identifier, identifierType string, window time.Duration) (int, time.Time, error) {
	windowStart := time.Now().Add(-window)

	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM login_attempts
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND created_at > $3
	`

	var count int
	var lastAttempt time.Time
	err := s.db.QueryRowContext(ctx, query, identifier, identifierType, windowStart).Scan(&count, &lastAttempt)
	if err != nil && err != sql.ErrNoRows {
		return 0, time.Time{}, err
	}
	return count, lastAttempt, nil
}

// RecordFailedLogin records a failed sign-in for the email and IP
func (s *RateLimitService) RecordFailedLogin(ctx context.Context, email, ip string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if err := s.recordAttempt(ctx, email, "account"); err != nil {
			return fmt.Errorf("failed to record account attempt: %w", err)
		}
	}
	if ip != "" {
		if err := s.recordAttempt(ctx, ip, "ip"); err != nil {
			return fmt.Errorf("failed to record IP attempt: %w", err)
		}
	}
	return nil
}

func (s *RateLimitService) recordAttempt(ctx context.Context, identifier, identifierType string) error {
	query := `
		INSERT INTO login_attempts (identifier, identifier_type, created_at)
		VALUES ($1, $2, NOW())
	`
	_, err := s.db.ExecContext(ctx, query, identifier, identifierType)
	return err
}

// ClearFailures forgets an account's failures after a successful sign-in
func (s *RateLimitService) ClearFailures(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE identifier = $1 AND identifier_type = 'account'`, email)
	return err
}

// CleanupExpired removes attempts older than the longest window
func (s *RateLimitService) CleanupExpired(ctx context.Context) (int64, error) {
	maxWindow := s.config.IPWindow
	if s.config.AccountWindow > maxWindow {
		maxWindow = s.config.AccountWindow
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE created_at < $1`, time.Now().Add(-maxWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup login attempts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
