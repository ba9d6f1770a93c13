package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/google/uuid"
)

// RefreshTokenRepository stores hashed refresh tokens. Passenger and admin
// tokens live in separate tables with the same shape.
type RefreshTokenRepository struct {
	db      DB
	table   string
	ownerFK string
}

// NewRefreshTokenRepository creates the passenger refresh token repository
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db, table: "refresh_tokens", ownerFK: "user_id"}
}

// NewAdminRefreshTokenRepository creates the admin refresh token repository
func NewAdminRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db, table: "admin_refresh_tokens", ownerFK: "admin_user_id"}
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Store saves a refresh token
func (r *RefreshTokenRepository) Store(ctx context.Context, ownerID uuid.UUID, token, deviceType, ipAddress, userAgent string, expiresAt time.Time) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, token_hash, device_type, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.table, r.ownerFK)

	_, err := r.db.ExecContext(ctx, query,
		ownerID,
		hashToken(token),
		nullable(deviceType),
		nullable(ipAddress),
		nullable(userAgent),
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Get retrieves a refresh token; nil when it does not exist
func (r *RefreshTokenRepository) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := fmt.Sprintf(`
		SELECT id, %s AS user_id, token_hash, device_type, ip_address, user_agent,
		       created_at, expires_at, last_used_at, revoked, revoked_at
		FROM %s
		WHERE token_hash = $1
	`, r.ownerFK, r.table)

	var refreshToken models.RefreshToken
	if err := r.db.GetContext(ctx, &refreshToken, query, hashToken(token)); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &refreshToken, nil
}

// Revoke revokes a specific refresh token
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET revoked = TRUE, revoked_at = $1
		WHERE token_hash = $2 AND revoked = FALSE
	`, r.table)

	result, err := r.db.ExecContext(ctx, query, time.Now(), hashToken(token))
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("token not found or already revoked")
	}
	return nil
}

// RevokeAll revokes every token of an owner
func (r *RefreshTokenRepository) RevokeAll(ctx context.Context, ownerID uuid.UUID) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET revoked = TRUE, revoked_at = $1
		WHERE %s = $2 AND revoked = FALSE
	`, r.table, r.ownerFK)

	if _, err := r.db.ExecContext(ctx, query, time.Now(), ownerID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

// UpdateLastUsed updates the last_used_at timestamp
func (r *RefreshTokenRepository) UpdateLastUsed(ctx context.Context, token string) error {
	query := fmt.Sprintf(`UPDATE %s SET last_used_at = $1 WHERE token_hash = $2`, r.table)
	if _, err := r.db.ExecContext(ctx, query, time.Now(), hashToken(token)); err != nil {
		return fmt.Errorf("failed to update token last used timestamp: %w", err)
	}
	return nil
}

// CleanupExpired removes expired tokens
func (r *RefreshTokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at < $1`, r.table)
	result, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
