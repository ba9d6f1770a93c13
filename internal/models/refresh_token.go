package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a stored (hashed) refresh token of a passenger or admin
type RefreshToken struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash  string     `json:"-" db:"token_hash"`
	DeviceType *string    `json:"device_type,omitempty" db:"device_type"`
	IPAddress  *string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string    `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	Revoked    bool       `json:"revoked" db:"revoked"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// IsUsable reports whether the token is neither revoked nor expired
func (t *RefreshToken) IsUsable(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}
