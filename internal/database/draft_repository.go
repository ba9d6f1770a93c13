package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// DraftRepository stores resumable booking drafts of guest sessions
type DraftRepository struct {
	db DB
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(db DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Save upserts the snapshot for a session
func (r *DraftRepository) Save(ctx context.Context, sessionKey string, snapshot models.DraftSnapshot, deviceType string) error {
	query := `
		INSERT INTO pending_booking_drafts (session_key, snapshot, device_type, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (session_key)
		DO UPDATE SET snapshot = EXCLUDED.snapshot,
		              device_type = EXCLUDED.device_type,
		              updated_at = NOW()
	`

	var deviceVal interface{}
	if deviceType != "" {
		deviceVal = deviceType
	}

	if _, err := r.db.ExecContext(ctx, query, sessionKey, snapshot, deviceVal); err != nil {
		return fmt.Errorf("failed to save booking draft: %w", err)
	}
	return nil
}

// Load returns the snapshot for a session, or nil when none is stored
func (r *DraftRepository) Load(ctx context.Context, sessionKey string) (*models.PendingDraft, error) {
	query := `
		SELECT session_key, snapshot, COALESCE(device_type, '') AS device_type, created_at, updated_at
		FROM pending_booking_drafts
		WHERE session_key = $1
	`

	var draft models.PendingDraft
	if err := r.db.GetContext(ctx, &draft, query, sessionKey); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load booking draft: %w", err)
	}
	return &draft, nil
}

// Delete removes the snapshot for a session
func (r *DraftRepository) Delete(ctx context.Context, sessionKey string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_booking_drafts WHERE session_key = $1`, sessionKey); err != nil {
		return fmt.Errorf("failed to delete booking draft: %w", err)
	}
	return nil
}

// DeleteOlderThan removes drafts untouched since cutoff
func (r *DraftRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pending_booking_drafts WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge booking drafts: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// Count returns the number of stored drafts
func (r *DraftRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_booking_drafts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count booking drafts: %w", err)
	}
	return count, nil
}
