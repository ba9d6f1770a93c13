package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// ErrSettingNotFound is returned for an unknown setting key
var ErrSettingNotFound = fmt.Errorf("setting not found")

// SystemSettingRepository handles database operations for system_settings table
type SystemSettingRepository struct {
	db DB
}

// NewSystemSettingRepository creates a new SystemSettingRepository
func NewSystemSettingRepository(db DB) *SystemSettingRepository {
	return &SystemSettingRepository{db: db}
}

// GetAll retrieves all system settings
func (r *SystemSettingRepository) GetAll(ctx context.Context) ([]models.SystemSetting, error) {
	query := `
		SELECT id, setting_key, setting_value, description, created_at, updated_at
		FROM system_settings
		ORDER BY setting_key
	`

	settings := []models.SystemSetting{}
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return settings, nil
}

// GetByKey retrieves a system setting by its key
func (r *SystemSettingRepository) GetByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	query := `
		SELECT id, setting_key, setting_value, description, created_at, updated_at
		FROM system_settings
		WHERE setting_key = $1
	`

	var setting models.SystemSetting
	var description sql.NullString

	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&setting.ID,
		&setting.SettingKey,
		&setting.SettingValue,
		&description,
		&setting.CreatedAt,
		&setting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}

	if description.Valid {
		setting.Description = &description.String
	}

	return &setting, nil
}

// Update updates a system setting's value
func (r *SystemSettingRepository) Update(ctx context.Context, key string, value string) error {
	query := `
		UPDATE system_settings
		SET setting_value = $1, updated_at = NOW()
		WHERE setting_key = $2
	`

	result, err := r.db.ExecContext(ctx, query, value, key)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// GetIntValue retrieves a system setting as an integer
func (r *SystemSettingRepository) GetIntValue(ctx context.Context, key string, defaultValue int) int {
	setting, err := r.GetByKey(ctx, key)
	if err != nil {
		return defaultValue
	}

	value, err := strconv.Atoi(setting.SettingValue)
	if err != nil {
		return defaultValue
	}

	return value
}
