package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/google/uuid"
)

// ErrAdminNotFound is returned when no admin matches
var ErrAdminNotFound = fmt.Errorf("admin user not found")

// AdminUserRepository handles admin user database operations
type AdminUserRepository struct {
	db DB
}

// NewAdminUserRepository creates a new admin user repository
func NewAdminUserRepository(db DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

const adminColumns = `id, email, password_hash, full_name, role, branch_id, is_active, last_login_at, created_at, updated_at, created_by`

func (r *AdminUserRepository) scanOne(row *sql.Row) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := row.Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash, &admin.FullName, &admin.Role, &admin.BranchID,
		&admin.IsActive, &admin.LastLoginAt, &admin.CreatedAt, &admin.UpdatedAt, &admin.CreatedBy,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return &admin, nil
}

// GetByEmail retrieves an admin user by email
func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE LOWER(email) = LOWER($1)`, email))
}

// GetByID retrieves an admin user by ID
func (r *AdminUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE id = $1`, id))
}

// Create creates a new admin user
func (r *AdminUserRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}

	query := `
		INSERT INTO admin_users (id, email, password_hash, full_name, role, branch_id, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		admin.ID,
		admin.Email,
		admin.PasswordHash,
		admin.FullName,
		admin.Role,
		admin.BranchID,
		admin.IsActive,
		admin.CreatedBy,
	).Scan(&admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

// UpdateLastLogin updates the last login timestamp
func (r *AdminUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE admin_users SET last_login_at = $1, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UpdatePassword updates the admin user's password
func (r *AdminUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE admin_users SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// List retrieves all admin users
func (r *AdminUserRepository) List(ctx context.Context) ([]*models.AdminUser, error) {
	admins := []*models.AdminUser{}
	err := r.db.SelectContext(ctx, &admins, `SELECT `+adminColumns+` FROM admin_users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin users: %w", err)
	}
	return admins, nil
}

// UpdateActiveStatus updates the active status of an admin user
func (r *AdminUserRepository) UpdateActiveStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE admin_users SET is_active = $1, updated_at = $2 WHERE id = $3`, isActive, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update active status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAdminNotFound
	}
	return nil
}
