package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin roles carried in the admin's access token next to "admin"
const (
	RoleAdmin       = "admin"
	RoleSuperAdmin  = "superadmin"
	RoleBranchAdmin = "branch_admin"
	RolePassenger   = "passenger"
)

// AdminUser represents a back office user
type AdminUser struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	Role         string     `json:"role" db:"role"`
	BranchID     *string    `json:"branch_id,omitempty" db:"branch_id"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
}

// TokenRoles returns the roles embedded in the admin's JWT
func (a *AdminUser) TokenRoles() []string {
	roles := []string{RoleAdmin}
	if a.Role != "" && a.Role != RoleAdmin {
		roles = append(roles, a.Role)
	}
	return roles
}

// AdminLoginRequest represents the login request payload
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// AdminLoginResponse represents the login response
type AdminLoginResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	AdminUser    *AdminUser `json:"admin_user"`
}

// RefreshRequest represents a token refresh or logout request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AdminChangePasswordRequest represents the change password request
type AdminChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// AdminCreateRequest represents the request to create a new admin user
type AdminCreateRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName string  `json:"full_name" binding:"required"`
	Role     string  `json:"role" binding:"omitempty,oneof=superadmin branch_admin admin"`
	BranchID *string `json:"branch_id,omitempty"`
}
