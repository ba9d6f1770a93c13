package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/pkg/jwt"
)

var (
	// ErrInvalidCredentials is returned for any email/password mismatch
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountInactive is returned when a deactivated account signs in
	ErrAccountInactive = errors.New("account is inactive")
	// ErrInvalidRefreshToken covers unknown, revoked and expired refresh tokens
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// ClientInfo describes the caller of an auth operation
type ClientInfo struct {
	IPAddress  string
	UserAgent  string
	DeviceType string
}

// AdminAuthService handles admin authentication business logic
type AdminAuthService struct {
	adminRepo        *database.AdminUserRepository
	refreshTokenRepo *database.RefreshTokenRepository
	jwtService       *jwt.Service
	bcryptCost       int
	logger           *logrus.Logger
}

// NewAdminAuthService creates a new admin auth service
func NewAdminAuthService(
	adminRepo *database.AdminUserRepository,
	refreshTokenRepo *database.RefreshTokenRepository,
	jwtService *jwt.Service,
	bcryptCost int,
	logger *logrus.Logger,
) *AdminAuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AdminAuthService{
		adminRepo:        adminRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtService:       jwtService,
		bcryptCost:       bcryptCost,
		logger:           logger,
	}
}

// Login authenticates an admin user and returns tokens
func (s *AdminAuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*models.AdminLoginResponse, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.IsActive {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.GenerateAccessToken(admin.ID, admin.Email, admin.TokenRoles())
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(admin.ID, admin.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.jwtService.RefreshTokenExpiry())
	if err := s.refreshTokenRepo.Store(ctx, admin.ID, refreshToken, client.DeviceType, client.IPAddress, client.UserAgent, expiresAt); err != nil {
		return nil, err
	}

	if err := s.adminRepo.UpdateLastLogin(ctx, admin.ID); err != nil {
		// don't fail the login
		s.logger.WithError(err).WithField("admin_id", admin.ID).Warn("Failed to update admin last login")
	}

	return &models.AdminLoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
		AdminUser:    admin,
	}, nil
}

// RefreshToken generates a new access token from a refresh token
func (s *AdminAuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AdminLoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	storedToken, err := s.refreshTokenRepo.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if storedToken == nil || !storedToken.IsUsable(time.Now()) {
		return nil, ErrInvalidRefreshToken
	}

	admin, err := s.adminRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrAdminNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrAccountInactive
	}

	accessToken, err := s.jwtService.GenerateAccessToken(admin.ID, admin.Email, admin.TokenRoles())
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if err := s.refreshTokenRepo.UpdateLastUsed(ctx, refreshToken); err != nil {
		s.logger.WithError(err).Warn("Failed to update refresh token last used")
	}

	return &models.AdminLoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
		AdminUser:    admin,
	}, nil
}

// Logout revokes the refresh token
func (s *AdminAuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshTokenRepo.Revoke(ctx, refreshToken)
}

// ChangePassword changes an admin user's password and signs out other sessions
func (s *AdminAuthService) ChangePassword(ctx context.Context, adminID uuid.UUID, oldPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(oldPassword)); err != nil {
		return newValidationError("old_password", "incorrect old password")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.adminRepo.UpdatePassword(ctx, adminID, string(hashedPassword)); err != nil {
		return err
	}

	if err := s.refreshTokenRepo.RevokeAll(ctx, adminID); err != nil {
		s.logger.WithError(err).WithField("admin_id", adminID).Warn("Failed to revoke admin sessions after password change")
	}
	return nil
}

// CreateAdmin creates a new admin user
func (s *AdminAuthService) CreateAdmin(ctx context.Context, req models.AdminCreateRequest, createdBy uuid.UUID) (*models.AdminUser, error) {
	role := req.Role
	if role == "" {
		role = models.RoleAdmin
	}
	if role == models.RoleBranchAdmin && (req.BranchID == nil || *req.BranchID == "") {
		return nil, newValidationError("branch_id", "branch_id is required for branch admins")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.AdminUser{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Role:         role,
		BranchID:     req.BranchID,
		IsActive:     true,
		CreatedBy:    &createdBy,
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	return admin, nil
}

// Deactivate disables an admin account and revokes its sessions
func (s *AdminAuthService) Deactivate(ctx context.Context, adminID, actingAdminID uuid.UUID) error {
	if adminID == actingAdminID {
		return newValidationError("id", "you cannot deactivate your own account")
	}
	if err := s.adminRepo.UpdateActiveStatus(ctx, adminID, false); err != nil {
		return err
	}
	if err := s.refreshTokenRepo.RevokeAll(ctx, adminID); err != nil {
		s.logger.WithError(err).WithField("admin_id", adminID).Warn("Failed to revoke sessions of deactivated admin")
	}
	return nil
}

// GetAdminProfile retrieves admin user profile
func (s *AdminAuthService) GetAdminProfile(ctx context.Context, adminID uuid.UUID) (*models.AdminUser, error) {
	return s.adminRepo.GetByID(ctx, adminID)
}

// ListAdmins retrieves all admin users
func (s *AdminAuthService) ListAdmins(ctx context.Context) ([]*models.AdminUser, error) {
	return s.adminRepo.List(ctx)
}
