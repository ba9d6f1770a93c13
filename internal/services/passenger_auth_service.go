package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/pkg/jwt"
	"github.com/Fredrickmureti/tour-kenya-sub001/pkg/validator"
)

// PassengerAuthService registers and signs in passengers
type PassengerAuthService struct {
	userRepo         *database.UserRepository
	refreshTokenRepo *database.RefreshTokenRepository
	jwtService       *jwt.Service
	phoneValidator   *validator.PhoneValidator
	bcryptCost       int
	logger           *logrus.Logger
}

// NewPassengerAuthService creates a new passenger auth service
func NewPassengerAuthService(
	userRepo *database.UserRepository,
	refreshTokenRepo *database.RefreshTokenRepository,
	jwtService *jwt.Service,
	bcryptCost int,
	logger *logrus.Logger,
) *PassengerAuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PassengerAuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtService:       jwtService,
		phoneValidator:   validator.NewPhoneValidator(),
		bcryptCost:       bcryptCost,
		logger:           logger,
	}
}

// Register creates a passenger account and signs it in
func (s *PassengerAuthService) Register(ctx context.Context, req models.RegisterRequest, client ClientInfo) (*models.AuthResponse, error) {
	var phone *string
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		normalized, err := s.phoneValidator.Validate(*req.Phone)
		if err != nil {
			return nil, newValidationError("phone", "%s", err.Error())
		}
		phone = &normalized
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        phone,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, newValidationError("email", "an account with this email already exists")
		}
		return nil, err
	}

	return s.issueTokens(ctx, user, client)
}

// Login signs in a passenger with email and password
func (s *PassengerAuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	return s.issueTokens(ctx, user, client)
}

// Refresh issues a new access token for a stored refresh token
func (s *PassengerAuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	stored, err := s.refreshTokenRepo.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || !stored.IsUsable(time.Now()) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, []string{models.RolePassenger})
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	if err := s.refreshTokenRepo.UpdateLastUsed(ctx, refreshToken); err != nil {
		s.logger.WithError(err).Warn("Failed to update refresh token last used")
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
		User:         user,
	}, nil
}

// Logout revokes a refresh token
func (s *PassengerAuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshTokenRepo.Revoke(ctx, refreshToken)
}

// Profile returns the passenger account
func (s *PassengerAuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *PassengerAuthService) issueTokens(ctx context.Context, user *models.User, client ClientInfo) (*models.AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, []string{models.RolePassenger})
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.jwtService.RefreshTokenExpiry())
	if err := s.refreshTokenRepo.Store(ctx, user.ID, refreshToken, client.DeviceType, client.IPAddress, client.UserAgent, expiresAt); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
		User:         user,
	}, nil
}
