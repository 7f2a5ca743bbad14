package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/app/repositories"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/kindergarten-canvas/backend/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// AuthService handles authentication operations
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error)
	// Logout revokes refreshToken, or every refresh token of userID when it
	// is empty.
	Logout(ctx context.Context, userID int64, refreshToken string) error
}

type authServiceImpl struct {
	userRepo  repositories.IUserRepository
	tokenRepo repositories.ITokenRepository
	tokens    TokenIssuer
	hasher    PasswordHasher
	logger    zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	tokens TokenIssuer,
	hasher PasswordHasher,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokens:    tokens,
		hasher:    hasher,
		logger:    logger,
	}
}

// Login authenticates a user
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Info().Str("email", email).Msg("Login attempt for unknown email")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.hasher.Check(user.Password, req.Password) {
		s.logger.Info().Int64("userID", user.ID).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.CreateToken(ctx, refresh.ID, user.ID, refresh.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		User: dto.AuthUser{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}

// Refresh creates a new access token using a refresh token
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	stored, err := s.tokenRepo.GetTokenByValue(ctx, claims.ID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case errors.Is(err, apperrors.ErrTokenNotFound), errors.Is(err, apperrors.ErrTokenRevoked):
			return nil, apperrors.ErrTokenInvalid
		default:
			return nil, fmt.Errorf("failed to load refresh token: %w", err)
		}
	}
	if stored.UserID != claims.UserID {
		s.logger.Warn().Int64("userID", claims.UserID).Msg("Refresh token owner mismatch")
		return nil, apperrors.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.RefreshTokenResponse{AccessToken: accessToken}, nil
}

// Logout never fails because of the token itself: the client discards its
// tokens either way.
func (s *authServiceImpl) Logout(ctx context.Context, userID int64, refreshToken string) error {
	if refreshToken == "" {
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
			return fmt.Errorf("failed to revoke user tokens: %w", err)
		}
		s.logger.Info().Int64("userID", userID).Msg("User logged out from all sessions")
		return nil
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil || claims.UserID != userID {
		s.logger.Info().Int64("userID", userID).Msg("Logout with unusable refresh token")
		return nil
	}

	if err := s.tokenRepo.RevokeToken(ctx, claims.ID); err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info().Int64("userID", userID).Msg("User logged out")
	return nil
}
