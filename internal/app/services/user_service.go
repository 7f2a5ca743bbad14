package services

import (
	"context"
	"fmt"
	"strings"

	appauth "github.com/kindergarten-canvas/backend/internal/app/auth"
	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/app/repositories"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// UserService manages back-office accounts.
type UserService interface {
	GetMe(ctx context.Context, userID int64) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, userID int64, req *dto.UpdateMeRequest) (*dto.UserResponse, error)
	DeleteMe(ctx context.Context, userID int64) error

	ListUsers(ctx context.Context, actorID int64) ([]dto.UserResponse, error)
	GetUser(ctx context.Context, actorID, id int64) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, actorID int64, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
}

type userServiceImpl struct {
	userRepo repositories.IUserRepository
	authz    *appauth.AuthorizationService
	hasher   PasswordHasher
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.IUserRepository,
	authz *appauth.AuthorizationService,
	hasher PasswordHasher,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		authz:    authz,
		hasher:   hasher,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userServiceImpl) GetMe(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) UpdateMe(ctx context.Context, userID int64, req *dto.UpdateMeRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, apperrors.NewValidationError("email", dto.FieldMessage("email", "required", ""))
		}
		user.Email = email
	}

	if req.Password != nil {
		if *req.Password == "" {
			return nil, apperrors.NewValidationError("password", dto.FieldMessage("password", "required", ""))
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Bool("passwordChanged", req.Password != nil).Msg("User updated own account")
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) DeleteMe(ctx context.Context, userID int64) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Msg("User deleted own account")
	return nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context, actorID int64) ([]dto.UserResponse, error) {
	if err := s.authz.ValidateUserAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, dto.NewUserResponse(u))
	}
	return resp, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, actorID, id int64) (*dto.UserResponse, error) {
	if err := s.authz.ValidateUserAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.GetMe(ctx, id)
}

func (s *userServiceImpl) CreateUser(ctx context.Context, actorID int64, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := s.authz.ValidateUserAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, apperrors.NewValidationError("role", dto.FieldMessage("role", "oneof", ""))
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    normalizeEmail(req.Email),
		Password: hash,
		Role:     req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("actorID", actorID).Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User created")
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, actorID, id int64) error {
	if err := s.authz.CanDeleteUser(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	s.logger.Info().Int64("actorID", actorID).Int64("userID", id).Msg("User deleted")
	return nil
}
