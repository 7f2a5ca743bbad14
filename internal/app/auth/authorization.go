package auth

import (
	"context"
	"errors"

	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/repositories"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/kindergarten-canvas/backend/internal/pkg/logger"
)

// Permissions describes what a role may do. Both roles manage site content,
// only administrators manage accounts.
type Permissions struct {
	ManageContent bool
	ManageUsers   bool
}

var rolePermissions = map[models.RoleType]Permissions{
	models.RoleAdmin:     {ManageContent: true, ManageUsers: true},
	models.RoleDeveloper: {ManageContent: true},
}

// PermissionsFor returns the permissions of role. Unknown roles get none.
func PermissionsFor(role models.RoleType) Permissions {
	return rolePermissions[role]
}

// ContentRoles are the roles allowed on the content admin routes.
func ContentRoles() []models.RoleType {
	return rolesWith(func(p Permissions) bool { return p.ManageContent })
}

// UserAdminRoles are the roles allowed on the account admin routes.
func UserAdminRoles() []models.RoleType {
	return rolesWith(func(p Permissions) bool { return p.ManageUsers })
}

func rolesWith(pred func(Permissions) bool) []models.RoleType {
	var roles []models.RoleType
	for _, role := range []models.RoleType{models.RoleAdmin, models.RoleDeveloper} {
		if pred(rolePermissions[role]) {
			roles = append(roles, role)
		}
	}
	return roles
}

// AuthorizationService re-checks permissions against the stored account, so
// a role change takes effect before the access token expires.
type AuthorizationService struct {
	userRepo repositories.IUserRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.IUserRepository) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

func (s *AuthorizationService) permissions(ctx context.Context, userID int64) (Permissions, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return Permissions{}, apperrors.ErrUnauthorized
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user for permission check")
		return Permissions{}, err
	}
	return PermissionsFor(user.Role), nil
}

// ValidateUserAdmin returns ErrPermissionDenied unless userID may manage
// accounts.
func (s *AuthorizationService) ValidateUserAdmin(ctx context.Context, userID int64) error {
	p, err := s.permissions(ctx, userID)
	if err != nil {
		return err
	}
	if !p.ManageUsers {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// CanDeleteUser checks that actorID may delete targetID. Administrators
// remove their own account through /users/me instead.
func (s *AuthorizationService) CanDeleteUser(ctx context.Context, actorID, targetID int64) error {
	if err := s.ValidateUserAdmin(ctx, actorID); err != nil {
		return err
	}
	if actorID == targetID {
		return apperrors.NewForbiddenError("Не можете да изтриете собствения си акаунт оттук")
	}
	return nil
}
