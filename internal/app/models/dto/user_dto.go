package dto

import (
	"time"

	"github.com/kindergarten-canvas/backend/internal/app/models"
)

// UserResponse is a user without its password hash.
type UserResponse struct {
	ID        int64           `json:"id" example:"1"`
	Email     string          `json:"email" example:"admin@kindergarten.bg"`
	Role      models.RoleType `json:"role" example:"ADMIN"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewUserResponse strips the credentials of a user.
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UpdateMeRequest changes the email and/or password of the current user.
type UpdateMeRequest struct {
	Email    *string `json:"email" binding:"omitempty,email" example:"new@kindergarten.bg"`
	Password *string `json:"password" binding:"omitempty,min=8" example:"newsecret123"`
}

// CreateUserRequest is used by administrators to add back-office accounts.
type CreateUserRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     models.RoleType `json:"role" binding:"required,oneof=ADMIN DEVELOPER"`
}
