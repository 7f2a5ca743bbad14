package dto

import "github.com/kindergarten-canvas/backend/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@kindergarten.bg"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// AuthUser is the public part of the logged in account.
type AuthUser struct {
	ID    int64           `json:"id" example:"1"`
	Email string          `json:"email" example:"admin@kindergarten.bg"`
	Role  models.RoleType `json:"role" example:"ADMIN"`
}

// LoginResponse carries the token pair issued on login.
type LoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         AuthUser `json:"user"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse carries the new access token.
type RefreshTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// LogoutRequest optionally names the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutResponse is the content of a successful logout.
type LogoutResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
}
