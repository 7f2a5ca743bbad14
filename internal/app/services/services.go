package services

import (
	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/pkg/auth"
)

// TokenIssuer issues and verifies the JWTs handed to clients.
// *auth.JWTService implements it.
type TokenIssuer interface {
	GenerateAccessToken(user *models.User) (string, error)
	GenerateRefreshToken(userID int64) (*auth.IssuedRefreshToken, error)
	ValidateRefreshToken(tokenString string) (*auth.RefreshClaims, error)
}

// PasswordHasher hashes and checks passwords. *auth.PasswordHasher
// implements it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hashedPassword, password string) bool
}

// NewsListener is told about news items changed through the API.
type NewsListener interface {
	NewsUpdated(item *models.NewsItem)
}

// CountsInvalidator drops cached dashboard counts after a mutation.
type CountsInvalidator interface {
	InvalidateCounts()
}
