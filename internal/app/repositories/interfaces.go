package repositories

import (
	"context"
	"time"

	"github.com/kindergarten-canvas/backend/internal/app/models"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// CreateIfNotExists inserts user unless its email is taken. It reports
	// whether a row was inserted.
	CreateIfNotExists(ctx context.Context, user *models.User) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}

// INewsRepository defines the news item operations.
type INewsRepository interface {
	Create(ctx context.Context, item *models.NewsItem) error
	GetByID(ctx context.Context, id int64) (*models.NewsItem, error)
	// List orders by creation date, newest first. An empty status lists all.
	List(ctx context.Context, status models.ContentStatus) ([]*models.NewsItem, error)
	// ListPublished returns at most limit published items, newest
	// publication first.
	ListPublished(ctx context.Context, limit uint64) ([]*models.NewsItem, error)
	Update(ctx context.Context, item *models.NewsItem) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
}

// ITeacherRepository defines the teacher profile operations.
type ITeacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	GetByID(ctx context.Context, id int64) (*models.Teacher, error)
	// List orders by display order, then last name.
	List(ctx context.Context, status models.ContentStatus) ([]*models.Teacher, error)
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
}

// ITokenRepository stores the refresh tokens handed out at login.
type ITokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	// GetTokenByValue fails with ErrTokenNotFound, ErrTokenRevoked or
	// ErrTokenExpired for tokens that cannot be used.
	GetTokenByValue(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}
