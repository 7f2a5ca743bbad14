package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/repositories"
	"github.com/rs/zerolog"
)

// MinAdminPasswordLength is the shortest default admin password accepted.
const MinAdminPasswordLength = 8

// Hasher hashes the default admin password.
type Hasher interface {
	Hash(password string) (string, error)
}

// Admin describes the account created on first start.
type Admin struct {
	Email    string
	Password string
}

// CreateDefaultData creates the default ADMIN account unless its email is
// already registered. An existing account keeps its password. Failures are
// collected and returned together; callers log them and keep starting.
func CreateDefaultData(ctx context.Context, userRepo repositories.IUserRepository, hasher Hasher, admin Admin, lgr zerolog.Logger) error {
	var finalErr error

	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" {
		lgr.Warn().Msg("Default admin email is empty, skipping admin seed")
		return nil
	}
	if len(admin.Password) < MinAdminPasswordLength {
		lgr.Warn().
			Str("email", email).
			Int("min_length", MinAdminPasswordLength).
			Msg("DEFAULT_ADMIN_PASSWORD missing or too short, skipping admin seed")
		return nil
	}

	lgr.Info().Str("email", email).Msg("Checking default admin user...")

	hashed, err := hasher.Hash(admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return errors.Join(finalErr, fmt.Errorf("hash admin password: %w", err))
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
	}
	created, err := userRepo.CreateIfNotExists(ctx, user)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default admin user")
		finalErr = errors.Join(finalErr, fmt.Errorf("create admin user: %w", err))
	} else if created {
		lgr.Info().Int64("user_id", user.ID).Str("email", email).Msg("Default admin user created")
	} else {
		lgr.Debug().Str("email", email).Msg("Default admin user already exists")
	}

	return finalErr
}
