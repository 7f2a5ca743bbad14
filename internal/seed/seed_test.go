package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/repositories/repotest"
	"github.com/kindergarten-canvas/backend/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDefaultDataCreatesAdmin(t *testing.T) {
	repo := repotest.NewUserRepository()
	hasher := auth.NewPasswordHasher(4)

	err := CreateDefaultData(context.Background(), repo, hasher,
		Admin{Email: " Admin@Kindergarten.bg ", Password: "s3cret-pass"}, zerolog.Nop())
	require.NoError(t, err)

	user, err := repo.GetByEmail(context.Background(), "admin@kindergarten.bg")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, hasher.Check(user.Password, "s3cret-pass"))
}

func TestCreateDefaultDataKeepsExistingAdmin(t *testing.T) {
	repo := repotest.NewUserRepository()
	hasher := auth.NewPasswordHasher(4)
	ctx := context.Background()

	require.NoError(t, CreateDefaultData(ctx, repo, hasher, Admin{Email: "admin@kindergarten.bg", Password: "first-password"}, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, repo, hasher, Admin{Email: "admin@kindergarten.bg", Password: "second-password"}, zerolog.Nop()))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, hasher.Check(users[0].Password, "first-password"))
}

func TestCreateDefaultDataSkipsShortPassword(t *testing.T) {
	for _, password := range []string{"", "short"} {
		repo := repotest.NewUserRepository()
		err := CreateDefaultData(context.Background(), repo, auth.NewPasswordHasher(4),
			Admin{Email: "admin@kindergarten.bg", Password: password}, zerolog.Nop())
		require.NoError(t, err)

		users, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, users, "password %q", password)
	}
}

func TestCreateDefaultDataReturnsRepositoryError(t *testing.T) {
	repo := repotest.NewUserRepository()
	repo.Err = errors.New("connection refused")

	err := CreateDefaultData(context.Background(), repo, auth.NewPasswordHasher(4),
		Admin{Email: "admin@kindergarten.bg", Password: "long-enough"}, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.Err)
}
