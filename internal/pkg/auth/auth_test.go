package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		AccessSecret:    strings.Repeat("a", 32),
		RefreshSecret:   strings.Repeat("r", 32),
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 7 * 24 * time.Hour,
		TokenIssuer:     "kindergarten-canvas",
	})
}

var testUser = &models.User{ID: 7, Email: "admin@kindergarten.bg", Role: models.RoleAdmin}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateAccessToken(testUser)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "admin@kindergarten.bg", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "kindergarten-canvas", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestAccessTokenExpired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := svc.GenerateAccessToken(testUser)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestAccessTokenRejectsForeignSignature(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService(JWTConfig{
		AccessSecret:   strings.Repeat("x", 32),
		AccessTokenExp: time.Minute,
	})

	token, err := other.GenerateAccessToken(testUser)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenRejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{UserID: 1, Email: "a@b.bg", Role: models.RoleAdmin}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()

	issued, err := svc.GenerateRefreshToken(7)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateRefreshToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, RefreshTokenType, claims.Type)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService()

	access, err := svc.GenerateAccessToken(testUser)
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(access)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	refresh, err := svc.GenerateRefreshToken(7)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(refresh.Token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestRefreshTokenWrongType(t *testing.T) {
	svc := newTestJWTService()
	claims := &RefreshClaims{
		UserID: 7,
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(strings.Repeat("r", 32)))
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "no scheme", header: "abc.def.ghi", wantErr: true},
		{name: "basic", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "missing token", header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, h.Check(hash, "secret123"))
	assert.False(t, h.Check(hash, "wrong"))
	assert.False(t, h.Check("not-a-hash", "secret123"))
}

func TestPasswordHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(99).cost)
	assert.Equal(t, 10, NewPasswordHasher(10).cost)
}
