package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"floorkeeper/internal/auth"
	"floorkeeper/internal/config"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"floorkeeper/internal/repository/memory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, cfg config.AuthConfig) (*auth.Service, *memory.Store) {
	t.Helper()
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test_secret_key"
	}
	store := memory.NewStore(time.Second)
	return auth.NewService(cfg, store.Users()), store
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _ := newService(t, config.AuthConfig{JWTExpiration: 1})
	user := &models.User{Username: "ana", Role: models.RoleWaiter}

	token, expiresAt, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, models.RoleWaiter, claims.Role)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc, _ := newService(t, config.AuthConfig{})

	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "Garbage",
			token:   "not-a-token",
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "Wrong Secret",
			token:   sign("other", jwt.MapClaims{"user_id": "7f1c3a52-7d0e-4d5e-9a8b-111111111111", "exp": time.Now().Add(time.Hour).Unix()}),
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "Expired",
			token:   sign("test_secret_key", jwt.MapClaims{"user_id": "7f1c3a52-7d0e-4d5e-9a8b-111111111111", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantErr: auth.ErrTokenExpired,
		},
		{
			name:    "Missing User Id",
			token:   sign("test_secret_key", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
			wantErr: auth.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t, config.AuthConfig{})
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "mesero1", "password123", models.RoleWaiter)
	require.NoError(t, err)

	resp, err := svc.Login(ctx, "mesero1", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleWaiter, resp.Role)

	_, err = svc.Login(ctx, "mesero1", "wrong-password")
	assert.True(t, errors.Is(err, repository.ErrInvalidCredentials))

	_, err = svc.Login(ctx, "nobody", "password123")
	assert.True(t, errors.Is(err, repository.ErrInvalidCredentials))
}

func TestCreateUser_Policy(t *testing.T) {
	svc, _ := newService(t, config.AuthConfig{})
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "ana", "short", models.RoleWaiter)
	assert.True(t, errors.Is(err, auth.ErrWeakPassword))

	_, err = svc.CreateUser(ctx, "ana maria", "password123", models.RoleWaiter)
	assert.True(t, errors.Is(err, auth.ErrInvalidUsername))

	_, err = svc.CreateUser(ctx, "ana", "password123", models.RoleWaiter)
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "ana", "password456", models.RoleCashier)
	assert.True(t, errors.Is(err, repository.ErrUserExists))
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Once", func(t *testing.T) {
		svc, store := newService(t, config.AuthConfig{AdminUsername: "admin", AdminPassword: "admin-pass-1"})
		require.NoError(t, svc.EnsureAdmin(ctx))
		require.NoError(t, svc.EnsureAdmin(ctx))

		user, err := store.Users().GetByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
		assert.NotEqual(t, "admin-pass-1", user.Password)
	})

	t.Run("Skipped Without Credentials", func(t *testing.T) {
		svc, store := newService(t, config.AuthConfig{})
		require.NoError(t, svc.EnsureAdmin(ctx))

		_, err := store.Users().GetByUsername(ctx, "admin")
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	})
}
