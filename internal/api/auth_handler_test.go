package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/mocks"
	"github.com/Ketaiwk/10xcards/internal/service/auth"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates account", func(t *testing.T) {
		t.Parallel()
		var got auth.RegisterInput
		provider := &mocks.MockAuthProvider{
			RegisterFn: func(_ context.Context, in auth.RegisterInput) (*domain.User, error) {
				got = in
				return domain.NewUser(in.Email, in.Name, in.Password)
			},
		}
		router := newTestRouter(t, testDeps{provider: provider})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "ada@example.com",
			"password": "correct-horse",
			"name":     "Ada",
		}, "")

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, auth.RegisterInput{Email: "ada@example.com", Password: "correct-horse", Name: "Ada"}, got)
		body := decodeBody[map[string]any](t, rec)
		assert.Equal(t, "ada@example.com", body["email"])
		assert.NotContains(t, rec.Body.String(), "correct-horse")
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		provider := &mocks.MockAuthProvider{Err: store.ErrEmailExists}
		router := newTestRouter(t, testDeps{provider: provider})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/register", map[string]any{
			"email": "ada@example.com", "password": "correct-horse", "name": "Ada",
		}, "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, MsgEmailExists, decodeError(t, rec).Error)
	})

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"invalid email", map[string]any{"email": "nope", "password": "correct-horse", "name": "Ada"}, "email: invalid email format"},
		{"short password", map[string]any{"email": "a@example.com", "password": "short", "name": "Ada"}, "password: must be at least 8 characters long"},
		{"short name", map[string]any{"email": "a@example.com", "password": "correct-horse", "name": "A"}, "name: must be at least 2 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			provider := &mocks.MockAuthProvider{}
			router := newTestRouter(t, testDeps{provider: provider})

			rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/register", tt.body, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec).Error)
			assert.Zero(t, provider.CallCount("Register"))
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("returns tokens", func(t *testing.T) {
		t.Parallel()
		expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		provider := &mocks.MockAuthProvider{
			Pair: &auth.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresAt: expires},
		}
		router := newTestRouter(t, testDeps{provider: provider})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/login", map[string]any{
			"email": "ada@example.com", "password": "correct-horse",
		}, "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, AuthResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    "2026-01-02T03:04:05Z",
		}, decodeBody[AuthResponse](t, rec))
	})

	t.Run("invalid credentials", func(t *testing.T) {
		t.Parallel()
		provider := &mocks.MockAuthProvider{Err: auth.ErrInvalidCredentials}
		router := newTestRouter(t, testDeps{provider: provider})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/login", map[string]any{
			"email": "ada@example.com", "password": "wrong-horse",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", decodeError(t, rec).Error)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("revokes bearer token", func(t *testing.T) {
		t.Parallel()
		var revoked string
		provider := &mocks.MockAuthProvider{
			LogoutFn: func(_ context.Context, token string) error {
				revoked = token
				return nil
			},
		}
		router := newTestRouter(t, testDeps{provider: provider})

		rec := doRequest(t, router, http.MethodPost, "/api/auth/logout", nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, testToken, revoked)
	})

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()
		provider := &mocks.MockAuthProvider{}
		router := newTestRouter(t, testDeps{provider: provider})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/logout", nil, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, provider.CallCount("Logout"))
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("rotates tokens", func(t *testing.T) {
		t.Parallel()
		provider := &mocks.MockAuthProvider{
			RefreshFn: func(_ context.Context, token string) (*auth.TokenPair, error) {
				assert.Equal(t, "old-refresh", token)
				return &auth.TokenPair{AccessToken: "a2", RefreshToken: "r2", ExpiresAt: time.Now()}, nil
			},
		}
		router := newTestRouter(t, testDeps{provider: provider})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/refresh",
			map[string]any{"refresh_token": "old-refresh"}, "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "r2", decodeBody[AuthResponse](t, rec).RefreshToken)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		t.Parallel()
		provider := &mocks.MockAuthProvider{Err: auth.ErrRevokedToken}
		router := newTestRouter(t, testDeps{provider: provider})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/refresh",
			map[string]any{"refresh_token": "old-refresh"}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, testDeps{})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/refresh", map[string]any{}, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "refresh_token: is required", decodeError(t, rec).Error)
	})
}

func TestForgotPassword(t *testing.T) {
	t.Parallel()

	for name, err := range map[string]error{
		"known email":    nil,
		"backend failed": errors.New("smtp: connection refused"),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			provider := &mocks.MockAuthProvider{Err: err}
			router := newTestRouter(t, testDeps{provider: provider})

			rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/forgot-password",
				map[string]any{"email": "ada@example.com"}, "")

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, 1, provider.CallCount("ForgotPassword"))
		})
	}

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, testDeps{})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/forgot-password",
			map[string]any{"email": "nope"}, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	t.Run("sets new password", func(t *testing.T) {
		t.Parallel()
		provider := &mocks.MockAuthProvider{
			ResetPasswordFn: func(_ context.Context, token, pw string) error {
				assert.Equal(t, "reset-token", token)
				assert.Equal(t, "new-password", pw)
				return nil
			},
		}
		router := newTestRouter(t, testDeps{provider: provider})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/reset-password",
			map[string]any{"token": "reset-token", "password": "new-password"}, "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("used token", func(t *testing.T) {
		t.Parallel()
		provider := &mocks.MockAuthProvider{Err: domain.ErrResetTokenInvalid}
		router := newTestRouter(t, testDeps{provider: provider})

		rec := doRequestWithToken(t, router, http.MethodPost, "/api/auth/reset-password",
			map[string]any{"token": "reset-token", "password": "new-password"}, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "token: invalid or expired reset token", decodeError(t, rec).Error)
	})
}
