package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signGoTrueToken(t *testing.T, sub string, exp time.Time, jti string) string {
	t.Helper()
	claims := goTrueClaims{
		SessionID: uuid.NewString(),
		Email:     "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
			ID:        jti,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newGoTrueFixture(t *testing.T, handler http.HandlerFunc) *GoTrueProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testAuthConfig(testSecret)
	cfg.GoTrueURL = srv.URL + "/auth/v1/"
	cfg.GoTrueAPIKey = "anon-key"
	p, err := NewGoTrueProvider(cfg, srv.Client(), nil, nil)
	require.NoError(t, err)
	return p
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewGoTrueProvider_Validation(t *testing.T) {
	t.Parallel()
	_, err := NewGoTrueProvider(testAuthConfig(testSecret), nil, nil, nil)
	assert.Error(t, err)

	cfg := testAuthConfig("short")
	cfg.GoTrueURL = "http://localhost:9999"
	_, err = NewGoTrueProvider(cfg, nil, nil, nil)
	assert.Error(t, err)
}

func TestGoTrueProvider_Register(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	p := newGoTrueFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] == "taken@example.com" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"code": 422, "error_code": "user_already_exists", "msg": "User already registered",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": userID, "email": body["email"]})
	})

	user, err := p.Register(context.Background(), RegisterInput{Email: "ada@example.com", Password: "password123", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "Ada", user.Name)

	_, err = p.Register(context.Background(), RegisterInput{Email: "taken@example.com", Password: "password123"})
	assert.ErrorIs(t, err, store.ErrEmailExists)

	_, err = p.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestGoTrueProvider_LoginAndRefresh(t *testing.T) {
	t.Parallel()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	p := newGoTrueFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Query().Get("grant_type") {
		case "password":
			if body["password"] != "password123" {
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"error": "invalid_grant", "error_description": "Invalid login credentials",
				})
				return
			}
		case "refresh_token":
			if body["refresh_token"] != "r1" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "a1", "refresh_token": "r2", "expires_in": 3600, "expires_at": exp.Unix(),
		})
	})
	ctx := context.Background()

	pair, err := p.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "a1", pair.AccessToken)
	assert.Equal(t, "r2", pair.RefreshToken)
	assert.Equal(t, exp.Unix(), pair.ExpiresAt.Unix())

	_, err = p.Login(ctx, "ada@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	pair, err = p.Refresh(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r2", pair.RefreshToken)

	_, err = p.Refresh(ctx, "stale")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestGoTrueProvider_ServerErrorIsNotCredentialError(t *testing.T) {
	t.Parallel()
	p := newGoTrueFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "boom"})
	})

	_, err := p.Login(context.Background(), "ada@example.com", "password123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "boom")
}

func TestGoTrueProvider_AuthenticateAndLogout(t *testing.T) {
	t.Parallel()
	var logoutCalls atomic.Int32
	p := newGoTrueFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/logout" {
			logoutCalls.Add(1)
			assert.Contains(t, r.Header.Get("Authorization"), "Bearer ")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	ctx := context.Background()
	userID := uuid.New()

	token := signGoTrueToken(t, userID.String(), time.Now().Add(time.Hour), "")
	claims, err := p.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, HashToken(token), claims.ID)

	withJTI := signGoTrueToken(t, userID.String(), time.Now().Add(time.Hour), "jti-1")
	claims, err = p.Authenticate(ctx, withJTI)
	require.NoError(t, err)
	assert.Equal(t, "jti-1", claims.ID)

	require.NoError(t, p.Logout(ctx, token))
	assert.Equal(t, int32(1), logoutCalls.Load())
	_, err = p.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	expired := signGoTrueToken(t, userID.String(), time.Now().Add(-time.Hour), "")
	_, err = p.Authenticate(ctx, expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	badSub := signGoTrueToken(t, "not-a-uuid", time.Now().Add(time.Hour), "")
	_, err = p.Authenticate(ctx, badSub)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGoTrueProvider_PasswordRecovery(t *testing.T) {
	t.Parallel()
	var (
		mu        sync.Mutex
		recovered string
	)
	p := newGoTrueFixture(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch r.URL.Path {
		case "/auth/v1/recover":
			mu.Lock()
			recovered = body["email"]
			mu.Unlock()
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"msg": "rate limited"})
		case "/auth/v1/verify":
			assert.Equal(t, "recovery", body["type"])
			if body["token_hash"] != "valid" {
				writeJSON(w, http.StatusForbidden, map[string]string{"msg": "Token has expired or is invalid"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "session-token"})
		case "/auth/v1/user":
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
			assert.Equal(t, "new-password-1", body["password"])
			writeJSON(w, http.StatusOK, map[string]any{"id": uuid.New()})
		}
	})
	ctx := context.Background()

	require.NoError(t, p.ForgotPassword(ctx, "ada@example.com"))
	mu.Lock()
	assert.Equal(t, "ada@example.com", recovered)
	mu.Unlock()

	require.NoError(t, p.ResetPassword(ctx, "valid", "new-password-1"))
	assert.ErrorIs(t, p.ResetPassword(ctx, "expired", "new-password-1"), domain.ErrResetTokenInvalid)
	assert.ErrorIs(t, p.ResetPassword(ctx, "valid", "short"), domain.ErrPasswordTooShort)
}
