package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Ketaiwk/10xcards/internal/config"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GoTrueProvider delegates account management to a hosted GoTrue-compatible
// auth service (Supabase Auth). Access tokens are validated locally with the
// shared HS256 secret.
type GoTrueProvider struct {
	baseURL    string
	apiKey     string
	signingKey []byte
	client     *http.Client
	denylist   Denylist
	timeFunc   func() time.Time
	logger     *slog.Logger
}

var _ Provider = (*GoTrueProvider)(nil)

// NewGoTrueProvider creates a GoTrueProvider. A nil denylist defaults to an
// in-memory one and a nil client to one with a 10 s timeout.
func NewGoTrueProvider(cfg config.AuthConfig, client *http.Client, denylist Denylist, logger *slog.Logger) (*GoTrueProvider, error) {
	if cfg.GoTrueURL == "" {
		return nil, errors.New("gotrue url is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 characters")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if denylist == nil {
		denylist = NewMemoryDenylist()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoTrueProvider{
		baseURL:    strings.TrimRight(cfg.GoTrueURL, "/"),
		apiKey:     cfg.GoTrueAPIKey,
		signingKey: []byte(cfg.JWTSecret),
		client:     client,
		denylist:   denylist,
		timeFunc:   time.Now,
		logger:     logger.With(slog.String("component", "gotrue_auth_provider")),
	}, nil
}

type goTrueUser struct {
	ID           uuid.UUID         `json:"id"`
	Email        string            `json:"email"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	UserMetadata map[string]string `json:"user_metadata"`
}

type goTrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	ExpiresAt    int64      `json:"expires_at"`
	User         goTrueUser `json:"user"`
}

type goTrueError struct {
	Status    int    `json:"-"`
	Code      string `json:"error_code"`
	Msg       string `json:"msg"`
	Message   string `json:"message"`
	ErrorName string `json:"error"`
	Desc      string `json:"error_description"`
}

func (e *goTrueError) text() string {
	for _, s := range []string{e.Desc, e.Msg, e.Message, e.ErrorName, e.Code} {
		if s != "" {
			return s
		}
	}
	return http.StatusText(e.Status)
}

func (e *goTrueError) Error() string {
	return fmt.Sprintf("gotrue: status %d: %s", e.Status, e.text())
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (p *GoTrueProvider) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("gotrue request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		gerr := &goTrueError{Status: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(gerr)
		return gerr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gotrue response: %w", err)
	}
	return nil
}

func (s *goTrueSession) pair() *TokenPair {
	exp := time.Unix(s.ExpiresAt, 0).UTC()
	if s.ExpiresAt == 0 {
		exp = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second).UTC()
	}
	return &TokenPair{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, ExpiresAt: exp}
}

// Register implements Provider.
func (p *GoTrueProvider) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(in.Email, in.Name, in.Password)
	if err != nil {
		return nil, err
	}

	var out goTrueUser
	err = p.do(ctx, http.MethodPost, "/signup", "", map[string]any{
		"email":    user.Email,
		"password": in.Password,
		"data":     map[string]string{"name": user.Name},
	}, &out)
	if err != nil {
		var gerr *goTrueError
		if errors.As(err, &gerr) && (gerr.Status == http.StatusUnprocessableEntity || gerr.Status == http.StatusBadRequest) {
			if strings.Contains(strings.ToLower(gerr.text()), "already") {
				return nil, store.ErrEmailExists
			}
			return nil, domain.NewValidationError("", gerr.text(), err)
		}
		return nil, err
	}

	return &domain.User{
		ID:        out.ID,
		Email:     out.Email,
		Name:      user.Name,
		CreatedAt: out.CreatedAt,
		UpdatedAt: out.UpdatedAt,
	}, nil
}

// Login implements Provider.
func (p *GoTrueProvider) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var session goTrueSession
	err := p.do(ctx, http.MethodPost, "/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		if isClientError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	logger.FromContextOrDefault(ctx, p.logger).Info("user logged in",
		slog.String("user_id", session.User.ID.String()))
	return session.pair(), nil
}

// Refresh implements Provider.
func (p *GoTrueProvider) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var session goTrueSession
	err := p.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", map[string]string{
		"refresh_token": refreshToken,
	}, &session)
	if err != nil {
		if isClientError(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return session.pair(), nil
}

// Logout implements Provider. The token is revoked locally as well, since the
// hosted service does not invalidate already issued access tokens.
func (p *GoTrueProvider) Logout(ctx context.Context, accessToken string) error {
	claims, err := p.Authenticate(ctx, accessToken)
	if err != nil {
		return err
	}
	if err := p.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil); err != nil {
		logger.FromContextOrDefault(ctx, p.logger).Warn("gotrue logout failed",
			slog.String("error", err.Error()))
	}
	return p.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt)
}

// ForgotPassword implements Provider.
func (p *GoTrueProvider) ForgotPassword(ctx context.Context, email string) error {
	err := p.do(ctx, http.MethodPost, "/recover", "", map[string]string{"email": email}, nil)
	if err != nil {
		logger.FromContextOrDefault(ctx, p.logger).Warn("gotrue recover failed",
			slog.String("error", err.Error()))
	}
	return nil
}

// ResetPassword implements Provider. The recovery token is verified for a
// session, which is then used to set the new password.
func (p *GoTrueProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrResetTokenInvalid
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	var session goTrueSession
	err := p.do(ctx, http.MethodPost, "/verify", "", map[string]string{
		"type":       "recovery",
		"token_hash": token,
	}, &session)
	if err != nil {
		if isClientError(err) {
			return domain.ErrResetTokenInvalid
		}
		return err
	}

	err = p.do(ctx, http.MethodPut, "/user", session.AccessToken, map[string]string{
		"password": newPassword,
	}, nil)
	if err != nil {
		if isClientError(err) {
			var gerr *goTrueError
			errors.As(err, &gerr)
			return domain.NewValidationError("password", gerr.text(), err)
		}
		return err
	}
	return nil
}

type goTrueClaims struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticate implements Provider.
func (p *GoTrueProvider) Authenticate(ctx context.Context, accessToken string) (*Claims, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	now := p.timeFunc()
	token, err := jwt.ParseWithClaims(accessToken, &goTrueClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return p.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(2*time.Minute),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	gc, ok := token.Claims.(*goTrueClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(gc.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		UserID:    userID,
		TokenType: TokenTypeAccess,
		Subject:   gc.Subject,
		ExpiresAt: gc.ExpiresAt.Time,
		ID:        tokenID(gc, accessToken),
	}
	if gc.IssuedAt != nil {
		claims.IssuedAt = gc.IssuedAt.Time
	}

	revoked, err := p.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check denylist: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// tokenID picks a stable identifier for denylisting. Hosted tokens may lack a
// jti, in which case the token hash is used.
func tokenID(c *goTrueClaims, raw string) string {
	if c.ID != "" {
		return c.ID
	}
	return HashToken(raw)
}

func isClientError(err error) bool {
	var gerr *goTrueError
	return errors.As(err, &gerr) && gerr.Status >= 400 && gerr.Status < 500
}
