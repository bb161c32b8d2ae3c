package api

import (
	"log/slog"
	"net/http"

	"github.com/Ketaiwk/10xcards/internal/api/shared"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/redact"
	"github.com/Ketaiwk/10xcards/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	provider auth.Provider
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(provider auth.Provider, logger *slog.Logger) *AuthHandler {
	if provider == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("provider cannot be nil for AuthHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		provider: provider,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles the /auth/register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.provider.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, user)
}

// Login handles the /auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.provider.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to log in")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newAuthResponse(pair))
}

// Logout handles the /auth/logout endpoint. It requires authentication; the
// bearer token of the request is revoked.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.provider.Logout(r.Context(), shared.AccessTokenFromContext(r.Context())); err != nil {
		HandleAPIError(w, r, err, "Failed to log out")
		return
	}

	log.Info("user logged out", slog.String("user_id", userID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// RefreshToken handles the /auth/refresh endpoint.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.provider.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newAuthResponse(pair))
}

// ForgotPassword handles the /auth/forgot-password endpoint. Every valid
// request is answered with 204, whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ForgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.provider.ForgotPassword(r.Context(), req.Email); err != nil {
		log.Error("password reset request failed", slog.String("error", redact.Error(err)))
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword handles the /auth/reset-password endpoint.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.provider.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		HandleAPIError(w, r, err, "Failed to reset password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
