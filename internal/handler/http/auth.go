package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Bobby-coder/CodeNation/internal/service"
	"github.com/Bobby-coder/CodeNation/internal/session"
	apperrors "github.com/Bobby-coder/CodeNation/pkg/errors"
	"github.com/Bobby-coder/CodeNation/pkg/validator"
)

// AuthHandler handles registration, activation, login, logout, token refresh,
// social auth, and the password reset flow.
type AuthHandler struct {
	service  *service.UserService
	sessions *session.Manager
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.UserService, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, sessions: sessions, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for registration. Field presence
// is validated by the service so missing fields produce the combined
// "Please enter your ..." messages.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ActivationRequest is the JSON request body for account activation.
type ActivationRequest struct {
	ActivationToken string `json:"activation_token" validate:"required"`
	ActivationCode  string `json:"activation_code" validate:"required"`
}

// LoginRequest is the JSON request body for password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SocialAuthRequest is the JSON request body for passwordless OAuth login.
type SocialAuthRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// ResetPasswordLinkRequest is the JSON request body for requesting a reset link.
type ResetPasswordLinkRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the JSON request body for completing a reset.
type ResetPasswordRequest struct {
	ResetPasswordToken string `json:"reset_password_token"`
	NewPassword        string `json:"new_password"`
	ConfirmPassword    string `json:"confirm_password"`
}

// --- Handlers ---

// Register handles POST /api/v1/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	activationToken, err := h.service.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated,
		fmt.Sprintf("Please check your email %s to activate your account", req.Email),
		map[string]any{"activation_token": activationToken},
	)
}

// Activate handles POST /api/v1/activation
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req ActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.service.Activate(r.Context(), req.ActivationToken, req.ActivationCode)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, "Your account is activated successfully", map[string]any{"user": user})
}

// Login handles POST /api/v1/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	pair, err := h.sessions.Issue(r.Context(), user, w)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Logged in successfully", map[string]any{
		"user":         user,
		"access_token": pair.AccessToken,
	})
}

// SocialAuth handles POST /api/v1/social-auth
func (h *AuthHandler) SocialAuth(w http.ResponseWriter, r *http.Request) {
	var req SocialAuthRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.SocialAuth(r.Context(), service.SocialAuthInput{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	pair, err := h.sessions.Issue(r.Context(), user, w)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Logged in successfully", map[string]any{
		"user":         user,
		"access_token": pair.AccessToken,
	})
}

// Logout handles GET /api/v1/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, apperrors.Unauthorized("Please login to access this resource"), h.logger)
		return
	}

	if err := h.sessions.Logout(r.Context(), user.ID, w); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// Refresh handles GET /api/v1/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(session.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, r, apperrors.BadRequest("Refresh token not found"), h.logger)
		return
	}

	accessToken, err := h.sessions.Refresh(r.Context(), cookie.Value, w)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Access & Refresh token updated successfully", map[string]any{
		"access_token": accessToken,
	})
}

// ResetPasswordLink handles POST /api/v1/reset-password
func (h *AuthHandler) ResetPasswordLink(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Email sent successfully, please check your email to reset password", nil)
}

// ResetPassword handles PUT /api/v1/update-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.ResetPasswordToken, req.NewPassword, req.ConfirmPassword); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Password reset successfully", nil)
}
