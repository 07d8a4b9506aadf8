package http

import (
	"log/slog"
	"net/http"

	"github.com/Bobby-coder/CodeNation/internal/service"
	apperrors "github.com/Bobby-coder/CodeNation/pkg/errors"
)

// UserHandler handles the authenticated profile endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// UpdateInfoRequest is the JSON request body for profile updates. Empty
// fields are left unchanged.
type UpdateInfoRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdatePasswordRequest is the JSON request body for password changes.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateAvatarRequest is the JSON request body for profile picture changes.
type UpdateAvatarRequest struct {
	Avatar string `json:"avatar"`
}

// Me handles GET /api/v1/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, apperrors.Unauthorized("Please login to access this resource"), h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"user": user})
}

// UpdateInfo handles PUT /api/v1/update-user-info
func (h *UserHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, apperrors.Unauthorized("Please login to access this resource"), h.logger)
		return
	}

	var req UpdateInfoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.UpdateInfo(r.Context(), principal.ID, service.UpdateInfoInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "User info updated successfully", map[string]any{"user": user})
}

// UpdatePassword handles PUT /api/v1/update-user-password
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, apperrors.Unauthorized("Please login to access this resource"), h.logger)
		return
	}

	var req UpdatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.UpdatePassword(r.Context(), principal.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Password updated successfully", map[string]any{"user": user})
}

// UpdateAvatar handles PUT /api/v1/update-user-profile-picture
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, apperrors.Unauthorized("Please login to access this resource"), h.logger)
		return
	}

	var req UpdateAvatarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.UpdateAvatar(r.Context(), principal.ID, req.Avatar)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Profile Picture updated successfully", map[string]any{"user": user})
}
