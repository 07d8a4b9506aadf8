package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Bobby-coder/CodeNation/internal/service"
	"github.com/Bobby-coder/CodeNation/pkg/validator"
)

// AdminHandler handles the admin-only user management endpoints.
type AdminHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.UserService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

// UpdateRoleRequest is the JSON request body for role changes.
type UpdateRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// ListUsers handles GET /api/v1/all-users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"users": users})
}

// UpdateRole handles PUT /api/v1/update-role
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.service.UpdateRole(r.Context(), req.UserID, req.Role)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "User role updated successfully", map[string]any{"user": user})
}

// DeleteUser handles DELETE /api/v1/delete-user/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, fmt.Sprintf("User of %s deleted successfully", userID), nil)
}
