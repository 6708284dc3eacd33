package httpx

import (
	"errors"
	"net/http"

	"github.com/techinsights/kbsite/internal/service"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
	apperrors "github.com/techinsights/kbsite/internal/errors"
)

// UserHandlers provides HTTP handlers for the admin user manager.
type UserHandlers struct {
	Svc *service.RoleService
}

const maxUserListLimit = 200 // Maximum number of users that can be requested in one call

// List returns profiles with their effective roles.
// GET /api/admin/users.
func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, maxUserListLimit)

	users, err := h.Svc.ListUsers(r.Context(), limit, offset)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}

// setRoleRequest is the payload for the role update endpoint.
type setRoleRequest struct {
	Role domainauth.Role `json:"role"`
}

// SetRole updates the role of a user.
// PUT /api/admin/users/{id}/role.
func (h *UserHandlers) SetRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("user id is required")},
		)
		return
	}

	var req setRoleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if !req.Role.Valid() {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("invalid role"),
		})
		return
	}

	// Demoting yourself would lock the current admin out mid-session.
	if session, ok := GetSessionFromContext(r.Context()); ok {
		if session.UserID == id && req.Role != domainauth.RoleAdmin {
			WriteError(w, ErrorParams{
				Code:    http.StatusConflict,
				ErrCode: "self_demotion",
				Err:     errors.New("cannot remove your own admin role"),
			})
			return
		}
	}

	asg, err := h.Svc.SetRole(r.Context(), id, req.Role)
	if err != nil {
		if apperrors.IsForeignKey(err) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "user_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "update_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, asg)
}
