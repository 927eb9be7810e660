package handler

import (
	"net/http"

	"github.com/communitysquad/eventhub/internal/model"
	"github.com/communitysquad/eventhub/internal/service"
)

// UserHandler exposes the admin user listing and role management.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	respond(w, http.StatusOK, "Users retrieved successfully", users)
}

// UpdateRole handles PATCH /users/update-role, toggling a role assignment.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateUserRoleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	assignment, err := h.svc.ToggleRole(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "User role updated successfully", assignment)
}
