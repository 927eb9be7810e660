package handler

import (
	"net/http"

	"github.com/communitysquad/eventhub/internal/model"
	"github.com/communitysquad/eventhub/internal/service"
)

// AuthHandler exposes sign-up, login and token refresh.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Register(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusCreated, "User signed up", result)
}

// Login handles POST /auth/login, the shared-secret token exchange.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "User logged in", result)
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Token refreshed", map[string]string{"token": token})
}

// Check handles GET /auth/check, a trivial liveness probe for clients.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "OK", true)
}
