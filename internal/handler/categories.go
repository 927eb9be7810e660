package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/communitysquad/eventhub/internal/model"
	"github.com/communitysquad/eventhub/internal/service"
)

// CategoryHandler exposes category CRUD.
type CategoryHandler struct {
	svc *service.CategoryService
}

// NewCategoryHandler constructs a CategoryHandler.
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	respond(w, http.StatusOK, "Categories retrieved successfully", categories)
}

// Get handles GET /categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	category, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Category retrieved successfully", category)
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCategoryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusCreated, "Category created", category)
}

// Update handles PATCH /categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	var req model.CreateCategoryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Category updated", category)
}

// Remove handles DELETE /categories/{id}.
func (h *CategoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := h.svc.Remove(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Category removed", true)
}
