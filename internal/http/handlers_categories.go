package httpx

import (
	"errors"
	"net/http"

	"github.com/techinsights/kbsite/internal/data"
	"github.com/techinsights/kbsite/internal/domain/model"
	"github.com/techinsights/kbsite/internal/service"
)

// CategoryHandlers provides HTTP handlers for category-related operations.
type CategoryHandlers struct {
	Svc *service.CategoryService
}

// PublicList returns all categories with their published article counts.
// GET /api/categories.
func (h *CategoryHandlers) PublicList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Svc.List(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// GetByID handles requests to get a category by ID.
// GET /api/admin/categories/{id}.
func (h *CategoryHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("category id is required")},
		)
		return
	}

	category, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrCategoryNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "category_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, category)
}

// Create handles admin requests to create a new category.
// POST /api/admin/categories.
func (h *CategoryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCategoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	category, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrCategoryExists):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "name_conflict", Err: err})
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "create_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusCreated, category)
}

// Update handles admin requests to update a category.
// PUT /api/admin/categories/{id}.
func (h *CategoryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("category id is required")},
		)
		return
	}

	var req model.UpdateCategoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	category, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrCategoryNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "category_not_found", Err: err})
		case errors.Is(err, data.ErrCategoryExists):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "name_conflict", Err: err})
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "update_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusOK, category)
}

// Delete handles admin requests to delete a category. Articles keep their
// category name; only the category record goes away.
// DELETE /api/admin/categories/{id}.
func (h *CategoryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("category id is required")},
		)
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "delete_failed", Err: err})
		return
	}

	if !deleted {
		WriteError(
			w,
			ErrorParams{Code: http.StatusNotFound, ErrCode: "category_not_found", Err: errors.New("category not found")},
		)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
