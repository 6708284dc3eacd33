// Package httpx provides HTTP handlers and utilities for the knowledge base API.
package httpx

import (
	"errors"
	"net/http"

	"github.com/techinsights/kbsite/internal/data"
	"github.com/techinsights/kbsite/internal/domain/model"
	"github.com/techinsights/kbsite/internal/service"
)

// ArticleHandlers provides HTTP handlers for article-related operations.
type ArticleHandlers struct {
	Svc *service.ArticleService
}

const (
	defaultArticleListLimit = 20
	maxArticleListLimit     = 100 // Maximum number of articles that can be requested in one call
)

// PublicList handles the public article listing. Only published articles are
// ever returned here; the status query param is ignored.
// GET /api/articles.
func (h *ArticleHandlers) PublicList(w http.ResponseWriter, r *http.Request) {
	opts := parseArticleListOptions(r, false)

	articles, err := h.Svc.ListPublished(r.Context(), opts)
	if err != nil {
		writeArticleListErr(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"articles": articles,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
	})
}

// PublicGet returns a single published article with its engagement counters.
// The read counts a view. Drafts are indistinguishable from missing articles.
// GET /api/articles/{id}.
func (h *ArticleHandlers) PublicGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("article id is required")},
		)
		return
	}

	article, engagement, err := h.Svc.GetPublished(r.Context(), id, UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, data.ErrArticleNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "article_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"article":    article,
		"engagement": engagement,
	})
}

// Like toggles the caller's like on an article. Requires authentication.
// POST /api/articles/{id}/like.
func (h *ArticleHandlers) Like(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("article id is required")},
		)
		return
	}

	userID := UserIDFromContext(r.Context())
	if userID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	liked, err := h.Svc.ToggleLike(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, data.ErrArticleNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "article_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "like_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// List handles the admin article listing, drafts included.
// GET /api/admin/articles.
func (h *ArticleHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts := parseArticleListOptions(r, true)

	articles, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		writeArticleListErr(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"articles": articles,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
	})
}

// GetByID handles admin requests to get an article by ID regardless of status.
// GET /api/admin/articles/{id}.
func (h *ArticleHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("article id is required")},
		)
		return
	}

	article, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrArticleNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "article_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, article)
}

// Create handles admin requests to create a new article.
// POST /api/admin/articles.
func (h *ArticleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateArticleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	article, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrCategoryNotFound):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "unknown_category", Err: err})
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "create_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusCreated, article)
}

// Update handles admin requests to update an article.
// PUT /api/admin/articles/{id}.
func (h *ArticleHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("article id is required")},
		)
		return
	}

	var req model.UpdateArticleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	article, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrArticleNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "article_not_found", Err: err})
		case errors.Is(err, data.ErrCategoryNotFound):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "unknown_category", Err: err})
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "update_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusOK, article)
}

// Delete handles admin requests to delete an article.
// DELETE /api/admin/articles/{id}.
func (h *ArticleHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("article id is required")},
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
			ErrorParams{Code: http.StatusNotFound, ErrCode: "article_not_found", Err: errors.New("article not found")},
		)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// parseArticleListOptions extracts pagination, filters, and sort parameters.
// The status filter is only honored on the admin surface.
func parseArticleListOptions(r *http.Request, includeStatus bool) model.ArticlesListOptions {
	limit, offset := ParseLimitOffset(r, defaultArticleListLimit, maxArticleListLimit)
	opts := model.ArticlesListOptions{
		Limit:  limit,
		Offset: offset,
		Sort:   r.URL.Query().Get("sort"),
		Dir:    r.URL.Query().Get("dir"),
	}

	if q := r.URL.Query().Get("q"); q != "" {
		opts.Q = &q
	}
	if category := r.URL.Query().Get("category"); category != "" {
		opts.Category = &category
	}
	if featured := r.URL.Query().Get("featured"); featured != "" {
		val := featured == "true" || featured == "1"
		opts.Featured = &val
	}
	if includeStatus {
		if status, ok := model.ParseArticleStatus(r.URL.Query().Get("status")); ok {
			opts.Status = &status
		}
	}

	return opts
}

func writeArticleListErr(w http.ResponseWriter, err error) {
	if isValidationError(err) {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}
	WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
}
