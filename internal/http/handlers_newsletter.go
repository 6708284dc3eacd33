package httpx

import (
	"errors"
	"net/http"

	"github.com/techinsights/kbsite/internal/data"
	"github.com/techinsights/kbsite/internal/domain/model"
	"github.com/techinsights/kbsite/internal/service"
)

// NewsletterHandlers provides HTTP handlers for newsletter operations.
type NewsletterHandlers struct {
	Svc *service.NewsletterService
}

const maxSubscriberListLimit = 200 // Maximum number of subscribers that can be requested in one call

// Subscribe handles newsletter signups from the public site.
// POST /api/newsletter/subscribe.
func (h *NewsletterHandlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req model.SubscribeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sub, err := h.Svc.Subscribe(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrAlreadySubscribed):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "already_subscribed", Err: err})
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "subscribe_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusCreated, sub)
}

// Unsubscribe removes a newsletter signup.
// POST /api/newsletter/unsubscribe.
func (h *NewsletterHandlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req model.SubscribeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	removed, err := h.Svc.Unsubscribe(r.Context(), req.Email)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "unsubscribe_failed", Err: err})
		return
	}

	if !removed {
		WriteError(
			w,
			ErrorParams{Code: http.StatusNotFound, ErrCode: "subscriber_not_found", Err: errors.New("subscriber not found")},
		)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"unsubscribed": true})
}

// List returns a page of subscribers for the admin surface.
// GET /api/admin/subscribers.
func (h *NewsletterHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, maxSubscriberListLimit)

	subscribers, err := h.Svc.ListSubscribers(r.Context(), limit, offset)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	total, err := h.Svc.CountSubscribers(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "count_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"subscribers": subscribers,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}
