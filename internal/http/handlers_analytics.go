package httpx

import (
	"net/http"

	"github.com/techinsights/kbsite/internal/service"
)

// AnalyticsHandlers provides HTTP handlers for the admin dashboard counters.
type AnalyticsHandlers struct {
	Svc *service.AnalyticsService
}

// Site returns aggregate site counters.
// GET /api/admin/analytics.
func (h *AnalyticsHandlers) Site(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.Svc.SiteAnalytics(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "analytics_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, analytics)
}
