package http

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/thrivebrands/beaconiq/internal/application"
)

func (h *Handler) analyticsReport(w http.ResponseWriter, r *http.Request) {
	report := chi.URLParam(r, "report")
	if !slices.Contains(application.AnalyticsReports(), report) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown analytics report")
		return
	}
	filters, err := filtersFromRequest(r)
	if err != nil {
		writeMappedError(r.Context(), w, "analytics_report", err)
		return
	}
	raw, err := h.service.AnalyticsReport(r.Context(), report, filters)
	if err != nil {
		writeMappedError(r.Context(), w, "analytics_report", err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

func (h *Handler) filterOptions(w http.ResponseWriter, r *http.Request) {
	raw, err := h.service.FilterOptions(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "filter_options", err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	filters, err := filtersFromRequest(r)
	if err != nil {
		writeMappedError(r.Context(), w, "dashboard", err)
		return
	}
	bundle, err := h.service.Dashboard(r.Context(), filters)
	if err != nil {
		writeMappedError(r.Context(), w, "dashboard", err)
		return
	}
	writeSuccess(w, http.StatusOK, bundle)
}

func (h *Handler) invalidateAnalytics(w http.ResponseWriter, r *http.Request) {
	if err := h.service.InvalidateAnalytics(r.Context(), actorFromRequest(r)); err != nil {
		writeMappedError(r.Context(), w, "invalidate_analytics", err)
		return
	}
	writeMessage(w, http.StatusOK, "analytics cache cleared")
}

func (h *Handler) requestDataSync(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.RequestDataSync(r.Context(), actorFromRequest(r))
	if err != nil {
		writeMappedError(r.Context(), w, "request_data_sync", err)
		return
	}
	writeJSON(w, http.StatusAccepted, status)
}
