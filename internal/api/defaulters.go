package api

import (
	"log/slog"
	"net/http"

	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/opensource-finance/defaultdesk/internal/portfolio"
)

// DefaulterListResponse is the response for GET /defaulters.
type DefaulterListResponse struct {
	Rows    []portfolio.Row `json:"rows"`
	Showing int             `json:"showing"`
	Total   int             `json:"total"`
	Metrics domain.Metrics  `json:"metrics"`
}

// ListDefaulters handles GET /defaulters?search=&risk=.
func (h *Handler) ListDefaulters(w http.ResponseWriter, r *http.Request) {
	risk, err := portfolio.ParseRiskFilter(r.URL.Query().Get("risk"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	page := h.view.Render(portfolio.Query{
		Search: r.URL.Query().Get("search"),
		Risk:   risk,
	})

	writeJSON(w, http.StatusOK, DefaulterListResponse{
		Rows:    portfolio.Present(page.Rows),
		Showing: page.Showing,
		Total:   page.Total,
		Metrics: page.Metrics,
	})
}

// DefaulterMetrics handles GET /defaulters/metrics.
func (h *Handler) DefaulterMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.Metrics())
}

// ExportDefaulters handles POST /defaulters/export. Nothing is exported;
// the request only raises an "Export Started" notification.
func (h *Handler) ExportDefaulters(w http.ResponseWriter, r *http.Request) {
	n := domain.Notification{
		Topic:       domain.TopicExportRequested,
		Title:       "Export Started",
		Description: "Your data is being exported. Download will start shortly.",
	}

	if h.notifier != nil {
		sent, err := h.notifier.Notify(r.Context(), n.Topic, n.Title, n.Description)
		if err != nil {
			slog.Warn("failed to publish export notification", "error", err)
		}
		n = sent
	}

	slog.Info("export requested", "request_id", GetRequestID(r.Context()))
	writeJSON(w, http.StatusAccepted, map[string]any{
		"notification": n,
	})
}
