package api

import (
	"net/http"
	"strconv"

	"github.com/opensource-finance/defaultdesk/internal/domain"
)

// ListNotifications handles GET /notifications?limit=, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	notifications := []domain.Notification{}
	if h.feed != nil {
		notifications = h.feed.Recent(limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
	})
}
