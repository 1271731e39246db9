// Package api exposes the defaulter list view, the risk rule editor and
// the notification feed over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/opensource-finance/defaultdesk/internal/notify"
	"github.com/opensource-finance/defaultdesk/internal/portfolio"
	"github.com/opensource-finance/defaultdesk/internal/riskconfig"
)

// Deps are the components the handlers serve. Store, Bus, Notifier and
// Feed may be nil.
type Deps struct {
	View     *portfolio.View
	Editor   *riskconfig.Editor
	Notifier riskconfig.Notifier
	Feed     *notify.Feed
	Store    domain.Store
	Bus      domain.EventBus
	Version  string
}

// Handler holds dependencies for API handlers.
type Handler struct {
	view     *portfolio.View
	editor   *riskconfig.Editor
	notifier riskconfig.Notifier
	feed     *notify.Feed
	store    domain.Store
	bus      domain.EventBus
	version  string
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		view:     deps.View,
		editor:   deps.Editor,
		notifier: deps.Notifier,
		feed:     deps.Feed,
		store:    deps.Store,
		bus:      deps.Bus,
		version:  deps.Version,
	}
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			slog.Warn("settings store unhealthy", "error", err)
			status = "degraded"
		}
	}

	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			slog.Warn("event bus unhealthy", "error", err)
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.view == nil || h.editor == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"ready": "false",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, riskconfig.ErrNoStore):
		status = http.StatusServiceUnavailable
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"path", r.URL.Path,
			"request_id", GetRequestID(r.Context()),
			"error", err,
		)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}

var errInvalidBody = fmt.Errorf("%w: invalid JSON request body", domain.ErrInvalidInput)
