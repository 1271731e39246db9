package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opensource-finance/defaultdesk/internal/domain"
)

// RiskConfigResponse is the editor state returned by GET /risk-config.
type RiskConfigResponse struct {
	ActiveCategoryID string                   `json:"activeCategoryId"`
	Active           domain.RiskCategory      `json:"active"`
	Categories       []domain.RiskCategory    `json:"categories"`
	Summary          []domain.CategorySummary `json:"summary"`
}

// SetActiveRequest is the request body for PUT /risk-config/active.
type SetActiveRequest struct {
	CategoryID string `json:"categoryId"`
}

// UpdateConditionRequest is the request body for PATCH /risk-config/conditions/{id}.
type UpdateConditionRequest struct {
	Attribute domain.ConditionAttribute `json:"attribute"`
	Value     any                       `json:"value"`
}

// GetRiskConfig handles GET /risk-config.
func (h *Handler) GetRiskConfig(w http.ResponseWriter, r *http.Request) {
	active := h.editor.Active()
	writeJSON(w, http.StatusOK, RiskConfigResponse{
		ActiveCategoryID: active.ID,
		Active:           active,
		Categories:       h.editor.Categories(),
		Summary:          h.editor.Summary(),
	})
}

// SetActiveCategory handles PUT /risk-config/active.
func (h *Handler) SetActiveCategory(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cat, err := h.editor.SetActive(req.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// ListFields handles GET /risk-config/fields.
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categoryId": h.editor.ActiveID(),
		"fields":     h.editor.Fields(),
	})
}

// AddCondition handles POST /risk-config/conditions.
func (h *Handler) AddCondition(w http.ResponseWriter, r *http.Request) {
	cond, cat := h.editor.AddCondition()
	writeJSON(w, http.StatusCreated, map[string]any{
		"condition": cond,
		"category":  cat,
	})
}

// UpdateCondition handles PATCH /risk-config/conditions/{id}.
func (h *Handler) UpdateCondition(w http.ResponseWriter, r *http.Request) {
	var req UpdateConditionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cat, err := h.editor.UpdateCondition(chi.URLParam(r, "id"), req.Attribute, req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// RemoveCondition handles DELETE /risk-config/conditions/{id}.
func (h *Handler) RemoveCondition(w http.ResponseWriter, r *http.Request) {
	cat, err := h.editor.RemoveCondition(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// SaveRiskConfig handles POST /risk-config/save.
func (h *Handler) SaveRiskConfig(w http.ResponseWriter, r *http.Request) {
	n, err := h.editor.Save(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notification": n,
	})
}

// GetSavedRiskConfig handles GET /risk-config/saved.
func (h *Handler) GetSavedRiskConfig(w http.ResponseWriter, r *http.Request) {
	cats, err := h.editor.Saved(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": cats,
	})
}

// PreviewRiskConfig handles POST /risk-config/preview.
func (h *Handler) PreviewRiskConfig(w http.ResponseWriter, r *http.Request) {
	previews, n := h.editor.Preview(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":   previews,
		"notification": n,
	})
}
