package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/orderwatch/internal/model"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 500
)

type alertLister interface {
	List(ctx context.Context, limit int) ([]model.Alert, error)
}

type AlertHandler struct {
	repo alertLister
}

func NewAlertHandler(repo alertLister) *AlertHandler {
	return &AlertHandler{repo: repo}
}

func (h *AlertHandler) RegisterRoutes(r chi.Router) {
	r.Get("/alerts", h.List)
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAlertLimit)
	}

	alerts, err := h.repo.List(r.Context(), limit)
	if err != nil {
		if isStorageUnavailable(err) {
			writeError(w, http.StatusServiceUnavailable, "alert history unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}
