package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/orderwatch/internal/model"
	"github.com/andres10976/orderwatch/internal/service/monitor"
)

type settingsService interface {
	Settings() model.Settings
	ToggleMute() bool
	SetZoom(ctx context.Context, z float64) (float64, error)
	AdjustZoom(ctx context.Context, delta float64) (float64, error)
	SetSimulated(ctx context.Context, on bool)
	ToggleSimulated(ctx context.Context) bool
}

type SettingsHandler struct {
	settings settingsService
}

func NewSettingsHandler(s settingsService) *SettingsHandler {
	return &SettingsHandler{settings: s}
}

func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.Get)
	r.Post("/settings/mute", h.ToggleMute)
	r.Put("/settings/zoom", h.SetZoom)
	r.Post("/settings/zoom/adjust", h.AdjustZoom)
	r.Put("/settings/simulated", h.SetSimulated)
	r.Post("/settings/simulated/toggle", h.ToggleSimulated)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Settings())
}

func (h *SettingsHandler) ToggleMute(w http.ResponseWriter, r *http.Request) {
	h.settings.ToggleMute()
	writeJSON(w, http.StatusOK, h.settings.Settings())
}

func (h *SettingsHandler) SetZoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ZoomLevel *float64 `json:"zoom_level"`
	}
	if err := decodeJSON(w, r, &req); err != nil || req.ZoomLevel == nil {
		writeError(w, http.StatusBadRequest, "zoom_level is required")
		return
	}
	h.applyZoom(w, func() (float64, error) {
		return h.settings.SetZoom(r.Context(), *req.ZoomLevel)
	})
}

func (h *SettingsHandler) AdjustZoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta *float64 `json:"delta"`
	}
	if err := decodeJSON(w, r, &req); err != nil || req.Delta == nil {
		writeError(w, http.StatusBadRequest, "delta is required")
		return
	}
	h.applyZoom(w, func() (float64, error) {
		return h.settings.AdjustZoom(r.Context(), *req.Delta)
	})
}

func (h *SettingsHandler) applyZoom(w http.ResponseWriter, apply func() (float64, error)) {
	if _, err := apply(); err != nil {
		if errors.Is(err, monitor.ErrInvalidZoom) {
			writeError(w, http.StatusBadRequest, "invalid zoom level")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update zoom")
		return
	}
	writeJSON(w, http.StatusOK, h.settings.Settings())
}

func (h *SettingsHandler) SetSimulated(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeJSON(w, r, &req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	h.settings.SetSimulated(r.Context(), *req.Enabled)
	writeJSON(w, http.StatusOK, h.settings.Settings())
}

func (h *SettingsHandler) ToggleSimulated(w http.ResponseWriter, r *http.Request) {
	h.settings.ToggleSimulated(r.Context())
	writeJSON(w, http.StatusOK, h.settings.Settings())
}
