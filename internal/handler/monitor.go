package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/orderwatch/internal/model"
	"github.com/andres10976/orderwatch/internal/service/monitor"
)

type monitorService interface {
	Start(ctx context.Context, userInitiated bool)
	Stop(ctx context.Context)
	Toggle(ctx context.Context) model.MonitorStatus
	Acknowledge(ctx context.Context) error
	RefreshFrame() int
	Snapshot() model.Snapshot
}

type MonitorHandler struct {
	monitor monitorService
}

func NewMonitorHandler(mon monitorService) *MonitorHandler {
	return &MonitorHandler{monitor: mon}
}

func (h *MonitorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/monitor/status", h.Status)
	r.Post("/monitor/start", h.Start)
	r.Post("/monitor/stop", h.Stop)
	r.Post("/monitor/toggle", h.Toggle)
	r.Post("/monitor/acknowledge", h.Acknowledge)
	r.Post("/monitor/refresh", h.Refresh)
}

func (h *MonitorHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.monitor.Snapshot())
}

// Start is always user initiated: it arrives from a tap on the control bar.
func (h *MonitorHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.monitor.Start(r.Context(), true)
	writeJSON(w, http.StatusOK, h.monitor.Snapshot())
}

func (h *MonitorHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.monitor.Stop(r.Context())
	writeJSON(w, http.StatusOK, h.monitor.Snapshot())
}

func (h *MonitorHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.monitor.Toggle(r.Context())
	writeJSON(w, http.StatusOK, h.monitor.Snapshot())
}

func (h *MonitorHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.Acknowledge(r.Context()); err != nil {
		if errors.Is(err, monitor.ErrNotAlerting) {
			writeError(w, http.StatusConflict, "monitor is not alerting")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to acknowledge alert")
		return
	}
	writeJSON(w, http.StatusOK, h.monitor.Snapshot())
}

func (h *MonitorHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	key := h.monitor.RefreshFrame()
	writeJSON(w, http.StatusOK, map[string]int{"frame_key": key})
}
