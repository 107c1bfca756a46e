package monitor

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"

	"github.com/andres10976/orderwatch/internal/model"
	"github.com/andres10976/orderwatch/internal/repository"
)

var ErrInvalidZoom = errors.New("invalid zoom level")

const (
	MinZoom     = 0.5
	MaxZoom     = 2.0
	DefaultZoom = 1.0
)

// ClampZoom bounds z to [MinZoom, MaxZoom] and rounds it to one decimal.
func ClampZoom(z float64) float64 {
	z = math.Min(math.Max(z, MinZoom), MaxZoom)
	return math.Round(z*10) / 10
}

// Restore loads persisted settings and resumes monitoring if it was
// enabled. The resumed start has no user gesture behind it.
func (m *Monitor) Restore(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, err := m.settings.Get(ctx, repository.KeyZoomLevel); err == nil {
		z, perr := strconv.ParseFloat(v, 64)
		if perr != nil || math.IsNaN(z) || math.IsInf(z, 0) {
			slog.Warn("ignoring stored zoom level", "value", v)
		} else {
			m.zoom = ClampZoom(z)
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if v, err := m.settings.Get(ctx, repository.KeyLastContentLength); err == nil {
		m.memory = v
		m.hasMemory = v != ""
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	enabled, err := m.settings.Get(ctx, repository.KeyMonitoringEnabled)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	slog.Info("settings restored", "zoom_level", m.zoom, "monitoring_enabled", enabled == "true")
	if enabled == "true" {
		m.startLocked(ctx, false)
	}
	m.publishLocked()
	return nil
}

func (m *Monitor) Settings() model.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settingsLocked()
}

func (m *Monitor) settingsLocked() model.Settings {
	return model.Settings{
		Muted:         m.muted,
		ZoomLevel:     m.zoom,
		SimulatedMode: m.simulated,
	}
}

// ToggleMute flips the mute flag for this session and returns it.
func (m *Monitor) ToggleMute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = !m.muted
	m.publishLocked()
	return m.muted
}

// SetZoom stores the clamped zoom level and returns it.
func (m *Monitor) SetZoom(ctx context.Context, z float64) (float64, error) {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, ErrInvalidZoom
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setZoomLocked(ctx, z)
	return m.zoom, nil
}

// AdjustZoom offsets the current zoom level by delta.
func (m *Monitor) AdjustZoom(ctx context.Context, delta float64) (float64, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, ErrInvalidZoom
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setZoomLocked(ctx, m.zoom+delta)
	return m.zoom, nil
}

func (m *Monitor) setZoomLocked(ctx context.Context, z float64) {
	m.zoom = ClampZoom(z)
	m.persist(ctx, repository.KeyZoomLevel, strconv.FormatFloat(m.zoom, 'f', -1, 64))
	m.publishLocked()
}

// SetSimulated switches between live polling and simulated detection.
// Switching stops monitoring first so the two sources never mix; setting
// the current mode again does nothing.
func (m *Monitor) SetSimulated(ctx context.Context, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if on == m.simulated {
		return
	}
	m.stopLocked(ctx)
	m.simulated = on
	m.publishLocked()
}

func (m *Monitor) ToggleSimulated(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(ctx)
	m.simulated = !m.simulated
	m.publishLocked()
	return m.simulated
}

// RefreshFrame asks the presentation layer to reload the embedded page.
func (m *Monitor) RefreshFrame() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frameKey++
	m.publishLocked()
	return m.frameKey
}
