package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andres10976/orderwatch/internal/model"
)

// MemorySettings is a process-local key-value store used when no database
// is configured. Nothing survives a restart.
type MemorySettings struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{values: make(map[string]string)}
}

func (m *MemorySettings) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemorySettings) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// MemoryAlerts keeps alert history in memory.
type MemoryAlerts struct {
	mu     sync.Mutex
	alerts []model.Alert
}

func NewMemoryAlerts() *MemoryAlerts {
	return &MemoryAlerts{}
}

func (m *MemoryAlerts) Create(_ context.Context, a *model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *MemoryAlerts) Acknowledge(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID != id {
			continue
		}
		if m.alerts[i].AcknowledgedAt == nil {
			stamp := at
			m.alerts[i].AcknowledgedAt = &stamp
		}
		return nil
	}
	return ErrNotFound
}

func (m *MemoryAlerts) List(_ context.Context, limit int) ([]model.Alert, error) {
	m.mu.Lock()
	out := make([]model.Alert, len(m.alerts))
	copy(out, m.alerts)
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
