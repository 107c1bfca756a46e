package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/andres10976/orderwatch/internal/model"
)

// SettingsStore is a string key/value store for persisted session state.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// AlertStore records alerts and lists the history.
type AlertStore interface {
	Create(ctx context.Context, a *model.Alert) error
	Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, limit int) ([]model.Alert, error)
}

var (
	_ SettingsStore = (*SettingsRepository)(nil)
	_ SettingsStore = (*MemorySettings)(nil)
	_ AlertStore    = (*AlertRepository)(nil)
	_ AlertStore    = (*MemoryAlerts)(nil)
)
