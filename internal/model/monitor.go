package model

import "time"

// MonitorStatus is the single state the monitor is in at any time.
type MonitorStatus string

const (
	StatusIdle   MonitorStatus = "IDLE"
	StatusActive MonitorStatus = "ACTIVE"
	StatusError  MonitorStatus = "ERROR"
	StatusAlert  MonitorStatus = "ALERT"
)

// Polling reports whether the detector and wake-lock should be held.
func (s MonitorStatus) Polling() bool {
	return s == StatusActive || s == StatusAlert
}

// Startable reports whether a toggle from this status starts monitoring.
func (s MonitorStatus) Startable() bool {
	return s == StatusIdle || s == StatusError
}

type Settings struct {
	Muted         bool    `json:"muted"`
	ZoomLevel     float64 `json:"zoom_level"`
	SimulatedMode bool    `json:"simulated_mode"`
}

// Snapshot is what the presentation layer renders from.
type Snapshot struct {
	Status       MonitorStatus `json:"status"`
	Settings     Settings      `json:"settings"`
	LastCheck    *time.Time    `json:"last_check"`
	FrameKey     int           `json:"frame_key"`
	TargetURL    string        `json:"target_url"`
	PollInterval int64         `json:"poll_interval_ms"`
}
