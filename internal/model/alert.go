package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertSource string

const (
	SourcePoll       AlertSource = "poll"
	SourceSimulation AlertSource = "simulation"
)

type Alert struct {
	ID             uuid.UUID   `json:"id"`
	Source         AlertSource `json:"source"`
	ContentLength  string      `json:"content_length,omitempty"`
	DetectedAt     time.Time   `json:"detected_at"`
	AcknowledgedAt *time.Time  `json:"acknowledged_at"`
}
