// Package platform abstracts host side effects (sound, system notification,
// vibration, screen wake-lock) behind small capability interfaces. Hosts
// that lack a capability get the no-op implementation.
package platform

import (
	"errors"
	"time"
)

var ErrUnavailable = errors.New("capability unavailable")

type Audio interface {
	// Play restarts the alert sound from the beginning at volume in [0, 1].
	Play(volume float64) error
	// Stop pauses playback and rewinds to the start.
	Stop()
}

type Notification struct {
	Title              string `json:"title"`
	Body               string `json:"body"`
	Icon               string `json:"icon"`
	Tag                string `json:"tag"`
	RequireInteraction bool   `json:"require_interaction"`
}

type Notifier interface {
	RequestPermission()
	Notify(n Notification)
}

type Vibrator interface {
	Vibrate(pattern []time.Duration)
}

type WakeLock interface {
	Acquire() error
	Release()
}

// Set bundles the capabilities the monitor fans out to.
type Set struct {
	Audio    Audio
	Notifier Notifier
	Vibrator Vibrator
	WakeLock WakeLock
}

// WithDefaults fills missing capabilities with no-ops.
func (s Set) WithDefaults() Set {
	if s.Audio == nil {
		s.Audio = Noop{}
	}
	if s.Notifier == nil {
		s.Notifier = Noop{}
	}
	if s.Vibrator == nil {
		s.Vibrator = Noop{}
	}
	if s.WakeLock == nil {
		s.WakeLock = Noop{}
	}
	return s
}

// AlertPattern is the vibration pattern for a new order: on, off, on, off, on.
var AlertPattern = []time.Duration{
	500 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
}

// Noop implements every capability and does nothing. Audio and wake-lock
// report ErrUnavailable so callers can log the degradation.
type Noop struct{}

func (Noop) Play(float64) error      { return ErrUnavailable }
func (Noop) Stop()                   {}
func (Noop) RequestPermission()      {}
func (Noop) Notify(Notification)     {}
func (Noop) Vibrate([]time.Duration) {}
func (Noop) Acquire() error          { return ErrUnavailable }
func (Noop) Release()                {}
