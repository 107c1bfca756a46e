package hub

import (
	"time"

	"github.com/andres10976/orderwatch/internal/platform"
)

// Capabilities exposes the connected clients as the monitor's platform.
func (h *Hub) Capabilities() platform.Set {
	return platform.Set{
		Audio:    audio{h},
		Notifier: notifier{h},
		Vibrator: vibrator{h},
		WakeLock: wakeLock{h},
	}
}

type audio struct{ h *Hub }

func (a audio) Play(volume float64) error {
	if a.h.command(Message{Command: CommandAudioPlay, Volume: &volume, SoundURL: a.h.soundURL}) == 0 {
		return ErrNoClients
	}
	return nil
}

func (a audio) Stop() {
	a.h.command(Message{Command: CommandAudioStop})
}

type notifier struct{ h *Hub }

func (n notifier) RequestPermission() {
	n.h.command(Message{Command: CommandNotifyRequest})
}

func (n notifier) Notify(note platform.Notification) {
	n.h.command(Message{Command: CommandNotify, Notification: &note})
}

type vibrator struct{ h *Hub }

func (v vibrator) Vibrate(pattern []time.Duration) {
	ms := make([]int64, len(pattern))
	for i, d := range pattern {
		ms[i] = d.Milliseconds()
	}
	v.h.command(Message{Command: CommandVibrate, PatternMS: ms})
}

type wakeLock struct{ h *Hub }

func (w wakeLock) Acquire() error {
	if w.h.command(Message{Command: CommandWakeLockAcquire}) == 0 {
		return ErrNoClients
	}
	return nil
}

func (w wakeLock) Release() {
	w.h.command(Message{Command: CommandWakeLockRelease})
}
