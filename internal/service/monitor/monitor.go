package monitor

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andres10976/orderwatch/internal/model"
	"github.com/andres10976/orderwatch/internal/platform"
	"github.com/andres10976/orderwatch/internal/repository"
	"github.com/andres10976/orderwatch/internal/service/detector"
)

var ErrNotAlerting = errors.New("monitor is not alerting")

const storeTimeout = 5 * time.Second

type changeDetector interface {
	Start(p detector.Params) uint64
	Stop()
	Events() <-chan detector.Event
}

type settingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type alertStore interface {
	Create(ctx context.Context, a *model.Alert) error
	Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error
}

type publisher interface {
	Publish(s model.Snapshot)
}

type Options struct {
	TargetURL    string
	PollInterval time.Duration
	// ErrorThreshold is the number of consecutive poll failures that stop
	// polling and enter StatusError. Zero disables the Error status.
	ErrorThreshold int
	Notification   platform.Notification
}

// Monitor is the alert controller. It owns the monitor status, the poll
// memory and the session settings. Detector events and user commands are
// serialized under mu.
type Monitor struct {
	det      changeDetector
	settings settingsStore
	alerts   alertStore
	caps     platform.Set
	pub      publisher
	opts     Options
	now      func() time.Time

	mu                sync.Mutex
	status            model.MonitorStatus
	muted             bool
	simulated         bool
	zoom              float64
	lastCheck         *time.Time
	memory            string
	hasMemory         bool
	frameKey          int
	generation        uint64
	failures          int
	permissionAsked   bool
	wakeLockRequested bool
	pending           []uuid.UUID
}

func New(
	det changeDetector,
	settings settingsStore,
	alerts alertStore,
	caps platform.Set,
	pub publisher,
	opts Options,
) *Monitor {
	if pub == nil {
		pub = nopPublisher{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = detector.DefaultInterval
	}
	return &Monitor{
		det:      det,
		settings: settings,
		alerts:   alerts,
		caps:     caps.WithDefaults(),
		pub:      pub,
		opts:     opts,
		now:      time.Now,
		status:   model.StatusIdle,
		zoom:     DefaultZoom,
	}
}

// Run consumes detector events until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	slog.Info("monitor loop started", "target", m.opts.TargetURL, "interval", m.opts.PollInterval)
	events := m.det.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			m.safeHandle(ev)
		}
	}
}

func (m *Monitor) safeHandle(ev detector.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("monitor event handler panicked",
				"event", ev.Kind.String(), "error", r, "stack", string(debug.Stack()))
		}
	}()
	m.handle(ev)
}

func (m *Monitor) handle(ev detector.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Events from a replaced or stopped run are discarded.
	if ev.Generation == 0 || ev.Generation != m.generation {
		return
	}

	switch ev.Kind {
	case detector.EventChangeDetected:
		m.touchLocked(ev.At)
		m.triggerLocked(model.SourceSimulation, "")
	case detector.EventPollResult:
		m.touchLocked(ev.At)
		m.pollResultLocked(ev)
	case detector.EventPollFailed:
		m.pollFailedLocked(ev)
	}
	m.publishLocked()
}

func (m *Monitor) touchLocked(at time.Time) {
	if at.IsZero() {
		at = m.now()
	}
	m.lastCheck = &at
	m.failures = 0
}

func (m *Monitor) pollResultLocked(ev detector.Event) {
	if !ev.HasLength {
		return
	}
	changed := m.hasMemory && m.memory != ev.Length
	if !m.hasMemory || changed {
		m.persist(context.Background(), repository.KeyLastContentLength, ev.Length)
	}
	m.memory = ev.Length
	m.hasMemory = true

	if changed {
		m.triggerLocked(model.SourcePoll, ev.Length)
	}
}

func (m *Monitor) pollFailedLocked(ev detector.Event) {
	m.failures++
	if m.opts.ErrorThreshold <= 0 || m.failures < m.opts.ErrorThreshold {
		return
	}
	slog.Warn("poll failure threshold reached, monitoring halted",
		"failures", m.failures, "error", ev.Err)
	m.haltLocked()
	m.status = model.StatusError
}

func (m *Monitor) triggerLocked(source model.AlertSource, length string) {
	m.status = model.StatusAlert

	alert := &model.Alert{
		ID:            uuid.New(),
		Source:        source,
		ContentLength: length,
		DetectedAt:    m.now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	if err := m.alerts.Create(ctx, alert); err != nil {
		slog.Warn("failed to record alert", "alert", alert.ID, "error", err)
	}
	cancel()
	m.pending = append(m.pending, alert.ID)

	slog.Info("change detected", "alert", alert.ID, "source", source, "content_length", length)

	m.caps.Notifier.Notify(m.opts.Notification)
	m.caps.Vibrator.Vibrate(platform.AlertPattern)
	if !m.muted {
		if err := m.caps.Audio.Play(1); err != nil {
			slog.Warn("audio playback failed", "error", err)
		}
	}
}

// Start begins monitoring. userInitiated marks a start that came from a
// user gesture: only then is audio primed and notification permission
// requested. Starting while alerting replaces the detector run and leaves
// the alert pending until it is acknowledged.
func (m *Monitor) Start(ctx context.Context, userInitiated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startLocked(ctx, userInitiated)
	m.publishLocked()
}

// Stop ends monitoring. Stopping an idle monitor is harmless.
func (m *Monitor) Stop(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(ctx)
	m.publishLocked()
}

// Toggle starts an idle or errored monitor and stops any other.
func (m *Monitor) Toggle(ctx context.Context) model.MonitorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status.Startable() {
		m.startLocked(ctx, true)
	} else {
		m.stopLocked(ctx)
	}
	m.publishLocked()
	return m.status
}

// Acknowledge clears a pending alert. Detection keeps running.
func (m *Monitor) Acknowledge(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != model.StatusAlert {
		return ErrNotAlerting
	}
	m.status = model.StatusActive
	m.caps.Audio.Stop()

	at := m.now()
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	for _, id := range m.pending {
		if err := m.alerts.Acknowledge(storeCtx, id, at); err != nil {
			slog.Warn("failed to acknowledge alert", "alert", id, "error", err)
		}
	}
	m.pending = nil

	m.publishLocked()
	return nil
}

// Close releases held resources without touching the persisted
// monitoring flag, so the next boot resumes.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.det.Stop()
	m.generation = 0
	m.releaseWakeLockLocked()
}

func (m *Monitor) Status() model.MonitorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Monitor) Snapshot() model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Monitor) startLocked(ctx context.Context, userInitiated bool) {
	alerting := m.status == model.StatusAlert
	if !alerting {
		m.status = model.StatusActive
	}
	m.failures = 0
	m.persist(ctx, repository.KeyMonitoringEnabled, "true")

	if userInitiated && !alerting {
		// A silent play unlocks audio for later alerts on hosts that
		// require a gesture before playback. It would cut off a ringing
		// alert, so it is skipped while alerting.
		if err := m.caps.Audio.Play(0); err != nil {
			slog.Warn("audio priming failed", "error", err)
		}
		if !m.permissionAsked {
			m.caps.Notifier.RequestPermission()
			m.permissionAsked = true
		}
	}

	// A failed acquire still counts as requested: clients that connect
	// later are asked to acquire, so stopping must release.
	if !m.wakeLockRequested {
		m.wakeLockRequested = true
		if err := m.caps.WakeLock.Acquire(); err != nil {
			slog.Warn("wake lock failed, device may sleep", "error", err)
		}
	}

	m.generation = m.det.Start(detector.Params{
		URL:       m.opts.TargetURL,
		Interval:  m.opts.PollInterval,
		Simulated: m.simulated,
	})
	slog.Info("monitoring started",
		"user_initiated", userInitiated, "simulated", m.simulated, "generation", m.generation)
}

func (m *Monitor) stopLocked(ctx context.Context) {
	m.status = model.StatusIdle
	m.persist(ctx, repository.KeyMonitoringEnabled, "false")
	m.haltLocked()
	slog.Info("monitoring stopped")
}

// haltLocked tears down polling side effects.
func (m *Monitor) haltLocked() {
	m.caps.Audio.Stop()
	m.releaseWakeLockLocked()
	m.det.Stop()
	m.generation = 0
	m.failures = 0
}

func (m *Monitor) releaseWakeLockLocked() {
	if !m.wakeLockRequested {
		return
	}
	m.caps.WakeLock.Release()
	m.wakeLockRequested = false
}

func (m *Monitor) persist(ctx context.Context, key, value string) {
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := m.settings.Set(storeCtx, key, value); err != nil {
		slog.Warn("failed to persist setting", "key", key, "error", err)
	}
}

func (m *Monitor) publishLocked() {
	m.pub.Publish(m.snapshotLocked())
}

func (m *Monitor) snapshotLocked() model.Snapshot {
	var lastCheck *time.Time
	if m.lastCheck != nil {
		t := *m.lastCheck
		lastCheck = &t
	}
	return model.Snapshot{
		Status:       m.status,
		Settings:     m.settingsLocked(),
		LastCheck:    lastCheck,
		FrameKey:     m.frameKey,
		TargetURL:    m.opts.TargetURL,
		PollInterval: m.opts.PollInterval.Milliseconds(),
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.Snapshot) {}
