// Package detector runs the change detector: a single repeating timer that
// either probes the target with a metadata-only request or, in simulated
// mode, rolls for a synthetic detection.
package detector

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"sync"
	"time"
)

const DefaultInterval = 15 * time.Second

type EventKind int

const (
	EventPollResult EventKind = iota + 1
	EventChangeDetected
	EventPollFailed
)

func (k EventKind) String() string {
	switch k {
	case EventPollResult:
		return "poll_result"
	case EventChangeDetected:
		return "change_detected"
	case EventPollFailed:
		return "poll_failed"
	default:
		return "unknown"
	}
}

// Event is one tick's outcome. Generation identifies the Start call that
// produced it so consumers can drop events from a replaced or stopped run.
type Event struct {
	Kind       EventKind
	Generation uint64
	Length     string
	HasLength  bool
	Err        error
	At         time.Time
}

type Params struct {
	URL       string
	Interval  time.Duration
	Simulated bool
}

type Fetcher interface {
	// Head returns the content-length indicator of url. ok is false when the
	// response carried none.
	Head(ctx context.Context, url string) (length string, ok bool, err error)
}

type Detector struct {
	fetcher Fetcher
	odds    float64
	roll    func() float64
	events  chan Event

	mu         sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	generation uint64
}

// New returns a stopped detector. odds is the per-tick detection
// probability used in simulated mode.
func New(f Fetcher, odds float64) *Detector {
	return &Detector{
		fetcher: f,
		odds:    odds,
		roll:    rand.Float64,
		events:  make(chan Event, 1),
	}
}

// Events is the channel every run reports on. It is never closed.
func (d *Detector) Events() <-chan Event {
	return d.events
}

// Start begins ticking with p, replacing any run already in progress, and
// returns the generation stamped on the new run's events.
func (d *Detector) Start(p Params) uint64 {
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	d.generation++
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done

	go d.run(ctx, d.generation, p, done)
	return d.generation
}

// Stop cancels the current run and waits for its goroutine to exit. Stopping
// a stopped detector is a no-op.
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Detector) running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

func (d *Detector) stopLocked() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	<-d.done
	d.cancel = nil
	d.done = nil
}

func (d *Detector) run(ctx context.Context, gen uint64, p Params, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("detector goroutine panicked", "error", r, "stack", string(debug.Stack()))
		}
	}()

	slog.Info("detector started",
		"generation", gen, "interval", p.Interval, "simulated", p.Simulated)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ev, ok := d.tick(ctx, p)
			if !ok {
				continue
			}
			ev.Generation = gen
			select {
			case <-ctx.Done():
				return
			case d.events <- ev:
			}
		}
	}
}

func (d *Detector) tick(ctx context.Context, p Params) (Event, bool) {
	now := time.Now()

	if p.Simulated {
		if !d.detect() {
			return Event{}, false
		}
		return Event{Kind: EventChangeDetected, At: now}, true
	}

	length, ok, err := d.fetcher.Head(ctx, p.URL)
	if err != nil {
		if ctx.Err() != nil {
			return Event{}, false
		}
		return Event{Kind: EventPollFailed, Err: err, At: now}, true
	}
	return Event{Kind: EventPollResult, Length: length, HasLength: ok, At: now}, true
}

func (d *Detector) detect() bool {
	return d.roll() < d.odds
}
