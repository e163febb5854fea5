package stopwatch

import (
	"strings"
	"time"
)

// Timer is one stopwatch: elapsed-time accounting across start/pause cycles.
// It is not safe for concurrent use; all calls, including scheduler
// callbacks, must come from a single goroutine.
type Timer struct {
	// id is the stable identifier assigned at creation.
	id string
	// name is the mutable display label.
	name string
	// elapsedMs is the accumulated running time.
	elapsedMs int64
	// running reports whether anchor is active.
	running bool
	// anchor is the instant such that elapsedMs = now - anchor while running.
	anchor time.Time
	// deleted marks a timer that no longer accepts operations.
	deleted bool

	// clock supplies the current instant.
	clock Clock
	// scheduler drives periodic advancement while running.
	scheduler Scheduler
	// cancelTick removes the active periodic registration, nil when none.
	cancelTick func()
	// onTick is invoked after every scheduled advancement.
	onTick func(*Timer)
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithClock sets the clock used by Start and Pause.
func WithClock(clock Clock) TimerOption {
	return func(t *Timer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithScheduler sets the scheduler that drives periodic advancement.
func WithScheduler(scheduler Scheduler) TimerOption {
	return func(t *Timer) {
		if scheduler != nil {
			t.scheduler = scheduler
		}
	}
}

// WithTickHook sets a callback invoked after every scheduled tick.
func WithTickHook(fn func(*Timer)) TimerOption {
	return func(t *Timer) {
		t.onTick = fn
	}
}

// NewTimer creates a paused timer holding the given accumulated time,
// clamped to [0, MaxElapsedMs].
func NewTimer(id, name string, elapsedMs int64, opts ...TimerOption) *Timer {
	t := &Timer{
		id:        id,
		clock:     SystemClock{},
		scheduler: noopScheduler{},
	}

	for _, opt := range opts {
		opt(t)
	}

	t.Rename(name)

	t.elapsedMs = clampElapsed(elapsedMs)

	return t
}

// ID returns the timer identifier.
func (t *Timer) ID() string {
	return t.id
}

// Name returns the display label.
func (t *Timer) Name() string {
	return t.name
}

// ElapsedMs returns the accumulated time as of the last start, pause or tick.
func (t *Timer) ElapsedMs() int64 {
	return t.elapsedMs
}

// Running reports whether the timer is counting.
func (t *Timer) Running() bool {
	return t.running
}

// Deleted reports whether Delete has been called.
func (t *Timer) Deleted() bool {
	return t.deleted
}

// Ticking reports whether a periodic registration is active.
func (t *Timer) Ticking() bool {
	return t.cancelTick != nil
}

// Start anchors the timer at now minus the accumulated time and begins
// periodic advancement. It reports whether the state changed.
func (t *Timer) Start() bool {
	if t.running || t.deleted {
		return false
	}

	// elapsedMs stays within [0, MaxElapsedMs], so the offset neither
	// overflows nor puts the anchor in the future.
	t.anchor = t.clock.Now().Add(-time.Duration(t.elapsedMs) * time.Millisecond)
	t.running = true

	if t.cancelTick == nil {
		t.cancelTick = t.scheduler.Every(t.advance)
	}

	return true
}

// Pause freezes the accumulated time and stops periodic advancement.
// It reports whether the state changed.
func (t *Timer) Pause() bool {
	if !t.running {
		return false
	}

	t.elapsedMs = t.measure(t.clock.Now())
	t.running = false
	t.anchor = time.Time{}
	t.stopTicking()

	return true
}

// Reset stops the timer and clears the accumulated time.
// It reports whether the state changed.
func (t *Timer) Reset() bool {
	if t.deleted {
		return false
	}

	changed := t.running || t.elapsedMs != 0

	t.stopTicking()
	t.running = false
	t.anchor = time.Time{}
	t.elapsedMs = 0

	return changed
}

// Rename stores the trimmed name, substituting DefaultName when it is empty,
// and returns the stored value.
func (t *Timer) Rename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	t.name = name

	return t.name
}

// Tick recomputes the accumulated time from the anchor. It is idempotent for
// a given now and never decreases the accumulated time.
func (t *Timer) Tick(now time.Time) int64 {
	if t.running {
		t.elapsedMs = t.measure(now)
	}

	return t.elapsedMs
}

// Delete stops periodic advancement and marks the timer removed.
func (t *Timer) Delete() {
	t.stopTicking()
	t.running = false
	t.anchor = time.Time{}
	t.deleted = true
}

// FormatElapsed renders the accumulated time as HH:MM:SS.T.
func (t *Timer) FormatElapsed() string {
	return FormatElapsed(t.elapsedMs)
}

// Snapshot returns the durable projection of the timer.
func (t *Timer) Snapshot() Snapshot {
	return Snapshot{
		ID:        t.id,
		Name:      t.name,
		ElapsedMs: t.elapsedMs,
		Running:   t.running,
	}
}

// advance is the scheduler callback.
func (t *Timer) advance(now time.Time) {
	if !t.running {
		return
	}

	t.Tick(now)

	if t.onTick != nil {
		t.onTick(t)
	}
}

// measure returns now - anchor, held at the current value if the clock
// reports an earlier instant. It saturates at MaxElapsedMs.
func (t *Timer) measure(now time.Time) int64 {
	elapsed := clampElapsed(now.Sub(t.anchor).Milliseconds())
	if elapsed < t.elapsedMs {
		return t.elapsedMs
	}

	return elapsed
}

// stopTicking cancels the periodic registration if one is active.
func (t *Timer) stopTicking() {
	if t.cancelTick == nil {
		return
	}

	t.cancelTick()
	t.cancelTick = nil
}
