package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = 50 * time.Millisecond

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("event loop stopped")

// task is an operation submitted to the loop.
type task struct {
	// fn is the operation to run on the loop goroutine.
	fn func()
	// done is closed after fn returns.
	done chan struct{}
}

// Loop runs submitted operations and tick callbacks on one goroutine.
// Every and the cancel functions it returns must only be called from that
// goroutine, that is from inside an operation passed to Do or from a tick.
type Loop struct {
	// interval is the tick period.
	interval time.Duration
	// now supplies the instant passed to tick callbacks.
	now func() time.Time
	// registry holds tick callbacks. Owned by the loop goroutine.
	registry *registry
	// tasks carries operations to the loop goroutine.
	tasks chan task
	// stopped is closed when Run returns.
	stopped chan struct{}
	// stopOnce guards closing stopped.
	stopOnce sync.Once
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithNow overrides the time source passed to tick callbacks.
func WithNow(now func() time.Time) LoopOption {
	return func(l *Loop) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLoop creates a loop ticking at interval.
func NewLoop(interval time.Duration, opts ...LoopOption) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}

	l := &Loop{
		interval: interval,
		now:      func() time.Time { return time.Now().Round(0) },
		registry: newRegistry(),
		tasks:    make(chan task),
		stopped:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Every registers fn to run on every tick.
func (l *Loop) Every(fn func(now time.Time)) func() {
	return l.registry.add(fn)
}

// Run processes operations and ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.stopOnce.Do(func() { close(l.stopped) })

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-l.tasks:
			t.fn()
			close(t.done)
		case <-ticker.C:
			l.registry.fire(l.now())
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
// It must not be called from the loop goroutine itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	t := task{
		fn:   fn,
		done: make(chan struct{}),
	}

	select {
	case l.tasks <- t:
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the operation always runs to completion.
	<-t.done

	return nil
}

// Done is closed after Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}
