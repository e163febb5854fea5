package stopwatch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	domain "github.com/oshokin/stopwatch-board/internal/domain/stopwatch"
	"github.com/oshokin/stopwatch-board/internal/logger"
	"github.com/oshokin/stopwatch-board/internal/metrics"
	"github.com/oshokin/stopwatch-board/internal/repository/snapshot"
)

// Operation names reported to metrics.
const (
	opCreate  = "create"
	opStart   = "start"
	opPause   = "pause"
	opReset   = "reset"
	opRename  = "rename"
	opDelete  = "delete"
	opTick    = "tick"
	opRestore = "restore"
	opFlush   = "flush"
)

var (
	// ErrNotFound is returned for ids that are not in the live set.
	ErrNotFound = errors.New("stopwatch not found")
	// ErrDisplayRequired is returned when a collection is built without a display.
	ErrDisplayRequired = errors.New("display is required")
	// ErrLoad is returned by Startup when stored snapshots cannot be read.
	ErrLoad = errors.New("load snapshots")
	// errRepositoryRequired is returned when a collection is built without a repository.
	errRepositoryRequired = errors.New("snapshot repository is required")
	// errAlreadyStarted is returned when Startup runs on a populated collection.
	errAlreadyStarted = errors.New("collection already started")
)

// View is a snapshot together with its rendered elapsed time.
type View struct {
	domain.Snapshot

	// Formatted is the elapsed time rendered as HH:MM:SS.T.
	Formatted string
}

// Display receives every change to the live set.
type Display interface {
	// Render is called after every state change and every tick of a timer.
	Render(view View)
	// Remove is called after a timer is deleted.
	Remove(id string)
}

// Collection owns the live timers. It is not safe for concurrent use: every
// method, and every scheduler callback, must run on the same goroutine.
type Collection struct {
	// repo persists snapshots.
	repo snapshot.Repository
	// display renders changes.
	display Display
	// clock supplies wall-clock time to timers.
	clock domain.Clock
	// scheduler drives periodic ticks of running timers.
	scheduler domain.Scheduler
	// recorder receives activity metrics.
	recorder metrics.Recorder
	// ids allocates fresh identifiers.
	ids *domain.IDAllocator
	// timers is the live set keyed by id.
	timers map[string]*domain.Timer
	// tickCtx is the context used for tick persistence and logging.
	tickCtx context.Context //nolint:containedctx // Ticks have no caller context.
}

// Option configures a Collection.
type Option func(*Collection)

// WithClock sets the clock passed to every timer.
func WithClock(clock domain.Clock) Option {
	return func(c *Collection) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithScheduler sets the scheduler that drives ticks.
func WithScheduler(scheduler domain.Scheduler) Option {
	return func(c *Collection) {
		c.scheduler = scheduler
	}
}

// WithMetrics sets the activity recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *Collection) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

// WithIDPrefix sets the prefix of allocated ids.
func WithIDPrefix(prefix string) Option {
	return func(c *Collection) {
		c.ids = domain.NewIDAllocator(prefix)
	}
}

// NewCollection creates an empty collection. The display is mandatory.
func NewCollection(repo snapshot.Repository, display Display, opts ...Option) (*Collection, error) {
	if repo == nil {
		return nil, errRepositoryRequired
	}

	if display == nil {
		return nil, ErrDisplayRequired
	}

	c := &Collection{
		repo:     repo,
		display:  display,
		clock:    domain.SystemClock{},
		recorder: metrics.Nop{},
		ids:      domain.NewIDAllocator(domain.DefaultIDPrefix),
		timers:   make(map[string]*domain.Timer),
		tickCtx:  context.Background(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Startup restores stored timers, or creates one default timer when the
// store is empty. Timers stored as running are restarted from their saved
// elapsed time; downtime is not counted.
func (c *Collection) Startup(ctx context.Context) error {
	if len(c.timers) > 0 {
		return errAlreadyStarted
	}

	c.tickCtx = context.WithoutCancel(ctx)

	stored, err := c.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	if len(stored) == 0 {
		view := c.Create(ctx, "")
		logger.InfoKV(ctx, "No stored stopwatches, created default", "id", view.ID, "name", view.Name)

		return nil
	}

	snapshots := make([]domain.Snapshot, 0, len(stored))
	for id, s := range stored {
		snapshots = append(snapshots, s.Normalize(id))
	}

	slices.SortFunc(snapshots, func(a, b domain.Snapshot) int {
		return compareIDs(a.ID, b.ID)
	})

	var (
		resumed int
		errs    []error
	)

	for _, s := range snapshots {
		c.ids.Observe(s.ID)

		timer := c.newTimer(s.ID, s.Name, s.ElapsedMs)
		c.timers[s.ID] = timer

		if s.Running && timer.Start() {
			resumed++

			errs = append(errs, c.persist(ctx, opRestore, timer))
		}

		c.render(timer)
	}

	c.reportCounts()

	logger.InfoKV(ctx, "Restored stopwatches",
		"count", len(snapshots),
		"resumed", resumed,
		"next_sequence", c.ids.Peek(),
	)

	return errors.Join(errs...)
}

// Create adds a paused timer with a fresh id. An empty name gets a generated
// default. The timer is not persisted until its first state change.
func (c *Collection) Create(_ context.Context, name string) View {
	id, seq := c.ids.Next()

	if strings.TrimSpace(name) == "" {
		name = domain.GeneratedName(seq)
	}

	timer := c.newTimer(id, name, 0)
	c.timers[id] = timer

	c.recorder.RecordOperation(opCreate)
	c.reportCounts()
	c.render(timer)

	return viewOf(timer)
}

// Start starts the timer with id.
func (c *Collection) Start(ctx context.Context, id string) (View, error) {
	return c.apply(ctx, id, opStart, (*domain.Timer).Start)
}

// Pause pauses the timer with id.
func (c *Collection) Pause(ctx context.Context, id string) (View, error) {
	return c.apply(ctx, id, opPause, (*domain.Timer).Pause)
}

// Reset stops the timer with id and clears its elapsed time.
func (c *Collection) Reset(ctx context.Context, id string) (View, error) {
	return c.apply(ctx, id, opReset, (*domain.Timer).Reset)
}

// Rename changes the label of the timer with id.
func (c *Collection) Rename(ctx context.Context, id, name string) (View, error) {
	return c.apply(ctx, id, opRename, func(t *domain.Timer) bool {
		t.Rename(name)

		return true
	})
}

// Delete removes the timer with id from the live set and from the store.
func (c *Collection) Delete(ctx context.Context, id string) error {
	timer, ok := c.timers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(c.timers, id)
	timer.Delete()

	c.recorder.RecordOperation(opDelete)
	c.reportCounts()
	c.display.Remove(id)

	started := time.Now()
	err := c.repo.Remove(ctx, id)
	c.recorder.RecordPersist(opDelete, err, time.Since(started))

	if err != nil {
		ctx = logger.WithKV(ctx, "stopwatch_id", id)
		logger.ErrorKV(ctx, "Failed to remove stopwatch snapshot", "error", err)

		return fmt.Errorf("remove snapshot: %w", err)
	}

	return nil
}

// Get returns the view of the timer with id.
func (c *Collection) Get(id string) (View, error) {
	timer, ok := c.timers[id]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return viewOf(timer), nil
}

// List returns every live timer ordered by id sequence.
func (c *Collection) List() []View {
	views := make([]View, 0, len(c.timers))
	for _, timer := range c.timers {
		views = append(views, viewOf(timer))
	}

	slices.SortFunc(views, func(a, b View) int {
		return compareIDs(a.ID, b.ID)
	})

	return views
}

// Flush brings every running timer up to date and persists it.
func (c *Collection) Flush(ctx context.Context) error {
	now := c.clock.Now()

	var errs []error

	for _, view := range c.List() {
		timer := c.timers[view.ID]
		if !timer.Running() {
			continue
		}

		timer.Tick(now)
		errs = append(errs, c.persist(ctx, opFlush, timer))
	}

	return errors.Join(errs...)
}

// apply runs a state transition on the timer with id, persisting it if the
// state changed, and renders the result.
func (c *Collection) apply(ctx context.Context, id, op string, transition func(*domain.Timer) bool) (View, error) {
	timer, ok := c.timers[id]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	c.recorder.RecordOperation(op)

	var err error
	if transition(timer) {
		err = c.persist(ctx, op, timer)
	} else {
		logger.DebugKV(ctx, "Stopwatch unchanged", "stopwatch_id", id, "op", op)
	}

	c.reportCounts()
	c.render(timer)

	return viewOf(timer), err
}

// onTick persists and renders a timer after a scheduled tick.
func (c *Collection) onTick(timer *domain.Timer) {
	// Errors are logged and counted by persist.
	_ = c.persist(c.tickCtx, opTick, timer) //nolint:errcheck // Ticks never propagate errors.

	c.render(timer)
}

// persist saves the timer snapshot, recording and logging the outcome.
func (c *Collection) persist(ctx context.Context, op string, timer *domain.Timer) error {
	started := time.Now()
	err := c.repo.Save(ctx, timer.Snapshot())
	c.recorder.RecordPersist(op, err, time.Since(started))

	if err != nil {
		ctx = logger.WithFields(ctx, map[string]any{
			"stopwatch_id": timer.ID(),
			"op":           op,
		})
		logger.ErrorKV(ctx, "Failed to persist stopwatch snapshot", "error", err)

		return fmt.Errorf("persist snapshot: %w", err)
	}

	return nil
}

// newTimer builds a timer wired to the collection clock, scheduler and tick hook.
func (c *Collection) newTimer(id, name string, elapsedMs int64) *domain.Timer {
	return domain.NewTimer(id, name, elapsedMs,
		domain.WithClock(c.clock),
		domain.WithScheduler(c.scheduler),
		domain.WithTickHook(c.onTick),
	)
}

// render reports the timer to the display.
func (c *Collection) render(timer *domain.Timer) {
	c.display.Render(viewOf(timer))
}

// reportCounts publishes live and running gauges.
func (c *Collection) reportCounts() {
	running := 0

	for _, timer := range c.timers {
		if timer.Running() {
			running++
		}
	}

	c.recorder.SetStopwatches(len(c.timers), running)
}

// viewOf projects a timer for callers and displays.
func viewOf(timer *domain.Timer) View {
	return View{
		Snapshot:  timer.Snapshot(),
		Formatted: timer.FormatElapsed(),
	}
}

// compareIDs orders ids by numeric suffix; ids without one sort last by text.
func compareIDs(a, b string) int {
	seqA, okA := domain.ParseSequence(a)
	seqB, okB := domain.ParseSequence(b)

	switch {
	case okA && okB:
		if seqA != seqB {
			return cmp.Compare(seqA, seqB)
		}
	case okA:
		return -1
	case okB:
		return 1
	}

	return strings.Compare(a, b)
}
