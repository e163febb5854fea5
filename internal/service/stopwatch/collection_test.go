package stopwatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	domain "github.com/oshokin/stopwatch-board/internal/domain/stopwatch"
	"github.com/oshokin/stopwatch-board/internal/logger"
	"github.com/oshokin/stopwatch-board/internal/repository/kv"
	"github.com/oshokin/stopwatch-board/internal/repository/snapshot"
)

// TestNewCollection_RequiresWiring verifies missing display or repository is fatal.
func TestNewCollection_RequiresWiring(t *testing.T) {
	t.Parallel()

	store, err := snapshot.NewStore(kv.NewMemoryStore(), nil, "stopwatches")
	require.NoError(t, err)

	_, err = NewCollection(store, nil)
	require.ErrorIs(t, err, ErrDisplayRequired)

	_, err = NewCollection(nil, new(mockDisplay))
	require.Error(t, err)
}

// TestStartup_EmptyCreatesDefault ensures an empty store yields one unpersisted default timer.
func TestStartup_EmptyCreatesDefault(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	require.NoError(t, f.collection.Startup(context.Background()))

	views := f.collection.List()
	require.Len(t, views, 1)
	require.Equal(t, "stopwatch-0", views[0].ID)
	require.Equal(t, "Stopwatch 1", views[0].Name)
	require.Equal(t, "00:00:00.0", views[0].Formatted)

	// Not persisted until the first state change.
	require.Empty(t, f.stored(t))

	// Startup cannot run twice.
	require.Error(t, f.collection.Startup(context.Background()))
}

// TestStartup_RestoresAndAdvancesCounter checks restored ids push the allocator past their suffixes.
func TestStartup_RestoresAndAdvancesCounter(t *testing.T) {
	t.Parallel()

	backing := seed(t,
		domain.Snapshot{ID: "stopwatch-0", Name: "A", ElapsedMs: 100},
		domain.Snapshot{ID: "stopwatch-2", Name: "B", ElapsedMs: 200},
		domain.Snapshot{ID: "stopwatch-5", Name: "C", ElapsedMs: 300},
	)

	f := newFixture(t, backing)
	require.NoError(t, f.collection.Startup(context.Background()))

	views := f.collection.List()
	require.Len(t, views, 3)
	require.Equal(t, []string{"stopwatch-0", "stopwatch-2", "stopwatch-5"}, []string{views[0].ID, views[1].ID, views[2].ID})
	require.EqualValues(t, 200, views[1].ElapsedMs)

	created := f.collection.Create(context.Background(), "")
	require.Equal(t, "stopwatch-6", created.ID)
	require.Equal(t, "Stopwatch 7", created.Name)
}

// TestStartup_ResumesRunningWithoutDowntime verifies running timers restart from the saved value.
func TestStartup_ResumesRunningWithoutDowntime(t *testing.T) {
	t.Parallel()

	backing := seed(t, domain.Snapshot{ID: "stopwatch-0", Name: "Focus", ElapsedMs: 60_000, Running: true})

	f := newFixture(t, backing)
	require.NoError(t, f.collection.Startup(context.Background()))

	view, err := f.collection.Get("stopwatch-0")
	require.NoError(t, err)
	require.True(t, view.Running)
	require.EqualValues(t, 60_000, view.ElapsedMs)
	require.Equal(t, 1, f.sched.Active())

	// Elapsed time continues from the saved value.
	f.sched.Fire(f.clock.Advance(1500 * time.Millisecond))

	view, err = f.collection.Get("stopwatch-0")
	require.NoError(t, err)
	require.EqualValues(t, 61_500, view.ElapsedMs)
	require.EqualValues(t, 61_500, f.stored(t)["stopwatch-0"].ElapsedMs)
}

// TestStartup_StoreUnavailable ensures unreachable stores abort startup.
func TestStartup_StoreUnavailable(t *testing.T) {
	t.Parallel()

	repo := &stubRepository{loadErr: context.DeadlineExceeded}

	c, err := NewCollection(repo, new(mockDisplay))
	require.NoError(t, err)

	err = c.Startup(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, err, ErrLoad)
}

// TestCollection_OperationsPersist verifies each state change reaches the store.
func TestCollection_OperationsPersist(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.collection.Startup(ctx))

	view, err := f.collection.Start(ctx, "stopwatch-0")
	require.NoError(t, err)
	require.True(t, view.Running)
	require.True(t, f.stored(t)["stopwatch-0"].Running)

	f.sched.Fire(f.clock.Advance(2 * time.Second))
	require.EqualValues(t, 2000, f.stored(t)["stopwatch-0"].ElapsedMs)

	f.clock.Advance(500 * time.Millisecond)

	view, err = f.collection.Pause(ctx, "stopwatch-0")
	require.NoError(t, err)
	require.EqualValues(t, 2500, view.ElapsedMs)
	require.Equal(t, "00:00:02.5", view.Formatted)
	require.Equal(t, domain.Snapshot{ID: "stopwatch-0", Name: "Stopwatch 1", ElapsedMs: 2500}, f.stored(t)["stopwatch-0"])

	view, err = f.collection.Rename(ctx, "stopwatch-0", "   ")
	require.NoError(t, err)
	require.Equal(t, domain.DefaultName, view.Name)
	require.Equal(t, domain.DefaultName, f.stored(t)["stopwatch-0"].Name)

	view, err = f.collection.Reset(ctx, "stopwatch-0")
	require.NoError(t, err)
	require.Zero(t, view.ElapsedMs)
	require.False(t, view.Running)
	require.Zero(t, f.stored(t)["stopwatch-0"].ElapsedMs)
}

// TestCollection_Delete removes the timer from the live set, the store and the scheduler.
func TestCollection_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.collection.Startup(ctx))

	_, err := f.collection.Start(ctx, "stopwatch-0")
	require.NoError(t, err)
	require.Contains(t, f.stored(t), "stopwatch-0")

	require.NoError(t, f.collection.Delete(ctx, "stopwatch-0"))
	require.Empty(t, f.collection.List())
	require.NotContains(t, f.stored(t), "stopwatch-0")
	require.Zero(t, f.sched.Active())
	f.display.AssertCalled(t, "Remove", "stopwatch-0")

	// No tick can resurrect it.
	f.sched.Fire(f.clock.Advance(time.Second))
	require.Empty(t, f.stored(t))

	require.ErrorIs(t, f.collection.Delete(ctx, "stopwatch-0"), ErrNotFound)
}

// TestCollection_UnknownID returns ErrNotFound for every per-timer operation.
func TestCollection_UnknownID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.collection.Start(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.collection.Pause(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.collection.Reset(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.collection.Rename(ctx, "nope", "x")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.collection.Get("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestCollection_CreateDoesNotPersist verifies new timers stay in memory until mutated.
func TestCollection_CreateDoesNotPersist(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, nil)

	first := f.collection.Create(ctx, "  Reading  ")
	second := f.collection.Create(ctx, "")

	require.Equal(t, "stopwatch-0", first.ID)
	require.Equal(t, "Reading", first.Name)
	require.Equal(t, "stopwatch-1", second.ID)
	require.Equal(t, "Stopwatch 2", second.Name)
	require.Empty(t, f.stored(t))

	// A redundant pause is not a state change.
	_, err := f.collection.Pause(ctx, second.ID)
	require.NoError(t, err)
	require.Empty(t, f.stored(t))
}

// TestCollection_RenderedOnTick ensures the display sees every tick.
func TestCollection_RenderedOnTick(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, nil)
	view := f.collection.Create(ctx, "Focus")

	_, err := f.collection.Start(ctx, view.ID)
	require.NoError(t, err)

	f.sched.Fire(f.clock.Advance(3_661_300 * time.Millisecond))

	f.display.AssertCalled(t, "Render", mock.MatchedBy(func(v View) bool {
		return v.ID == view.ID && v.Formatted == "01:01:01.3"
	}))
}

// TestCollection_RoundTripAcrossRestart simulates a restart with a running timer.
func TestCollection_RoundTripAcrossRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first := newFixture(t, nil)
	require.NoError(t, first.collection.Startup(ctx))

	renamed, err := first.collection.Rename(ctx, "stopwatch-0", "Deep work")
	require.NoError(t, err)

	_, err = first.collection.Start(ctx, renamed.ID)
	require.NoError(t, err)
	first.sched.Fire(first.clock.Advance(4 * time.Second))
	require.NoError(t, first.collection.Flush(ctx))

	// Restart over the same store, a day later.
	second := newFixture(t, first.backing)
	second.clock.Advance(24 * time.Hour)
	require.NoError(t, second.collection.Startup(ctx))

	view, err := second.collection.Get("stopwatch-0")
	require.NoError(t, err)
	require.Equal(t, "Deep work", view.Name)
	require.EqualValues(t, 4000, view.ElapsedMs)
	require.True(t, view.Running)

	second.sched.Fire(second.clock.Advance(time.Second))

	view, err = second.collection.Get("stopwatch-0")
	require.NoError(t, err)
	require.EqualValues(t, 5000, view.ElapsedMs)
}

// TestCollection_PersistFailureKeepsMemory verifies failed writes surface but keep the transition.
func TestCollection_PersistFailureKeepsMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := &stubRepository{saveErr: context.DeadlineExceeded}
	display := new(mockDisplay)
	display.On("Render", mock.Anything).Maybe()

	c, err := NewCollection(repo, display)
	require.NoError(t, err)

	view := c.Create(ctx, "")

	view, err = c.Start(ctx, view.ID)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, view.Running)
}

// TestCollection_PersistFailureLogsStopwatch checks failed writes are logged with the stopwatch id and operation.
func TestCollection_PersistFailureLogsStopwatch(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())

	repo := &stubRepository{saveErr: context.DeadlineExceeded}
	display := new(mockDisplay)
	display.On("Render", mock.Anything).Maybe()

	c, err := NewCollection(repo, display)
	require.NoError(t, err)

	view := c.Create(ctx, "")

	_, err = c.Start(ctx, view.ID)
	require.Error(t, err)

	failures := logs.FilterMessage("Failed to persist stopwatch snapshot").All()
	require.Len(t, failures, 1)
	require.Equal(t, view.ID, failures[0].ContextMap()["stopwatch_id"])
	require.Equal(t, opStart, failures[0].ContextMap()["op"])

	// A no-op transition writes nothing and says so at debug level.
	_, err = c.Start(ctx, view.ID)
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("Stopwatch unchanged").Len())
}

// TestCompareIDs orders numeric suffixes numerically and others last.
func TestCompareIDs(t *testing.T) {
	t.Parallel()

	require.Negative(t, compareIDs("stopwatch-2", "stopwatch-10"))
	require.Positive(t, compareIDs("custom", "stopwatch-10"))
	require.Negative(t, compareIDs("stopwatch-1", "zzz"))
	require.Negative(t, compareIDs("alpha", "beta"))
	require.Zero(t, compareIDs("stopwatch-3", "stopwatch-3"))
}

// stubRepository is a Repository with canned errors.
type stubRepository struct {
	// loadErr is returned by LoadAll.
	loadErr error
	// saveErr is returned by Save.
	saveErr error
}

// LoadAll returns loadErr or an empty mapping.
func (s *stubRepository) LoadAll(context.Context) (map[string]domain.Snapshot, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}

	return map[string]domain.Snapshot{}, nil
}

// Save returns saveErr.
func (s *stubRepository) Save(context.Context, domain.Snapshot) error {
	return s.saveErr
}

// Remove always succeeds.
func (s *stubRepository) Remove(context.Context, string) error {
	return nil
}
