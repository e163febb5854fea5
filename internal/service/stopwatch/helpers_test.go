package stopwatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/stopwatch-board/internal/domain/stopwatch"
	"github.com/oshokin/stopwatch-board/internal/repository/kv"
	"github.com/oshokin/stopwatch-board/internal/repository/snapshot"
	"github.com/oshokin/stopwatch-board/internal/scheduler"
)

// fakeClock is a settable clock.
type fakeClock struct {
	// now is the instant returned by Now.
	now time.Time
}

// Now returns the current fake instant.
func (c *fakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)

	return c.now
}

// mockDisplay records Display calls.
type mockDisplay struct {
	mock.Mock
}

// Render records the rendered view.
func (m *mockDisplay) Render(view View) {
	m.Called(view)
}

// Remove records the removed id.
func (m *mockDisplay) Remove(id string) {
	m.Called(id)
}

// fixture bundles a collection with its collaborators.
type fixture struct {
	collection *Collection
	clock      *fakeClock
	sched      *scheduler.Manual
	display    *mockDisplay
	backing    *kv.MemoryStore
	store      *snapshot.Store
}

// newFixture builds a collection over an in-memory store, optionally pre-seeded.
func newFixture(t *testing.T, backing *kv.MemoryStore) *fixture {
	t.Helper()

	if backing == nil {
		backing = kv.NewMemoryStore()
	}

	store, err := snapshot.NewStore(backing, snapshot.JSONCodec{}, "stopwatches")
	require.NoError(t, err)

	f := &fixture{
		clock:   &fakeClock{now: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)},
		sched:   scheduler.NewManual(),
		display: new(mockDisplay),
		backing: backing,
		store:   store,
	}

	f.display.On("Render", mock.Anything).Maybe()
	f.display.On("Remove", mock.Anything).Maybe()

	f.collection, err = NewCollection(store, f.display,
		WithClock(f.clock),
		WithScheduler(f.sched),
	)
	require.NoError(t, err)

	return f
}

// stored reads the persisted mapping through a fresh repository.
func (f *fixture) stored(t *testing.T) map[string]domain.Snapshot {
	t.Helper()

	reader, err := snapshot.NewStore(f.backing, snapshot.JSONCodec{}, "stopwatches")
	require.NoError(t, err)

	entries, err := reader.LoadAll(context.Background())
	require.NoError(t, err)

	return entries
}

// seed writes snapshots directly into a fresh in-memory store.
func seed(t *testing.T, snapshots ...domain.Snapshot) *kv.MemoryStore {
	t.Helper()

	backing := kv.NewMemoryStore()

	store, err := snapshot.NewStore(backing, snapshot.JSONCodec{}, "stopwatches")
	require.NoError(t, err)

	for _, s := range snapshots {
		require.NoError(t, store.Save(context.Background(), s))
	}

	return backing
}
