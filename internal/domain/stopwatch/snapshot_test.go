package stopwatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSnapshotNormalize verifies defaults for missing fields and key precedence.
func TestSnapshotNormalize(t *testing.T) {
	t.Parallel()

	got := Snapshot{ID: "other", Name: "  ", ElapsedMs: -10}.Normalize("stopwatch-3")
	require.Equal(t, Snapshot{ID: "stopwatch-3", Name: DefaultName}, got)

	got = Snapshot{ID: "stopwatch-1", Name: " Focus ", ElapsedMs: 1500, Running: true}.Normalize("")
	require.Equal(t, Snapshot{ID: "stopwatch-1", Name: "Focus", ElapsedMs: 1500, Running: true}, got)

	got = Snapshot{Name: "Ancient", ElapsedMs: MaxElapsedMs + 1}.Normalize("stopwatch-2")
	require.Equal(t, MaxElapsedMs, got.ElapsedMs)
}
