package stopwatch

import (
	"math"
	"strings"
	"time"
)

// DefaultName is the label used when a rename or a stored record yields an empty name.
const DefaultName = "Stopwatch"

// MaxElapsedMs is the largest accumulated time a timer holds. Anchors are
// computed with time.Duration, which cannot represent more.
const MaxElapsedMs = math.MaxInt64 / int64(time.Millisecond)

// Snapshot is the durable projection of a Timer.
type Snapshot struct {
	// ID is the stable identifier of the timer.
	ID string `json:"id" cbor:"id"`
	// Name is the display label.
	Name string `json:"name" cbor:"name"`
	// ElapsedMs is the accumulated running time in milliseconds.
	ElapsedMs int64 `json:"elapsedMs" cbor:"elapsedMs"`
	// Running reports whether the timer was counting when the snapshot was taken.
	Running bool `json:"running" cbor:"running"`
}

// Normalize fills defaults for missing or invalid fields and forces the ID
// to the key the snapshot was stored under.
func (s Snapshot) Normalize(key string) Snapshot {
	if key != "" {
		s.ID = key
	}

	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		s.Name = DefaultName
	}

	s.ElapsedMs = clampElapsed(s.ElapsedMs)

	return s
}

// clampElapsed limits ms to [0, MaxElapsedMs].
func clampElapsed(ms int64) int64 {
	return min(max(ms, 0), MaxElapsedMs)
}
