package metrics

import "time"

// Recorder receives collection activity.
type Recorder interface {
	// RecordOperation counts a user-triggered operation by kind.
	RecordOperation(op string)
	// RecordPersist counts a snapshot write by kind and outcome and observes its latency.
	RecordPersist(op string, err error, took time.Duration)
	// SetStopwatches reports the live and running stopwatch counts.
	SetStopwatches(live, running int)
}

// Nop implements Recorder by discarding everything.
type Nop struct{}

// Compile-time assertion that Nop implements Recorder.
var _ Recorder = Nop{}

// RecordOperation discards the operation.
func (Nop) RecordOperation(string) {}

// RecordPersist discards the write.
func (Nop) RecordPersist(string, error, time.Duration) {}

// SetStopwatches discards the counts.
func (Nop) SetStopwatches(int, int) {}
