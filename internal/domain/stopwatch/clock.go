package stopwatch

import "time"

// Clock supplies the current wall-clock instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time with the monotonic reading stripped,
// so time spent in system sleep is counted for running timers.
func (SystemClock) Now() time.Time {
	return time.Now().Round(0)
}

// Scheduler registers a callback invoked periodically at a fixed short interval.
// The returned cancel function removes the registration; once it returns the
// callback never fires again.
type Scheduler interface {
	Every(fn func(now time.Time)) (cancel func())
}

// noopScheduler never fires. It backs timers created without a scheduler.
type noopScheduler struct{}

// Every registers nothing.
func (noopScheduler) Every(func(time.Time)) func() {
	return func() {}
}
