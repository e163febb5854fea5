package stopwatch

import (
	"time"
)

// fakeClock is a settable Clock for tests.
type fakeClock struct {
	// now is the instant returned by Now.
	now time.Time
}

// newFakeClock creates a clock at an arbitrary fixed instant.
func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
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
