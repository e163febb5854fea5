// Package scheduler provides the periodic-advancement drivers for timers.
//
// Loop is the production driver: a single goroutine that runs submitted
// operations and fixed-interval tick callbacks one at a time, so callers
// never need locks around timer state. Manual is a deterministic driver for
// tests that fires registrations only when told to.
package scheduler
