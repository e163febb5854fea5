// Package stopwatch contains the core domain types for elapsed-time timers.
//
// A Timer accumulates running time across start/pause cycles against a
// wall-clock anchor. It knows nothing about storage or presentation: the
// Clock and Scheduler ports supply "now" and periodic advancement, and a
// Snapshot is the durable projection handed to persistence.
package stopwatch
