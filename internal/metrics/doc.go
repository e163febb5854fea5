// Package metrics records stopwatch collection activity.
//
// Recorder is the port the collection reports to. Nop discards everything;
// Prometheus exposes counters, gauges and a latency histogram.
package metrics
