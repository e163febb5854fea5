// Package server wires the stopwatch daemon: configuration, the snapshot
// store, the event loop, the gRPC endpoint and the optional metrics endpoint.
package server
