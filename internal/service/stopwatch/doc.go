// Package stopwatch owns the live set of timers and keeps the snapshot store
// in step with it.
//
// Collection is the single-goroutine core: it allocates ids, restores timers
// on startup, persists every state change and every tick, and reports each
// change to a Display. Service wraps a Collection with a scheduler.Loop so it
// can be driven safely from concurrent callers such as gRPC handlers.
// Broadcaster is a Display that fans updates out to watchers.
package stopwatch
