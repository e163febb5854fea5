// Package snapshot maps stopwatch ids to their durable snapshots.
//
// The whole mapping is encoded as one blob under one well-known key of a
// kv.Store. Every mutation rewrites the entire blob. Unreadable blobs and
// malformed entries are treated as absent, never as errors.
package snapshot
