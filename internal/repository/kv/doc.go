// Package kv implements the synchronous key-value boundary that holds the
// stopwatch snapshot blob.
//
// Store is the interface the snapshot repository depends on. Backends:
// FileStore keeps one file per key in a state directory, SQLiteStore keeps a
// single table in a SQLite database, NATSStore uses a JetStream key-value
// bucket, and MemoryStore serves tests and ephemeral runs.
package kv
