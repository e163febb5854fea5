package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/stopwatch-board/internal/config"
)

// Store defines the key-value operations the snapshot repository needs.
// Put replaces the whole value under a key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

var (
	// ErrNotFound is returned when no value is stored under the key.
	ErrNotFound = errors.New("key not found")
	// errKeyRequired is returned for empty keys.
	errKeyRequired = errors.New("key must be provided")
)

// Open creates the store selected by the storage settings.
//
//nolint:ireturn // Callers pick the backend at runtime.
func Open(ctx context.Context, settings config.Storage) (Store, error) {
	switch settings.Backend {
	case config.BackendFile, "":
		return NewFileStore(settings.Path)
	case config.BackendSQLite:
		return OpenSQLite(ctx, settings.Path)
	case config.BackendNATS:
		return ConnectNATS(ctx, settings.NATSURL, settings.NATSBucket)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", settings.Backend)
	}
}
