package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/stopwatch-board/internal/config"
)

// TestOpen_SelectsBackend verifies Open builds the configured backend.
func TestOpen_SelectsBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(ctx, config.Storage{Backend: config.BackendFile, Path: filepath.Join(dir, "state")})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)

	store, err = Open(ctx, config.Storage{Backend: config.BackendSQLite, Path: filepath.Join(dir, "state.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	store, err = Open(ctx, config.Storage{Backend: config.BackendMemory})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, store)

	_, err = Open(ctx, config.Storage{Backend: "redis"})
	require.Error(t, err)
}
