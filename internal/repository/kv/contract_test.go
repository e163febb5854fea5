package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behavior every Store backend must share.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()

	ctx := context.Background()

	// Missing key.
	_, err := store.Get(ctx, "stopwatches")
	require.ErrorIs(t, err, ErrNotFound)

	// Put then get.
	require.NoError(t, store.Put(ctx, "stopwatches", []byte(`{"a":1}`)))

	got, err := store.Get(ctx, "stopwatches")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(got))

	// Put replaces the whole value.
	require.NoError(t, store.Put(ctx, "stopwatches", []byte(`{}`)))

	got, err = store.Get(ctx, "stopwatches")
	require.NoError(t, err)
	require.Equal(t, `{}`, string(got))

	// Keys are independent.
	_, err = store.Get(ctx, "other")
	require.ErrorIs(t, err, ErrNotFound)

	// Empty keys are rejected.
	require.Error(t, store.Put(ctx, "", []byte("x")))
}
