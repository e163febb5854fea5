package kv

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

// startEmbeddedNATS runs an in-process NATS server with JetStream enabled.
func startEmbeddedNATS(t *testing.T) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
	})
	require.NoError(t, err)

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded NATS server not ready")
	}

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return ns
}

// TestNATSStore_Contract runs the shared Store behavior against a JetStream bucket.
func TestNATSStore_Contract(t *testing.T) {
	t.Parallel()

	ns := startEmbeddedNATS(t)

	store, err := ConnectNATS(context.Background(), ns.ClientURL(), "stopwatches")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close()
	})

	runStoreContract(t, store)
}

// TestNATSStore_ExistingBucket ensures a second store reuses the bucket and sees stored values.
func TestNATSStore_ExistingBucket(t *testing.T) {
	t.Parallel()

	ns := startEmbeddedNATS(t)
	ctx := context.Background()

	conn, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)

	t.Cleanup(conn.Close)

	first, err := NewNATSStore(ctx, conn, "stopwatches")
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "stopwatches", []byte("blob")))

	second, err := NewNATSStore(ctx, conn, "stopwatches")
	require.NoError(t, err)

	got, err := second.Get(ctx, "stopwatches")
	require.NoError(t, err)
	require.Equal(t, "blob", string(got))

	// Borrowed connections stay open.
	require.NoError(t, second.Close())
	require.True(t, conn.IsConnected())
}
