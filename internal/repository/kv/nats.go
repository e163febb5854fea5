package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// natsConnectTimeout bounds the initial connection attempt.
const natsConnectTimeout = 5 * time.Second

// NATSStore persists values in a JetStream key-value bucket.
type NATSStore struct {
	// kv is the bucket handle.
	kv jetstream.KeyValue
	// conn is closed on Close when the store owns it.
	conn *nats.Conn
}

// ConnectNATS dials url and opens (creating if needed) bucket.
// The returned store owns the connection.
func ConnectNATS(ctx context.Context, url, bucket string) (*NATSStore, error) {
	conn, err := nats.Connect(url,
		nats.Name("stopwatchd"),
		nats.Timeout(natsConnectTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	store, err := NewNATSStore(ctx, conn, bucket)
	if err != nil {
		conn.Close()
		return nil, err
	}

	store.conn = conn

	return store, nil
}

// NewNATSStore opens (creating if needed) bucket on an existing connection.
// The caller keeps ownership of conn.
func NewNATSStore(ctx context.Context, conn *nats.Conn, bucket string) (*NATSStore, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "stopwatch snapshots",
		History:     1,
	})
	if errors.Is(err, jetstream.ErrBucketExists) {
		kv, err = js.KeyValue(ctx, bucket)
	}

	if err != nil {
		return nil, fmt.Errorf("open kv bucket %s: %w", bucket, err)
	}

	return &NATSStore{
		kv: kv,
	}, nil
}

// Get reads the latest value stored under key.
func (s *NATSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errKeyRequired
	}

	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("get kv entry: %w", err)
	}

	return entry.Value(), nil
}

// Put stores value as the latest revision of key.
func (s *NATSStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errKeyRequired
	}

	if _, err := s.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("put kv entry: %w", err)
	}

	return nil
}

// Close releases the connection if the store owns it.
func (s *NATSStore) Close() error {
	if s.conn == nil {
		return nil
	}

	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return fmt.Errorf("drain nats connection: %w", err)
	}

	return nil
}
