package snapshot

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	domain "github.com/oshokin/stopwatch-board/internal/domain/stopwatch"
	"github.com/oshokin/stopwatch-board/internal/logger"
	"github.com/oshokin/stopwatch-board/internal/repository/kv"
)

// Repository defines persistence operations for stopwatch snapshots.
type Repository interface {
	LoadAll(ctx context.Context) (map[string]domain.Snapshot, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
	Remove(ctx context.Context, id string) error
}

// Store keeps the id-to-snapshot mapping as one blob under one key.
// It mirrors the last loaded or written mapping in memory, so mutations do
// not re-read the blob. If a write fails the mirror keeps the change and the
// next mutation writes it again.
type Store struct {
	// kv is the underlying key-value store.
	kv kv.Store
	// codec encodes the mapping.
	codec Codec
	// key is the well-known key the blob lives under.
	key string
	// entries mirrors the persisted mapping, nil until first loaded.
	entries map[string]domain.Snapshot
	// mu protects entries and serializes writes.
	mu sync.Mutex
}

// errStoreRequired is returned when no key-value store is supplied.
var errStoreRequired = errors.New("key-value store is required")

// NewStore creates a snapshot store over the key-value store.
func NewStore(store kv.Store, codec Codec, key string) (*Store, error) {
	if store == nil {
		return nil, errStoreRequired
	}

	if codec == nil {
		codec = JSONCodec{}
	}

	if key == "" {
		return nil, errors.New("storage key is required")
	}

	return &Store{
		kv:    store,
		codec: codec,
		key:   key,
	}, nil
}

// LoadAll returns the stored mapping. An absent or unparseable blob yields an
// empty mapping; only failures to reach the underlying store are returned.
func (s *Store) LoadAll(ctx context.Context) (map[string]domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return nil, err
	}

	return maps.Clone(s.entries), nil
}

// Save upserts one entry and persists the full mapping.
func (s *Store) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if snapshot.ID == "" {
		return errors.New("snapshot id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return err
	}

	s.entries[snapshot.ID] = snapshot

	return s.flush(ctx)
}

// Remove deletes one entry and persists the full mapping. Absent ids are a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return err
	}

	if _, ok := s.entries[id]; !ok {
		return nil
	}

	delete(s.entries, id)

	return s.flush(ctx)
}

// load fills the mirror from the blob once.
func (s *Store) load(ctx context.Context) error {
	if s.entries != nil {
		return nil
	}

	data, err := s.kv.Get(ctx, s.key)

	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.entries = make(map[string]domain.Snapshot)
		return nil
	case err != nil:
		return fmt.Errorf("read snapshot blob: %w", err)
	}

	entries, err := s.codec.Decode(data)
	if err != nil {
		logger.WarnKV(ctx, "Discarding unreadable snapshot blob", "key", s.key, "error", err)

		entries = make(map[string]domain.Snapshot)
	}

	s.entries = entries

	return nil
}

// flush encodes the mirror and writes it under the key.
func (s *Store) flush(ctx context.Context) error {
	data, err := s.codec.Encode(s.entries)
	if err != nil {
		return fmt.Errorf("encode snapshot blob: %w", err)
	}

	if err = s.kv.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("write snapshot blob: %w", err)
	}

	return nil
}
