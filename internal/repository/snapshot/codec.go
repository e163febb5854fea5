package snapshot

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/oshokin/stopwatch-board/internal/config"
	domain "github.com/oshokin/stopwatch-board/internal/domain/stopwatch"
)

// Codec converts the id-to-snapshot mapping to and from bytes.
type Codec interface {
	Encode(entries map[string]domain.Snapshot) ([]byte, error)
	Decode(data []byte) (map[string]domain.Snapshot, error)
}

// record is the tolerant wire shape of one entry. Nil fields were missing
// or of the wrong type and fall back to defaults.
type record struct {
	ID        *string
	Name      *string
	ElapsedMs *float64
	Running   *bool
}

// Wire field names of one entry.
const (
	fieldID        = "id"
	fieldName      = "name"
	fieldElapsedMs = "elapsedMs"
	fieldRunning   = "running"
)

// decodeRecord decodes each known field on its own, so one malformed field
// only resets that field.
func decodeRecord[Raw ~[]byte](fields map[string]Raw, unmarshal func([]byte, any) error) record {
	var r record

	r.ID = decodeField[string](fields[fieldID], unmarshal)
	r.Name = decodeField[string](fields[fieldName], unmarshal)
	r.ElapsedMs = decodeField[float64](fields[fieldElapsedMs], unmarshal)
	r.Running = decodeField[bool](fields[fieldRunning], unmarshal)

	return r
}

// decodeField returns the decoded value, or nil when raw is absent or malformed.
func decodeField[T any, Raw ~[]byte](raw Raw, unmarshal func([]byte, any) error) *T {
	if len(raw) == 0 {
		return nil
	}

	var v T
	if unmarshal([]byte(raw), &v) != nil {
		return nil
	}

	return &v
}

// snapshot converts the record to a normalized domain snapshot stored under key.
func (r *record) snapshot(key string) domain.Snapshot {
	var s domain.Snapshot

	if r.ID != nil {
		s.ID = *r.ID
	}

	if r.Name != nil {
		s.Name = *r.Name
	}

	if r.ElapsedMs != nil && !math.IsNaN(*r.ElapsedMs) && *r.ElapsedMs > 0 {
		s.ElapsedMs = int64(math.Min(math.Floor(*r.ElapsedMs), float64(domain.MaxElapsedMs)))
	}

	if r.Running != nil {
		s.Running = *r.Running
	}

	return s.Normalize(key)
}

// JSONCodec encodes the mapping as a JSON object keyed by id.
type JSONCodec struct{}

// Encode marshals the mapping.
func (JSONCodec) Encode(entries map[string]domain.Snapshot) ([]byte, error) {
	return json.Marshal(entries)
}

// Decode unmarshals the mapping, skipping entries that are not objects.
func (JSONCodec) Decode(data []byte) (map[string]domain.Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode json blob: %w", err)
	}

	entries := make(map[string]domain.Snapshot, len(raw))

	for key, value := range raw {
		var fields map[string]json.RawMessage
		if key == "" || json.Unmarshal(value, &fields) != nil || fields == nil {
			continue
		}

		r := decodeRecord(fields, json.Unmarshal)
		entries[key] = r.snapshot(key)
	}

	return entries, nil
}

// CBORCodec encodes the mapping as a CBOR map keyed by id.
type CBORCodec struct{}

// Encode marshals the mapping.
func (CBORCodec) Encode(entries map[string]domain.Snapshot) ([]byte, error) {
	return cbor.Marshal(entries)
}

// Decode unmarshals the mapping, skipping entries that are not maps.
func (CBORCodec) Decode(data []byte) (map[string]domain.Snapshot, error) {
	var raw map[string]cbor.RawMessage
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode cbor blob: %w", err)
	}

	entries := make(map[string]domain.Snapshot, len(raw))

	for key, value := range raw {
		var fields map[string]cbor.RawMessage
		if key == "" || cbor.Unmarshal(value, &fields) != nil || fields == nil {
			continue
		}

		r := decodeRecord(fields, cbor.Unmarshal)
		entries[key] = r.snapshot(key)
	}

	return entries, nil
}

// CodecByName returns the codec configured by name, defaulting to JSON.
//
//nolint:ireturn // The codec is picked at runtime.
func CodecByName(name string) (Codec, error) {
	switch name {
	case config.CodecJSON, "":
		return JSONCodec{}, nil
	case config.CodecCBOR:
		return CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
