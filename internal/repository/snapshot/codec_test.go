package snapshot

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/stopwatch-board/internal/domain/stopwatch"
)

// TestJSONCodec_Layout verifies the persisted JSON layout keyed by id.
func TestJSONCodec_Layout(t *testing.T) {
	t.Parallel()

	data, err := JSONCodec{}.Encode(map[string]domain.Snapshot{
		"stopwatch-0": {ID: "stopwatch-0", Name: "Focus", ElapsedMs: 1500, Running: true},
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"stopwatch-0":{"id":"stopwatch-0","name":"Focus","elapsedMs":1500,"running":true}}`, string(data))
}

// TestJSONCodec_DecodeDefaults ensures missing fields and malformed entries degrade safely.
func TestJSONCodec_DecodeDefaults(t *testing.T) {
	t.Parallel()

	blob := `{
		"stopwatch-0": {"id": "stopwatch-0"},
		"stopwatch-1": {"name": "Reading", "elapsedMs": 2500.9, "running": true, "color": "red"},
		"stopwatch-2": "not an object",
		"stopwatch-3": {"elapsedMs": -40, "running": "yes"},
		"stopwatch-4": {"elapsedMs": 10, "id": "stopwatch-99"}
	}`

	got, err := JSONCodec{}.Decode([]byte(blob))
	require.NoError(t, err)
	require.Equal(t, map[string]domain.Snapshot{
		"stopwatch-0": {ID: "stopwatch-0", Name: domain.DefaultName},
		"stopwatch-1": {ID: "stopwatch-1", Name: "Reading", ElapsedMs: 2500, Running: true},
		"stopwatch-3": {ID: "stopwatch-3", Name: domain.DefaultName},
		"stopwatch-4": {ID: "stopwatch-4", Name: domain.DefaultName, ElapsedMs: 10},
	}, got)
}

// TestJSONCodec_DecodeBadField ensures one mistyped field resets only that field.
func TestJSONCodec_DecodeBadField(t *testing.T) {
	t.Parallel()

	blob := `{
		"stopwatch-0": {"name": 5, "elapsedMs": 4200, "running": true},
		"stopwatch-1": {"name": "Tea", "elapsedMs": "long", "running": false},
		"stopwatch-2": {"name": "Nap", "elapsedMs": 900, "running": 1}
	}`

	got, err := JSONCodec{}.Decode([]byte(blob))
	require.NoError(t, err)
	require.Equal(t, map[string]domain.Snapshot{
		"stopwatch-0": {ID: "stopwatch-0", Name: domain.DefaultName, ElapsedMs: 4200, Running: true},
		"stopwatch-1": {ID: "stopwatch-1", Name: "Tea"},
		"stopwatch-2": {ID: "stopwatch-2", Name: "Nap", ElapsedMs: 900},
	}, got)
}

// TestCodecs_ClampElapsed verifies stored times beyond what a timer can hold are capped.
func TestCodecs_ClampElapsed(t *testing.T) {
	t.Parallel()

	got, err := JSONCodec{}.Decode([]byte(`{"stopwatch-0": {"elapsedMs": 1e300, "running": true}}`))
	require.NoError(t, err)
	require.Equal(t, domain.MaxElapsedMs, got["stopwatch-0"].ElapsedMs)

	got, err = JSONCodec{}.Decode([]byte(`{"stopwatch-0": {"elapsedMs": 10000000000000}}`))
	require.NoError(t, err)
	require.Equal(t, domain.MaxElapsedMs, got["stopwatch-0"].ElapsedMs)

	data, err := cbor.Marshal(map[string]map[string]any{
		"stopwatch-1": {"name": 7, "elapsedMs": uint64(1) << 60, "running": true},
	})
	require.NoError(t, err)

	got, err = CBORCodec{}.Decode(data)
	require.NoError(t, err)
	require.Equal(t, domain.Snapshot{
		ID:        "stopwatch-1",
		Name:      domain.DefaultName,
		ElapsedMs: domain.MaxElapsedMs,
		Running:   true,
	}, got["stopwatch-1"])
}

// TestJSONCodec_DecodeGarbage checks unparseable blobs surface as decode errors.
func TestJSONCodec_DecodeGarbage(t *testing.T) {
	t.Parallel()

	_, err := JSONCodec{}.Decode([]byte("{not json"))
	require.Error(t, err)

	_, err = JSONCodec{}.Decode([]byte(`[1,2,3]`))
	require.Error(t, err)
}

// TestCBORCodec_Roundtrip verifies CBOR blobs decode to the encoded mapping.
func TestCBORCodec_Roundtrip(t *testing.T) {
	t.Parallel()

	want := map[string]domain.Snapshot{
		"stopwatch-0": {ID: "stopwatch-0", Name: "Focus", ElapsedMs: 3_661_300, Running: true},
		"stopwatch-7": {ID: "stopwatch-7", Name: "Idle"},
	}

	data, err := CBORCodec{}.Encode(want)
	require.NoError(t, err)

	got, err := CBORCodec{}.Decode(data)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = CBORCodec{}.Decode([]byte{0xff, 0x00})
	require.Error(t, err)
}

// TestCodecByName checks codec selection by configuration name.
func TestCodecByName(t *testing.T) {
	t.Parallel()

	c, err := CodecByName("")
	require.NoError(t, err)
	require.IsType(t, JSONCodec{}, c)

	c, err = CodecByName("cbor")
	require.NoError(t, err)
	require.IsType(t, CBORCodec{}, c)

	_, err = CodecByName("xml")
	require.Error(t, err)
}
