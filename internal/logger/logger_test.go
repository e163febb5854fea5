package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"panic":   zapcore.PanicLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestNew_WritesToWriter checks that New honors its level and writer.
func TestNew_WritesToWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := New(zap.NewAtomicLevelAt(zap.WarnLevel), &buf)
	ctx := ToContext(context.Background(), l)

	InfoKV(ctx, "hidden")
	WarnKV(ctx, "shown", "id", "stopwatch-0")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
	require.Contains(t, buf.String(), "stopwatch-0")
}

// TestWithLevel_OverridesThreshold checks that a derived logger can be made quieter or louder.
func TestWithLevel_OverridesThreshold(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := New(zap.NewAtomicLevelAt(zap.InfoLevel), &buf)

	quiet := base.WithOptions(WithLevel(zap.ErrorLevel))
	quiet.Info("quiet info")

	loud := base.WithOptions(WithLevel(zap.DebugLevel)).With("k", "v")
	loud.Debug("loud debug")

	require.NotContains(t, buf.String(), "quiet info")
	require.Contains(t, buf.String(), "loud debug")
}

// TestConfigure_RejectsUnknownLevel verifies that an invalid level name is reported.
func TestConfigure_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	require.Error(t, Configure("loud"))
}
