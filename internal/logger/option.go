package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// levelCore overrides the threshold of the core it wraps.
type levelCore struct {
	zapcore.Core

	// enabler decides which entries pass.
	enabler zapcore.LevelEnabler
}

// Enabled reports whether entries at l pass the override.
func (c *levelCore) Enabled(l zapcore.Level) bool {
	return c.enabler.Enabled(l)
}

// Check adds the core to ce when the entry passes the override.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *levelCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

// With keeps the override on derived cores.
//
//nolint:ireturn,nolintlint // zap.WrapCore works on the interface.
func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{
		Core:    c.Core.With(fields),
		enabler: c.enabler,
	}
}

// WithLevel returns an option that makes a derived logger use enabler instead
// of the threshold it was built with, e.g. a quieter logger for one command.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func WithLevel(enabler zapcore.LevelEnabler) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &levelCore{
			Core:    core,
			enabler: enabler,
		}
	})
}
