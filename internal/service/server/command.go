package server

import (
	"context"
	"fmt"
	"net"

	"github.com/oshokin/stopwatch-board/internal/config"
	"github.com/oshokin/stopwatch-board/internal/logger"
)

// Options controls the stopwatchd process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the gRPC listen address from settings.
	ListenAddress string
	// MetricsAddress overrides the metrics listen address from settings.
	MetricsAddress string
	// StorageBackend overrides the storage backend from settings.
	StorageBackend string
	// StoragePath overrides the state directory or database path from settings.
	StoragePath string
}

// Run loads settings, serves the stopwatch API and blocks until ctx is
// cancelled. Running stopwatches are persisted before it returns.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "stopwatchd")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = applyOverrides(settings, opts); err != nil {
		return err
	}

	if err = logger.Configure(settings.LogLevel); err != nil {
		return err
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", settings.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.ListenAddress, err)
	}

	return Serve(ctx, settings, lis)
}

// applyOverrides copies non-empty command line values over settings and
// validates the result again.
func applyOverrides(settings *config.Config, opts *Options) error {
	if opts.ListenAddress != "" {
		settings.ListenAddress = opts.ListenAddress
	}

	if opts.MetricsAddress != "" {
		settings.MetricsAddress = opts.MetricsAddress
	}

	if opts.StorageBackend != "" {
		settings.Storage.Backend = opts.StorageBackend
	}

	if opts.StoragePath != "" {
		settings.Storage.Path = opts.StoragePath
	}

	if err := config.Validate(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	return nil
}
