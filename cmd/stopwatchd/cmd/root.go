package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/stopwatch-board/internal/config"
	"github.com/oshokin/stopwatch-board/internal/logger"
	"github.com/oshokin/stopwatch-board/internal/service/server"
	"github.com/oshokin/stopwatch-board/internal/version"
)

var (
	// options collects the command line overrides.
	options server.Options

	// rootCmd represents the base command for running the stopwatch server.
	rootCmd = &cobra.Command{
		Use:   "stopwatchd [listen-address]",
		Short: "Run the stopwatch board server.",
		Long: `Starts the gRPC server that owns the stopwatch board.

Stopwatches keep counting while the server runs and are persisted on every
change, so a restart resumes where the board left off. Time spent while the
server was down is not counted.

The listen address can be provided as argument to override the configuration
(e.g., 127.0.0.1:50061, :9090).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if len(args) > 0 {
				options.ListenAddress = args[0]
			}

			return server.Run(ctx, &options)
		},
	}
)

// Execute runs the stopwatchd CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()

	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&options.MetricsAddress, "metrics", "", "address serving Prometheus /metrics")
	flags.StringVarP(&options.StorageBackend, "backend", "b", "", "storage backend: file, sqlite, nats or memory")
	flags.StringVarP(&options.StoragePath, "state", "s", "", "state directory (file) or database path (sqlite)")
}
