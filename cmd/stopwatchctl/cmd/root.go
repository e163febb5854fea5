package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oshokin/stopwatch-board/internal/config"
	"github.com/oshokin/stopwatch-board/internal/logger"
	"github.com/oshokin/stopwatch-board/internal/service/client"
	"github.com/oshokin/stopwatch-board/internal/service/shell"
	"github.com/oshokin/stopwatch-board/internal/version"
)

var (
	// options holds the connection flags shared by every subcommand.
	options client.Options
	// verbose enables debug logging.
	verbose bool

	// rootCmd represents the base command for the stopwatch client.
	rootCmd = &cobra.Command{
		Use:   "stopwatchctl",
		Short: "Control a stopwatch board server.",
		Long: `Lists, creates and drives stopwatches on a running stopwatchd.

Run without a subcommand to open the interactive shell.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCommands(cmd, func(ctx context.Context, commands *client.Commands) error {
				sh, err := shell.New(commands)
				if err != nil {
					return err
				}

				return sh.Run(ctx)
			})
		},
	}
)

// Execute runs the stopwatchctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()

	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

// withCommands connects to the server and runs fn with a signal-aware context.
func withCommands(cmd *cobra.Command, fn func(context.Context, *client.Commands) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Keep the terminal for command output unless asked otherwise.
	level := zap.WarnLevel
	if verbose {
		level = zap.DebugLevel
	}

	ctx = logger.ToContext(ctx, logger.Logger().Named("stopwatchctl").WithOptions(logger.WithLevel(level)))

	opts := options
	opts.Out = cmd.OutOrStdout()

	commands, err := client.Connect(ctx, &opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = commands.Close()
	}()

	return fn(ctx, commands)
}

// idCommand builds a subcommand taking exactly one stopwatch id.
func idCommand(use, short string, run func(*client.Commands, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommands(cmd, func(ctx context.Context, commands *client.Commands) error {
				return run(commands, ctx, args[0])
			})
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.ServerAddress, "server", "s", "", "server address, overrides the configuration")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug messages to stderr")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "Show every stopwatch.",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withCommands(cmd, func(ctx context.Context, commands *client.Commands) error {
					return commands.List(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "new [name]",
			Short: "Add a stopwatch; it gets a default name if none is given.",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var name string
				if len(args) > 0 {
					name = args[0]
				}

				return withCommands(cmd, func(ctx context.Context, commands *client.Commands) error {
					return commands.Create(ctx, name)
				})
			},
		},
		&cobra.Command{
			Use:   "rename <id> [name]",
			Short: "Change a stopwatch label; a blank name resets it.",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				var name string
				if len(args) > 1 {
					name = args[1]
				}

				return withCommands(cmd, func(ctx context.Context, commands *client.Commands) error {
					return commands.Rename(ctx, args[0], name)
				})
			},
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Follow the board until interrupted.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withCommands(cmd, func(ctx context.Context, commands *client.Commands) error {
					return commands.Watch(ctx)
				})
			},
		},
		idCommand("get", "Show one stopwatch.", (*client.Commands).Get),
		idCommand("start", "Start counting.", (*client.Commands).Start),
		idCommand("pause", "Stop counting and keep the time.", (*client.Commands).Pause),
		idCommand("reset", "Zero the time.", (*client.Commands).Reset),
		idCommand("delete", "Remove a stopwatch.", (*client.Commands).Delete),
	)
}
