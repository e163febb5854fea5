package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	api "github.com/oshokin/stopwatch-board/internal/api/grpc/stopwatch"
	"github.com/oshokin/stopwatch-board/internal/config"
	"github.com/oshokin/stopwatch-board/internal/logger"
	"github.com/oshokin/stopwatch-board/internal/service/common"
)

// API is the subset of common.Client the commands use.
type API interface {
	List(ctx context.Context) ([]api.Stopwatch, error)
	Get(ctx context.Context, id string) (api.Stopwatch, error)
	Create(ctx context.Context, name string) (api.Stopwatch, error)
	Start(ctx context.Context, id string) (api.Stopwatch, error)
	Pause(ctx context.Context, id string) (api.Stopwatch, error)
	Reset(ctx context.Context, id string) (api.Stopwatch, error)
	Rename(ctx context.Context, id, name string) (api.Stopwatch, error)
	Delete(ctx context.Context, id string) error
	Watch(ctx context.Context, fn func(api.Stopwatch)) error
}

// Compile-time assertion that common.Client implements API.
var _ API = (*common.Client)(nil)

// Options configures how stopwatchctl reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the server address from settings when specified.
	ServerAddress string
	// Out receives command output, stdout if nil.
	Out io.Writer
}

// defaultRetryInterval is the delay between watch reconnection attempts.
const defaultRetryInterval = time.Second

// Commands runs stopwatchctl operations against one server.
type Commands struct {
	// api performs the remote calls.
	api API
	// out receives rendered stopwatches.
	out io.Writer
	// closer releases the connection, nil when not owned.
	closer io.Closer
	// retryInterval is the delay between watch reconnection attempts.
	retryInterval time.Duration
}

// Connect loads settings and dials the server.
func Connect(ctx context.Context, opts *Options) (*Commands, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	address := settings.ListenAddress
	if opts.ServerAddress != "" {
		address = opts.ServerAddress
	}

	conn, err := common.Dial(ctx, address, common.WithCallTimeout(settings.Timeout))
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Connected to stopwatch server", "server_address", address)

	commands := New(conn, opts.Out)
	commands.closer = conn

	return commands, nil
}

// New creates commands over an existing API. A nil out means stdout.
func New(client API, out io.Writer) *Commands {
	if out == nil {
		out = os.Stdout
	}

	return &Commands{
		api:           client,
		out:           out,
		retryInterval: defaultRetryInterval,
	}
}

// Close releases the connection if the commands own it.
func (c *Commands) Close() error {
	if c.closer == nil {
		return nil
	}

	return c.closer.Close()
}

// List prints every stopwatch.
func (c *Commands) List(ctx context.Context) error {
	stopwatches, err := c.api.List(ctx)
	if err != nil {
		return err
	}

	return PrintTable(c.out, stopwatches)
}

// Get prints one stopwatch.
func (c *Commands) Get(ctx context.Context, id string) error {
	return c.one(c.api.Get(ctx, id))
}

// Create adds a stopwatch and prints it.
func (c *Commands) Create(ctx context.Context, name string) error {
	return c.one(c.api.Create(ctx, name))
}

// Start starts a stopwatch and prints it.
func (c *Commands) Start(ctx context.Context, id string) error {
	return c.one(c.api.Start(ctx, id))
}

// Pause pauses a stopwatch and prints it.
func (c *Commands) Pause(ctx context.Context, id string) error {
	return c.one(c.api.Pause(ctx, id))
}

// Reset resets a stopwatch and prints it.
func (c *Commands) Reset(ctx context.Context, id string) error {
	return c.one(c.api.Reset(ctx, id))
}

// Rename renames a stopwatch and prints it.
func (c *Commands) Rename(ctx context.Context, id, name string) error {
	return c.one(c.api.Rename(ctx, id, name))
}

// Delete removes a stopwatch.
func (c *Commands) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, id); err != nil {
		return err
	}

	_, err := fmt.Fprintf(c.out, "deleted %s\n", id)

	return err
}

// Watch prints every update until ctx is cancelled, reconnecting after
// stream failures.
func (c *Commands) Watch(ctx context.Context) error {
	ticker := time.NewTicker(c.retryInterval)
	defer ticker.Stop()

	for {
		err := c.api.Watch(ctx, func(sw api.Stopwatch) {
			_ = PrintLine(c.out, sw) //nolint:errcheck // Best effort terminal output.
		})

		if ctx.Err() != nil {
			return nil //nolint:nilerr // Cancellation is the normal way out.
		}

		if err == nil {
			err = errStreamClosed
		}

		logger.WarnKV(ctx, "Watch interrupted, reconnecting", "error", err, "retry_in", c.retryInterval)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// errStreamClosed is logged when the server ends a watch stream.
var errStreamClosed = errors.New("server closed the stream")

// one prints a single stopwatch result.
func (c *Commands) one(sw api.Stopwatch, err error) error {
	if err != nil {
		return err
	}

	return PrintLine(c.out, sw)
}
