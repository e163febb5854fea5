//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/stopwatch-board/internal/api/grpc/stopwatch"
	"github.com/oshokin/stopwatch-board/internal/config"
)

// Client wraps a gRPC connection to the stopwatch service.
type Client struct {
	// conn is the underlying gRPC connection to the stopwatch server.
	conn grpc.ClientConnInterface
	// closer closes conn when the client owns it.
	closer io.Closer

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errIDRequired is returned when a stopwatch id is missing.
	errIDRequired = errors.New("stopwatch id must be provided")
)

// Dial establishes a gRPC connection to the stopwatch server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial stopwatch server: %w", err)
	}

	client := NewClient(conn, opts...)
	client.closer = conn

	return client, nil
}

// NewClient wraps an existing connection. The caller keeps ownership of conn.
func NewClient(conn grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection if the client owns it.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}

	return c.closer.Close()
}

// List returns every stopwatch.
func (c *Client) List(ctx context.Context) ([]api.Stopwatch, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	out := new(structpb.ListValue)
	if err := c.conn.Invoke(callCtx, api.MethodList, &emptypb.Empty{}, out); err != nil {
		return nil, fmt.Errorf("list stopwatches: %w", err)
	}

	stopwatches := make([]api.Stopwatch, 0, len(out.GetValues()))
	for _, value := range out.GetValues() {
		stopwatches = append(stopwatches, api.FromStruct(value.GetStructValue()))
	}

	return stopwatches, nil
}

// Get returns one stopwatch.
func (c *Client) Get(ctx context.Context, id string) (api.Stopwatch, error) {
	return c.byID(ctx, api.MethodGet, "get stopwatch", id)
}

// Create adds a stopwatch. An empty name gets a generated default.
func (c *Client) Create(ctx context.Context, name string) (api.Stopwatch, error) {
	return c.call(ctx, api.MethodCreate, "create stopwatch", wrapperspb.String(name))
}

// Start starts a stopwatch.
func (c *Client) Start(ctx context.Context, id string) (api.Stopwatch, error) {
	return c.byID(ctx, api.MethodStart, "start stopwatch", id)
}

// Pause pauses a stopwatch.
func (c *Client) Pause(ctx context.Context, id string) (api.Stopwatch, error) {
	return c.byID(ctx, api.MethodPause, "pause stopwatch", id)
}

// Reset resets a stopwatch.
func (c *Client) Reset(ctx context.Context, id string) (api.Stopwatch, error) {
	return c.byID(ctx, api.MethodReset, "reset stopwatch", id)
}

// Rename renames a stopwatch.
func (c *Client) Rename(ctx context.Context, id, name string) (api.Stopwatch, error) {
	if strings.TrimSpace(id) == "" {
		return api.Stopwatch{}, errIDRequired
	}

	request := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			api.FieldID:   structpb.NewStringValue(id),
			api.FieldName: structpb.NewStringValue(name),
		},
	}

	return c.call(ctx, api.MethodRename, "rename stopwatch", request)
}

// Delete removes a stopwatch.
func (c *Client) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.conn.Invoke(callCtx, api.MethodDelete, wrapperspb.String(id), &emptypb.Empty{}); err != nil {
		return fmt.Errorf("delete stopwatch: %w", err)
	}

	return nil
}

// Watch streams stopwatch updates to fn until ctx is cancelled or the server
// ends the stream. The call timeout does not apply.
func (c *Client) Watch(ctx context.Context, fn func(api.Stopwatch)) error {
	stream, err := c.conn.NewStream(ctx, &api.ServiceDesc.Streams[0], api.MethodWatch)
	if err != nil {
		return fmt.Errorf("watch stopwatches: %w", err)
	}

	if err = stream.SendMsg(&emptypb.Empty{}); err != nil {
		return fmt.Errorf("watch stopwatches: %w", err)
	}

	if err = stream.CloseSend(); err != nil {
		return fmt.Errorf("watch stopwatches: %w", err)
	}

	for {
		msg := new(structpb.Struct)

		if err = stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("receive stopwatch update: %w", err)
		}

		fn(api.FromStruct(msg))
	}
}

// byID validates id and calls a per-stopwatch method.
func (c *Client) byID(ctx context.Context, method, action, id string) (api.Stopwatch, error) {
	if strings.TrimSpace(id) == "" {
		return api.Stopwatch{}, errIDRequired
	}

	return c.call(ctx, method, action, wrapperspb.String(id))
}

// call invokes a unary method returning a stopwatch message.
func (c *Client) call(ctx context.Context, method, action string, request any) (api.Stopwatch, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, method, request, out); err != nil {
		return api.Stopwatch{}, fmt.Errorf("%s: %w", action, err)
	}

	return api.FromStruct(out), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
