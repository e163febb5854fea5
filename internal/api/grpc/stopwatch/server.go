package stopwatch

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/stopwatch-board/internal/logger"
	svc "github.com/oshokin/stopwatch-board/internal/service/stopwatch"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	List(ctx context.Context) ([]svc.View, error)
	Get(ctx context.Context, id string) (svc.View, error)
	Create(ctx context.Context, name string) (svc.View, error)
	Start(ctx context.Context, id string) (svc.View, error)
	Pause(ctx context.Context, id string) (svc.View, error)
	Reset(ctx context.Context, id string) (svc.View, error)
	Rename(ctx context.Context, id, name string) (svc.View, error)
	Delete(ctx context.Context, id string) error
	ListAndSubscribe(
		ctx context.Context,
		subscribe func() (<-chan svc.Update, func()),
	) ([]svc.View, <-chan svc.Update, func(), error)
}

// Watcher provides the update feed for WatchStopwatches.
type Watcher interface {
	Subscribe() (<-chan svc.Update, func())
}

// Server implements StopwatchServiceServer.
type Server struct {
	// service provides the business logic for stopwatch operations.
	service Service
	// watcher feeds watch streams.
	watcher Watcher
}

// Compile-time assertion that Server implements StopwatchServiceServer.
var _ StopwatchServiceServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service, watcher Watcher) *Server {
	return &Server{
		service: service,
		watcher: watcher,
	}
}

// ListStopwatches returns every live stopwatch ordered by id.
func (s *Server) ListStopwatches(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	views, err := s.service.List(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	values := make([]*structpb.Value, 0, len(views))
	for _, view := range views {
		values = append(values, structpb.NewStructValue(ToStruct(view, false)))
	}

	return &structpb.ListValue{Values: values}, nil
}

// GetStopwatch returns one stopwatch.
func (s *Server) GetStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.byID(ctx, req, s.service.Get)
}

// CreateStopwatch adds a stopwatch; an empty name gets a generated default.
func (s *Server) CreateStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	view, err := s.service.Create(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return ToStruct(view, false), nil
}

// StartStopwatch starts a stopwatch.
func (s *Server) StartStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.byID(ctx, req, s.service.Start)
}

// PauseStopwatch pauses a stopwatch.
func (s *Server) PauseStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.byID(ctx, req, s.service.Pause)
}

// ResetStopwatch resets a stopwatch.
func (s *Server) ResetStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.byID(ctx, req, s.service.Reset)
}

// RenameStopwatch renames a stopwatch. The request carries "id" and "name".
func (s *Server) RenameStopwatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	id := strings.TrimSpace(fields[FieldID].GetStringValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	view, err := s.service.Rename(ctx, id, fields[FieldName].GetStringValue())
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return ToStruct(view, false), nil
}

// DeleteStopwatch removes a stopwatch.
func (s *Server) DeleteStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	if err := s.service.Delete(ctx, id); err != nil {
		return nil, toStatus(ctx, err)
	}

	return &emptypb.Empty{}, nil
}

// WatchStopwatches sends the current list, then every change until the
// client goes away or the feed closes.
func (s *Server) WatchStopwatches(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	if s.watcher == nil {
		return status.Error(codes.Unimplemented, "watch is not available")
	}

	ctx := stream.Context()

	// Listing and subscribing happen atomically, so the feed never replays
	// a state older than the list.
	views, updates, cancel, err := s.service.ListAndSubscribe(ctx, s.watcher.Subscribe)
	if err != nil {
		return toStatus(ctx, err)
	}

	defer cancel()

	for _, view := range views {
		if err = stream.Send(ToStruct(view, false)); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			if err = stream.Send(ToStruct(update.View, update.Deleted)); err != nil {
				return err
			}
		}
	}
}

// byID validates the id and runs a per-stopwatch operation.
func (s *Server) byID(
	ctx context.Context,
	req *wrapperspb.StringValue,
	op func(context.Context, string) (svc.View, error),
) (*structpb.Struct, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	view, err := op(ctx, id)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return ToStruct(view, false), nil
}

// toStatus maps service errors to gRPC status errors.
func toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, svc.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		logger.ErrorKV(ctx, "Stopwatch operation failed", "error", err)

		return status.Error(codes.Internal, "unable to complete stopwatch operation")
	}
}
