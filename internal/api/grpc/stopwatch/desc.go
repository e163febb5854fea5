package stopwatch

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "stopwatch.v1.StopwatchService"

// Full method names.
const (
	MethodList   = "/" + ServiceName + "/ListStopwatches"
	MethodGet    = "/" + ServiceName + "/GetStopwatch"
	MethodCreate = "/" + ServiceName + "/CreateStopwatch"
	MethodStart  = "/" + ServiceName + "/StartStopwatch"
	MethodPause  = "/" + ServiceName + "/PauseStopwatch"
	MethodReset  = "/" + ServiceName + "/ResetStopwatch"
	MethodRename = "/" + ServiceName + "/RenameStopwatch"
	MethodDelete = "/" + ServiceName + "/DeleteStopwatch"
	MethodWatch  = "/" + ServiceName + "/WatchStopwatches"
)

// StopwatchServiceServer is the server API of the stopwatch service.
type StopwatchServiceServer interface {
	ListStopwatches(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	GetStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	CreateStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	StartStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	PauseStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	ResetStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	RenameStopwatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteStopwatch(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	WatchStopwatches(req *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

// ServiceDesc describes the stopwatch service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Mirrors generated gRPC descriptors.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StopwatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListStopwatches", Handler: unary(MethodList, StopwatchServiceServer.ListStopwatches)},
		{MethodName: "GetStopwatch", Handler: unary(MethodGet, StopwatchServiceServer.GetStopwatch)},
		{MethodName: "CreateStopwatch", Handler: unary(MethodCreate, StopwatchServiceServer.CreateStopwatch)},
		{MethodName: "StartStopwatch", Handler: unary(MethodStart, StopwatchServiceServer.StartStopwatch)},
		{MethodName: "PauseStopwatch", Handler: unary(MethodPause, StopwatchServiceServer.PauseStopwatch)},
		{MethodName: "ResetStopwatch", Handler: unary(MethodReset, StopwatchServiceServer.ResetStopwatch)},
		{MethodName: "RenameStopwatch", Handler: unary(MethodRename, StopwatchServiceServer.RenameStopwatch)},
		{MethodName: "DeleteStopwatch", Handler: unary(MethodDelete, StopwatchServiceServer.DeleteStopwatch)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchStopwatches",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "stopwatch/v1/stopwatch.proto",
}

// RegisterStopwatchServiceServer registers srv on s.
func RegisterStopwatchServiceServer(s grpc.ServiceRegistrar, srv StopwatchServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed server method to a grpc.MethodHandler.
func unary[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](
	fullMethod string,
	call func(StopwatchServiceServer, context.Context, PReq) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(StopwatchServiceServer) //nolint:errcheck // RegisterService checks the type.

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(PReq) //nolint:errcheck // The interceptor passes the decoded request through.

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// watchHandler adapts WatchStopwatches to a grpc.StreamHandler.
func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	server, _ := srv.(StopwatchServiceServer) //nolint:errcheck // RegisterService checks the type.

	return server.WatchStopwatches(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}
