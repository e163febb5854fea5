// Package stopwatch implements the gRPC transport for the stopwatch service.
//
// The service is described by a hand-written ServiceDesc whose messages are
// protobuf well-known types: ids and names travel as StringValue, stopwatch
// state as Struct, lists as ListValue. Clients need no generated code.
package stopwatch
