package stopwatch

import (
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/stopwatch-board/internal/domain/stopwatch"
	svc "github.com/oshokin/stopwatch-board/internal/service/stopwatch"
)

// Struct field names of a stopwatch message.
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldElapsedMs = "elapsed_ms"
	FieldRunning   = "running"
	FieldDisplay   = "display"
	FieldDeleted   = "deleted"
)

// Stopwatch is the client-side view of a stopwatch message.
type Stopwatch struct {
	// ID is the stopwatch identifier.
	ID string
	// Name is the display label.
	Name string
	// ElapsedMs is the accumulated running time.
	ElapsedMs int64
	// Running reports whether the stopwatch is counting.
	Running bool
	// Display is the elapsed time rendered as HH:MM:SS.T.
	Display string
	// Deleted is set on watch updates for removed stopwatches.
	Deleted bool
}

// ToStruct converts a view to its wire message.
func ToStruct(view svc.View, deleted bool) *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldID: structpb.NewStringValue(view.ID),
	}

	if deleted {
		fields[FieldDeleted] = structpb.NewBoolValue(true)

		return &structpb.Struct{Fields: fields}
	}

	fields[FieldName] = structpb.NewStringValue(view.Name)
	fields[FieldElapsedMs] = structpb.NewNumberValue(float64(view.ElapsedMs))
	fields[FieldRunning] = structpb.NewBoolValue(view.Running)
	fields[FieldDisplay] = structpb.NewStringValue(view.Formatted)

	return &structpb.Struct{Fields: fields}
}

// FromStruct converts a wire message to a Stopwatch.
func FromStruct(msg *structpb.Struct) Stopwatch {
	fields := msg.GetFields()

	sw := Stopwatch{
		ID:        fields[FieldID].GetStringValue(),
		Name:      fields[FieldName].GetStringValue(),
		ElapsedMs: int64(fields[FieldElapsedMs].GetNumberValue()),
		Running:   fields[FieldRunning].GetBoolValue(),
		Display:   fields[FieldDisplay].GetStringValue(),
		Deleted:   fields[FieldDeleted].GetBoolValue(),
	}

	if sw.Display == "" && !sw.Deleted {
		sw.Display = domain.FormatElapsed(sw.ElapsedMs)
	}

	return sw
}
