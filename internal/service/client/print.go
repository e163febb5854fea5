package client

import (
	"fmt"
	"io"
	"text/tabwriter"

	api "github.com/oshokin/stopwatch-board/internal/api/grpc/stopwatch"
)

// State labels.
const (
	stateRunning = "running"
	statePaused  = "paused"
	stateDeleted = "deleted"
)

// PrintTable renders stopwatches as aligned columns.
func PrintTable(w io.Writer, stopwatches []api.Stopwatch) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "ID\tNAME\tELAPSED\tSTATE"); err != nil {
		return err
	}

	for _, sw := range stopwatches {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", sw.ID, sw.Name, sw.Display, state(sw)); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// PrintLine renders one stopwatch on a single line.
func PrintLine(w io.Writer, sw api.Stopwatch) error {
	if sw.Deleted {
		_, err := fmt.Fprintf(w, "%s %s\n", sw.ID, stateDeleted)

		return err
	}

	_, err := fmt.Fprintf(w, "%s %q %s %s\n", sw.ID, sw.Name, sw.Display, state(sw))

	return err
}

// state labels a stopwatch.
func state(sw api.Stopwatch) string {
	switch {
	case sw.Deleted:
		return stateDeleted
	case sw.Running:
		return stateRunning
	default:
		return statePaused
	}
}
