package stopwatch

import "fmt"

const (
	msPerTenth  = 100
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

// FormatElapsed renders milliseconds as HH:MM:SS.T. Tenths are truncated and
// hours are not capped at 99.
func FormatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}

	hours := ms / msPerHour
	minutes := (ms % msPerHour) / msPerMinute
	seconds := (ms % msPerMinute) / msPerSecond
	tenths := (ms % msPerSecond) / msPerTenth

	return fmt.Sprintf("%02d:%02d:%02d.%d", hours, minutes, seconds, tenths)
}
