package stopwatch

import (
	"fmt"
	"math"
	"strconv"
)

// DefaultIDPrefix is prepended to the allocation counter to build timer ids.
const DefaultIDPrefix = "stopwatch-"

// IDAllocator hands out ids as a fixed prefix plus a strictly increasing counter.
type IDAllocator struct {
	// prefix is prepended to every allocated id.
	prefix string
	// next is the counter value the next allocation will use.
	next int64
}

// NewIDAllocator creates an allocator starting at 0.
func NewIDAllocator(prefix string) *IDAllocator {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}

	return &IDAllocator{
		prefix: prefix,
	}
}

// Next allocates a fresh id and returns it with its counter value.
// The counter saturates at math.MaxInt64 and never wraps negative.
func (a *IDAllocator) Next() (string, int64) {
	seq := a.next
	if a.next < math.MaxInt64 {
		a.next++
	}

	return a.prefix + strconv.FormatInt(seq, 10), seq
}

// Observe advances the counter past the numeric suffix of an existing id,
// so no later allocation can reuse it. Ids without a numeric suffix, or with
// the largest representable one, are ignored.
func (a *IDAllocator) Observe(id string) {
	seq, ok := ParseSequence(id)
	if !ok || seq == math.MaxInt64 {
		return
	}

	if seq >= a.next {
		a.next = seq + 1
	}
}

// Peek returns the counter value of the next allocation.
func (a *IDAllocator) Peek() int64 {
	return a.next
}

// ParseSequence extracts the trailing decimal suffix of an id.
func ParseSequence(id string) (int64, bool) {
	start := len(id)
	for start > 0 && id[start-1] >= '0' && id[start-1] <= '9' {
		start--
	}

	if start == len(id) {
		return 0, false
	}

	seq, err := strconv.ParseInt(id[start:], 10, 64)
	if err != nil {
		return 0, false
	}

	return seq, true
}

// GeneratedName returns the default label for the timer allocated with seq.
func GeneratedName(seq int64) string {
	return fmt.Sprintf("%s %d", DefaultName, seq+1)
}
