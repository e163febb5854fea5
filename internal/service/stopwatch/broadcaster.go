package stopwatch

import (
	"sync"

	domain "github.com/oshokin/stopwatch-board/internal/domain/stopwatch"
)

// DefaultWatchBuffer is the per-subscriber buffer used when none is configured.
const DefaultWatchBuffer = 64

// Update is one change delivered to watchers.
type Update struct {
	// View is the current state of the timer; only the ID is set for deletions.
	View View
	// Deleted reports that the timer was removed.
	Deleted bool
}

// Broadcaster is a Display that fans updates out to subscribers.
// A subscriber that falls behind loses its oldest pending updates; the
// publisher never blocks.
type Broadcaster struct {
	// buffer is the capacity of each subscriber channel.
	buffer int
	// subscribers maps subscription ids to channels.
	subscribers map[uint64]chan Update
	// nextID is the id of the next subscription.
	nextID uint64
	// closed reports that Close was called.
	closed bool
	// mu protects the fields above.
	mu sync.Mutex
}

// Compile-time assertion that Broadcaster implements Display.
var _ Display = (*Broadcaster)(nil)

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultWatchBuffer
	}

	return &Broadcaster{
		buffer:      buffer,
		subscribers: make(map[uint64]chan Update),
	}
}

// Render publishes the current state of a timer.
func (b *Broadcaster) Render(view View) {
	b.publish(Update{View: view})
}

// Remove publishes the deletion of a timer.
func (b *Broadcaster) Remove(id string) {
	b.publish(Update{
		View:    View{Snapshot: domain.Snapshot{ID: id}},
		Deleted: true,
	})
}

// Subscribe registers a watcher. The channel is closed by the returned
// cancel function or by Close.
func (b *Broadcaster) Subscribe() (<-chan Update, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Update, b.buffer)

	if b.closed {
		close(ch)

		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subscribers)
}

// Close ends every subscription.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true

	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}

// publish delivers u to every subscriber, evicting the oldest pending
// update of a full subscriber.
func (b *Broadcaster) publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- u:
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}

		select {
		case ch <- u:
		default:
		}
	}
}
