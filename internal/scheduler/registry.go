package scheduler

import (
	"slices"
	"time"
)

// registry tracks tick callbacks in registration order.
type registry struct {
	// callbacks maps registration ids to callbacks.
	callbacks map[uint64]func(time.Time)
	// nextID is the id of the next registration.
	nextID uint64
}

func newRegistry() *registry {
	return &registry{
		callbacks: make(map[uint64]func(time.Time)),
	}
}

// add stores fn and returns a cancel function that removes it exactly once.
func (r *registry) add(fn func(time.Time)) func() {
	id := r.nextID
	r.nextID++
	r.callbacks[id] = fn

	return func() {
		delete(r.callbacks, id)
	}
}

// fire invokes every registration present at call time, in registration order.
// A registration cancelled by an earlier callback in the same round is skipped.
func (r *registry) fire(now time.Time) {
	ids := make([]uint64, 0, len(r.callbacks))
	for id := range r.callbacks {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	for _, id := range ids {
		fn, ok := r.callbacks[id]
		if !ok {
			continue
		}

		fn(now)
	}
}

// len returns the number of active registrations.
func (r *registry) len() int {
	return len(r.callbacks)
}
