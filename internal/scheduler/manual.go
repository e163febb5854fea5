package scheduler

import "time"

// Manual is a scheduler whose registrations fire only on Fire.
type Manual struct {
	registry *registry
}

// NewManual creates an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{
		registry: newRegistry(),
	}
}

// Every registers fn until the returned cancel function is called.
func (m *Manual) Every(fn func(now time.Time)) func() {
	return m.registry.add(fn)
}

// Fire invokes every active registration with now.
func (m *Manual) Fire(now time.Time) {
	m.registry.fire(now)
}

// Active returns the number of live registrations.
func (m *Manual) Active() int {
	return m.registry.len()
}
