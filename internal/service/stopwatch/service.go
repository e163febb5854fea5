package stopwatch

import (
	"context"
	"errors"

	"github.com/oshokin/stopwatch-board/internal/scheduler"
)

// Service runs every Collection operation on a scheduler.Loop, serializing
// them with ticks. It is safe for concurrent use.
type Service struct {
	// loop is the goroutine owning the collection.
	loop *scheduler.Loop
	// collection is the timer core; only touched from the loop.
	collection *Collection
}

// errLoopRequired is returned when the service is built without a loop.
var errLoopRequired = errors.New("event loop is required")

// NewService wraps collection. The collection must use loop as its scheduler.
func NewService(loop *scheduler.Loop, collection *Collection) (*Service, error) {
	if loop == nil {
		return nil, errLoopRequired
	}

	if collection == nil {
		return nil, errRepositoryRequired
	}

	return &Service{
		loop:       loop,
		collection: collection,
	}, nil
}

// Startup restores the collection.
func (s *Service) Startup(ctx context.Context) error {
	return s.run(ctx, func() error {
		return s.collection.Startup(ctx)
	})
}

// List returns every live stopwatch.
func (s *Service) List(ctx context.Context) ([]View, error) {
	var views []View

	err := s.run(ctx, func() error {
		views = s.collection.List()

		return nil
	})

	return views, err
}

// Get returns one stopwatch.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	return s.view(ctx, func() (View, error) {
		return s.collection.Get(id)
	})
}

// Create adds a stopwatch.
func (s *Service) Create(ctx context.Context, name string) (View, error) {
	return s.view(ctx, func() (View, error) {
		return s.collection.Create(ctx, name), nil
	})
}

// Start starts a stopwatch.
func (s *Service) Start(ctx context.Context, id string) (View, error) {
	return s.view(ctx, func() (View, error) {
		return s.collection.Start(ctx, id)
	})
}

// Pause pauses a stopwatch.
func (s *Service) Pause(ctx context.Context, id string) (View, error) {
	return s.view(ctx, func() (View, error) {
		return s.collection.Pause(ctx, id)
	})
}

// Reset resets a stopwatch.
func (s *Service) Reset(ctx context.Context, id string) (View, error) {
	return s.view(ctx, func() (View, error) {
		return s.collection.Reset(ctx, id)
	})
}

// Rename renames a stopwatch.
func (s *Service) Rename(ctx context.Context, id, name string) (View, error) {
	return s.view(ctx, func() (View, error) {
		return s.collection.Rename(ctx, id, name)
	})
}

// Delete removes a stopwatch.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.run(ctx, func() error {
		return s.collection.Delete(ctx, id)
	})
}

// ListAndSubscribe lists every live stopwatch and calls subscribe in the same
// loop turn. Updates are published from the loop, so the returned feed only
// carries changes made after the list was taken.
func (s *Service) ListAndSubscribe(
	ctx context.Context,
	subscribe func() (<-chan Update, func()),
) ([]View, <-chan Update, func(), error) {
	var (
		views   []View
		updates <-chan Update
		cancel  func()
	)

	err := s.run(ctx, func() error {
		views = s.collection.List()
		updates, cancel = subscribe()

		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return views, updates, cancel, nil
}

// Flush persists every running stopwatch.
func (s *Service) Flush(ctx context.Context) error {
	return s.run(ctx, func() error {
		return s.collection.Flush(ctx)
	})
}

// run executes fn on the loop and returns its error.
func (s *Service) run(ctx context.Context, fn func() error) error {
	var err error

	if loopErr := s.loop.Do(ctx, func() { err = fn() }); loopErr != nil {
		return loopErr
	}

	return err
}

// view executes fn on the loop and returns its view.
func (s *Service) view(ctx context.Context, fn func() (View, error)) (View, error) {
	var view View

	err := s.run(ctx, func() error {
		var err error
		view, err = fn()

		return err
	})

	return view, err
}
