package hashpool

import (
	"context"

	"github.com/google/uuid"
)

// Future is the pending result of one hash task. It is completed exactly
// once, by whichever of worker reply, failure or shutdown comes first.
type Future[T any] struct {
	id   uuid.UUID
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		id:   uuid.New(),
		done: make(chan struct{}),
	}
}

// ID returns the correlation id of the task.
func (f *Future[T]) ID() uuid.UUID { return f.id }

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the task completes or ctx is done. Giving up on ctx does
// not cancel the task. Wait may be called any number of times.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) complete(val T, err error) {
	f.val = val
	f.err = err
	close(f.done)
}
