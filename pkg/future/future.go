// Package future runs one unit of work in the background and hands its
// result to whoever waits for it.
package future

import (
	"context"
	"sync"
)

// Future is the pending result of a call started with Go.
type Future[T any] struct {
	done  chan struct{}
	mu    sync.Mutex
	value T
	err   error
	then  []func(T, error)
}

// Go runs fn on a new goroutine and returns its Future.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		v, err := fn()
		f.resolve(v, err)
	}()
	return f
}

// Resolved returns a Future that is already complete.
func Resolved[T any](v T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	f.resolve(v, err)
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.mu.Lock()
	f.value, f.err = v, err
	then := f.then
	f.then = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range then {
		fn(v, err)
	}
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done. Giving up on
// ctx does not stop the work itself.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers fn to receive the result. fn runs on the goroutine that
// completes the work, or immediately on the caller's goroutine when the
// result is already there.
func (f *Future[T]) Then(fn func(T, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		fn(f.value, f.err)
		return
	default:
	}
	f.then = append(f.then, fn)
	f.mu.Unlock()
}
