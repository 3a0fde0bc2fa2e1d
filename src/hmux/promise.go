package hmux

import (
	"context"
	"sync"
)

// Promise is a Future which is settled explicitly by the producing side.
type Promise[T any] struct {
	x    T
	err  error
	once sync.Once
	done chan struct{}
}

// NewPromise returns an unsettled promise.
// The zero value is not usable.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{
		done: make(chan struct{}),
	}
}

// Succeed settles the promise with x.
// It returns false if the promise was already settled.
func (p *Promise[T]) Succeed(x T) (ret bool) {
	p.once.Do(func() {
		ret = true
		p.x = x
		close(p.done)
	})
	return ret
}

// Fail settles the promise with err.
// It returns false if the promise was already settled.
func (p *Promise[T]) Fail(err error) (ret bool) {
	p.once.Do(func() {
		ret = true
		p.err = err
		close(p.done)
	})
	return ret
}

// Complete settles the promise with (x, err), whichever is set.
// It is a convenience for forwarding the result of a function call.
func (p *Promise[T]) Complete(x T, err error) bool {
	if err != nil {
		return p.Fail(err)
	}
	return p.Succeed(x)
}

// Await blocks until the promise settles or ctx is done.
func (p *Promise[T]) Await(ctx context.Context) (ret T, _ error) {
	select {
	case <-ctx.Done():
		return ret, ctx.Err()
	case <-p.done:
		return p.x, p.err
	}
}

// IsDone returns true if the promise has settled.
func (p *Promise[T]) IsDone() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

var _ Future[struct{}] = &Promise[struct{}]{}
