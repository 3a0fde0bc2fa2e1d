package hmux

import (
	"context"
)

// HandlerFunc adapts a function into a Handler which is always ready.
// Each call to Handle runs fn in its own goroutine.
type HandlerFunc[D Bytes] func(ctx context.Context, req *Request) (*Response[D], error)

func (fn HandlerFunc[D]) Ready(ctx context.Context) error {
	return nil
}

func (fn HandlerFunc[D]) Handle(ctx context.Context, req *Request) Future[*Response[D]] {
	p := NewPromise[*Response[D]]()
	go func() {
		p.Complete(fn(ctx, req))
	}()
	return p
}

// FactoryFunc adapts a function into a Factory which is always ready.
// Each call to Build runs fn in its own goroutine.
type FactoryFunc[D Bytes] func(ctx context.Context, target Target) (Handler[D], error)

func (fn FactoryFunc[D]) Ready(ctx context.Context) error {
	return nil
}

func (fn FactoryFunc[D]) Build(ctx context.Context, target Target) Future[Handler[D]] {
	p := NewPromise[Handler[D]]()
	go func() {
		p.Complete(fn(ctx, target))
	}()
	return p
}

// Shared is a Factory which hands out the same Handler for every target.
// The handler must be safe for use by multiple connections at once.
type Shared[D Bytes] struct {
	h Handler[D]
}

// NewShared returns a Shared factory wrapping h.
func NewShared[D Bytes](h Handler[D]) *Shared[D] {
	return &Shared[D]{h: h}
}

func (s *Shared[D]) Ready(ctx context.Context) error {
	return nil
}

func (s *Shared[D]) Build(ctx context.Context, target Target) Future[Handler[D]] {
	p := NewPromise[Handler[D]]()
	p.Succeed(s.h)
	return p
}

var (
	_ Handler[[]byte] = HandlerFunc[[]byte](nil)
	_ Factory[[]byte] = FactoryFunc[[]byte](nil)
	_ Factory[string] = &Shared[string]{}
)
