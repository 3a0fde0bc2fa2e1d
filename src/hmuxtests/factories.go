package hmuxtests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"go.inet256.org/hmux/src/hmux"
)

// ReadyFactory is always ready and immediately builds h for every target.
// It counts builds and remembers the last target it saw.
type ReadyFactory[D hmux.Bytes] struct {
	h      hmux.Handler[D]
	builds atomic.Int64

	mu     sync.Mutex
	target hmux.Target
}

func NewReadyFactory[D hmux.Bytes](h hmux.Handler[D]) *ReadyFactory[D] {
	return &ReadyFactory[D]{h: h}
}

func (f *ReadyFactory[D]) Ready(ctx context.Context) error {
	return nil
}

func (f *ReadyFactory[D]) Build(ctx context.Context, target hmux.Target) hmux.Future[hmux.Handler[D]] {
	f.builds.Add(1)
	f.mu.Lock()
	f.target = target
	f.mu.Unlock()
	p := hmux.NewPromise[hmux.Handler[D]]()
	p.Succeed(f.h)
	return p
}

// BuildCount returns how many times Build has been called.
func (f *ReadyFactory[D]) BuildCount() int {
	return int(f.builds.Load())
}

// LastTarget returns the target of the most recent Build.
func (f *ReadyFactory[D]) LastTarget() hmux.Target {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target
}

// FailingFactory fails every readiness check with a fixed message.
type FailingFactory struct {
	msg string
}

func NewFailingFactory(msg string) *FailingFactory {
	return &FailingFactory{msg: msg}
}

func (f *FailingFactory) Ready(ctx context.Context) error {
	return errors.New(f.msg)
}

func (f *FailingFactory) Build(ctx context.Context, target hmux.Target) hmux.Future[hmux.Handler[[]byte]] {
	p := hmux.NewPromise[hmux.Handler[[]byte]]()
	p.Fail(errors.New(f.msg))
	return p
}

// FailingBuildFactory is always ready, but every build future fails with a
// fixed message.
type FailingBuildFactory struct {
	msg string
}

func NewFailingBuildFactory(msg string) *FailingBuildFactory {
	return &FailingBuildFactory{msg: msg}
}

func (f *FailingBuildFactory) Ready(ctx context.Context) error {
	return nil
}

func (f *FailingBuildFactory) Build(ctx context.Context, target hmux.Target) hmux.Future[hmux.Handler[[]byte]] {
	p := hmux.NewPromise[hmux.Handler[[]byte]]()
	p.Fail(errors.New(f.msg))
	return p
}

// DelayedFactory is not ready until a fixed point in time.
type DelayedFactory struct {
	readyAt time.Time
	h       hmux.Handler[[]byte]
}

func NewDelayedFactory(readyAt time.Time, h hmux.Handler[[]byte]) *DelayedFactory {
	return &DelayedFactory{readyAt: readyAt, h: h}
}

func (f *DelayedFactory) Ready(ctx context.Context) error {
	d := time.Until(f.readyAt)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *DelayedFactory) Build(ctx context.Context, target hmux.Target) hmux.Future[hmux.Handler[[]byte]] {
	p := hmux.NewPromise[hmux.Handler[[]byte]]()
	p.Succeed(f.h)
	return p
}

// SlowBuildFactory is always ready, but its build futures only settle after
// a fixed delay.
type SlowBuildFactory struct {
	delay time.Duration
	h     hmux.Handler[[]byte]
}

func NewSlowBuildFactory(delay time.Duration, h hmux.Handler[[]byte]) *SlowBuildFactory {
	return &SlowBuildFactory{delay: delay, h: h}
}

func (f *SlowBuildFactory) Ready(ctx context.Context) error {
	return nil
}

func (f *SlowBuildFactory) Build(ctx context.Context, target hmux.Target) hmux.Future[hmux.Handler[[]byte]] {
	p := hmux.NewPromise[hmux.Handler[[]byte]]()
	go func() {
		timer := time.NewTimer(f.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			p.Succeed(f.h)
		case <-ctx.Done():
			p.Fail(ctx.Err())
		}
	}()
	return p
}

var (
	_ hmux.Factory[[]byte] = &ReadyFactory[[]byte]{}
	_ hmux.Factory[string] = &ReadyFactory[string]{}
	_ hmux.Factory[[]byte] = &FailingFactory{}
	_ hmux.Factory[[]byte] = &FailingBuildFactory{}
	_ hmux.Factory[[]byte] = &DelayedFactory{}
	_ hmux.Factory[[]byte] = &SlowBuildFactory{}
)
