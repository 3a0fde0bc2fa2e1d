package hmuxtests

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"go.inet256.org/hmux/src/hmux"
)

// ReadyHandler is always ready and answers every request with 200 and a
// fixed payload. It counts how many requests it has handled.
type ReadyHandler struct {
	payload string
	calls   atomic.Int64
}

func NewReadyHandler(payload string) *ReadyHandler {
	return &ReadyHandler{payload: payload}
}

func (h *ReadyHandler) Ready(ctx context.Context) error {
	return nil
}

func (h *ReadyHandler) Handle(ctx context.Context, req *hmux.Request) hmux.Future[*hmux.Response[[]byte]] {
	h.calls.Add(1)
	p := hmux.NewPromise[*hmux.Response[[]byte]]()
	p.Succeed(hmux.NewResponse(http.StatusOK, hmux.NewBody([]byte(h.payload))))
	return p
}

// HandleCount returns how many times Handle has been called.
func (h *ReadyHandler) HandleCount() int {
	return int(h.calls.Load())
}

// ErrorHandler fails every readiness check with a fixed message.
// Handle still answers, with an empty body, to mimic a handler which broke
// after being constructed.
type ErrorHandler struct {
	msg string
}

func NewErrorHandler(msg string) *ErrorHandler {
	return &ErrorHandler{msg: msg}
}

func (h *ErrorHandler) Ready(ctx context.Context) error {
	return errors.New(h.msg)
}

func (h *ErrorHandler) Handle(ctx context.Context, req *hmux.Request) hmux.Future[*hmux.Response[[]byte]] {
	p := hmux.NewPromise[*hmux.Response[[]byte]]()
	p.Succeed(hmux.NewResponse(http.StatusOK, hmux.NewEmptyBody[[]byte]()))
	return p
}

// DelayedHandler is not ready until a fixed point in time, and empty-answers
// every request after that.
type DelayedHandler struct {
	readyAt time.Time
}

func NewDelayedHandler(readyAt time.Time) *DelayedHandler {
	return &DelayedHandler{readyAt: readyAt}
}

func (h *DelayedHandler) Ready(ctx context.Context) error {
	d := time.Until(h.readyAt)
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

func (h *DelayedHandler) Handle(ctx context.Context, req *hmux.Request) hmux.Future[*hmux.Response[[]byte]] {
	p := hmux.NewPromise[*hmux.Response[[]byte]]()
	p.Succeed(hmux.NewResponse(http.StatusOK, hmux.NewEmptyBody[[]byte]()))
	return p
}

// TextHandler answers with string chunks, for exercising handlers whose
// body chunk type is not []byte.
type TextHandler struct {
	payload string
}

func NewTextHandler(payload string) *TextHandler {
	return &TextHandler{payload: payload}
}

func (h *TextHandler) Ready(ctx context.Context) error {
	return nil
}

func (h *TextHandler) Handle(ctx context.Context, req *hmux.Request) hmux.Future[*hmux.Response[string]] {
	p := hmux.NewPromise[*hmux.Response[string]]()
	p.Succeed(hmux.NewResponse(http.StatusOK, hmux.NewBody(h.payload)))
	return p
}

var (
	_ hmux.Handler[[]byte] = &ReadyHandler{}
	_ hmux.Handler[[]byte] = &ErrorHandler{}
	_ hmux.Handler[[]byte] = &DelayedHandler{}
	_ hmux.Handler[string] = &TextHandler{}
)
