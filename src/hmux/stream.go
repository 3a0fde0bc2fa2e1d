package hmux

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/pkg/errors"
)

// ErrStreamClosed is returned by StreamWriter methods after the stream has
// been closed or aborted.
var ErrStreamClosed = errors.New("hmux: stream body closed")

// NewStreamBody returns a connected writer and body.
// Chunks passed to the writer are handed directly to the body's reader;
// Send does not return until the reader takes the chunk, which propagates
// backpressure to the producer.
func NewStreamBody[D Bytes]() (*StreamWriter[D], *StreamBody[D]) {
	s := &stream[D]{
		chunks: make(chan D),
		closed: make(chan struct{}),
	}
	return &StreamWriter[D]{s: s}, &StreamBody[D]{s: s}
}

type stream[D Bytes] struct {
	chunks chan D

	mu        sync.Mutex
	err       error
	trailers  http.Header
	closeOnce sync.Once
	closed    chan struct{}
}

func (s *stream[D]) close(err error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.closed)
	})
}

func (s *stream[D]) endErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	return io.EOF
}

// StreamWriter is the producing side of a stream body.
type StreamWriter[D Bytes] struct {
	s *stream[D]
}

// Send blocks until the reader takes chunk, the stream ends, or ctx is done.
// If Send returns an error the chunk was not delivered.
func (w *StreamWriter[D]) Send(ctx context.Context, chunk D) error {
	select {
	case w.s.chunks <- chunk:
		return nil
	case <-w.s.closed:
		return ErrStreamClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendTrailers records the trailing headers which the body will expose
// after Close. Calling it again replaces them.
func (w *StreamWriter[D]) SendTrailers(trailers http.Header) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	select {
	case <-w.s.closed:
		return ErrStreamClosed
	default:
	}
	w.s.trailers = trailers
	return nil
}

// Close ends the stream cleanly. The reader will see io.EOF after any
// chunks already delivered.
func (w *StreamWriter[D]) Close() error {
	w.s.close(nil)
	return nil
}

// Abort ends the stream with err, which the reader will see instead of
// io.EOF. A nil err is treated as Close.
func (w *StreamWriter[D]) Abort(err error) {
	w.s.close(err)
}

// StreamBody is the consuming side of a stream body.
type StreamBody[D Bytes] struct {
	s *stream[D]
}

func (b *StreamBody[D]) Next(ctx context.Context) (ret D, _ error) {
	select {
	case chunk := <-b.s.chunks:
		return chunk, nil
	case <-b.s.closed:
		return ret, b.s.endErr()
	case <-ctx.Done():
		return ret, ctx.Err()
	}
}

// Trailers blocks until the stream ends.
func (b *StreamBody[D]) Trailers(ctx context.Context) (http.Header, error) {
	select {
	case <-b.s.closed:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return nil, b.s.err
	}
	return b.s.trailers, nil
}

var _ Body[[]byte] = &StreamBody[[]byte]{}
