package hmux

import (
	"context"
	"io"
	"net/http"
	"sync"
)

const readChunkSize = 32 * 1024

// NewBody returns a Body which produces chunks in order and then io.EOF.
// It carries no trailers.
func NewBody[D Bytes](chunks ...D) Body[D] {
	return &chunkBody[D]{chunks: chunks}
}

// NewEmptyBody returns a Body which is immediately at io.EOF.
func NewEmptyBody[D Bytes]() Body[D] {
	return &chunkBody[D]{}
}

type chunkBody[D Bytes] struct {
	mu     sync.Mutex
	chunks []D
}

func (b *chunkBody[D]) Next(ctx context.Context) (ret D, _ error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.chunks) == 0 {
		return ret, io.EOF
	}
	ret = b.chunks[0]
	b.chunks = b.chunks[1:]
	return ret, nil
}

func (b *chunkBody[D]) Trailers(ctx context.Context) (http.Header, error) {
	return nil, nil
}

// NewReaderBody returns a Body which produces chunks read from r.
// It carries no trailers.
func NewReaderBody(r io.Reader) Body[[]byte] {
	return &readerBody{r: r}
}

type readerBody struct {
	mu  sync.Mutex
	r   io.Reader
	err error
}

func (b *readerBody) Next(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.err != nil {
		return nil, b.err
	}
	buf := make([]byte, readChunkSize)
	for {
		n, err := b.r.Read(buf)
		if n > 0 {
			// per the io.Reader contract the error, if any, applies
			// after the data, so it is held for the next call.
			b.err = err
			return buf[:n], nil
		}
		if err != nil {
			b.err = err
			return nil, err
		}
	}
}

func (b *readerBody) Trailers(ctx context.Context) (http.Header, error) {
	return nil, nil
}

// NewBodyReader adapts a Body into an io.Reader draining it.
// Reads block under ctx.
func NewBodyReader[D Bytes](ctx context.Context, b Body[D]) io.Reader {
	return &bodyReader[D]{ctx: ctx, b: b}
}

type bodyReader[D Bytes] struct {
	ctx context.Context
	b   Body[D]
	rem []byte
}

func (r *bodyReader[D]) Read(p []byte) (int, error) {
	for len(r.rem) == 0 {
		chunk, err := r.b.Next(r.ctx)
		if err != nil {
			return 0, err
		}
		r.rem = []byte(chunk)
	}
	n := copy(p, r.rem)
	r.rem = r.rem[n:]
	return n, nil
}

// ReadAll drains b and returns its chunks concatenated.
func ReadAll[D Bytes](ctx context.Context, b Body[D]) ([]byte, error) {
	var out []byte
	for {
		chunk, err := b.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, []byte(chunk)...)
	}
}
