// Package hmux routes requests between a gRPC handler and a handler for
// everything else, using the Content-Type header to tell them apart.
//
// The two sides of a Multiplexer can produce bodies with different chunk
// types; the multiplexer re-exposes whichever side handled the request
// behind a single canonical []byte surface.
package hmux

import (
	"context"
	"net"
	"net/http"
)

// Bytes is the constraint on body chunk types.
//
// Converting a chunk to []byte is free when the underlying type is []byte,
// and copies when it is string.
type Bytes interface {
	~[]byte | ~string
}

// Body is a streaming request or response payload.
//
// A Body is consumed by one reader; none of its methods may be called
// concurrently with each other.
type Body[D Bytes] interface {
	// Next blocks until the next chunk is available and returns it.
	// It returns io.EOF after the final chunk, and any other error
	// exactly as the producer reported it.
	Next(ctx context.Context) (D, error)
	// Trailers blocks until the body has ended and returns the trailing
	// headers, if any. It returns nil when the producer sent none.
	Trailers(ctx context.Context) (http.Header, error)
}

// Future is the result of an operation which may still be in progress.
type Future[T any] interface {
	// Await blocks until the future settles or ctx is done.
	// Await may be called multiple times and from multiple goroutines.
	Await(ctx context.Context) (T, error)
}

// Handler responds to requests.
type Handler[D Bytes] interface {
	// Ready blocks until the handler can accept another call to Handle.
	// A non-nil error means the handler has failed and must be discarded.
	Ready(ctx context.Context) error
	// Handle begins processing req and returns a future for the response.
	// Callers must have observed a successful Ready first.
	Handle(ctx context.Context, req *Request) Future[*Response[D]]
}

// Factory produces a Handler for each target it is asked about.
// Targets are typically network connections.
type Factory[D Bytes] interface {
	// Ready blocks until the factory can accept another call to Build.
	Ready(ctx context.Context) error
	// Build begins constructing a handler for target.
	Build(ctx context.Context, target Target) Future[Handler[D]]
}

// Target identifies what a Factory is building a Handler for.
type Target struct {
	LocalAddr  net.Addr
	RemoteAddr net.Addr
}
