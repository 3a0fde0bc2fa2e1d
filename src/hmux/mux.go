package hmux

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

// grpcContentType is the Content-Type prefix which selects the gRPC branch.
// Subtypes such as application/grpc+proto share the prefix.
const grpcContentType = "application/grpc"

// IsGRPC reports whether a request with header h routes to the gRPC branch.
// The header name is matched case-insensitively, per HTTP; the value match
// is an exact byte prefix.
func IsGRPC(h http.Header) bool {
	return strings.HasPrefix(h.Get("Content-Type"), grpcContentType)
}

// Multiplexer routes each request to one of two handlers, based on whether
// the request's Content-Type starts with "application/grpc".
//
// A Multiplexer is itself a Handler[[]byte], so multiplexers compose with
// anything else that consumes handlers, including other multiplexers.
type Multiplexer[G, W Bytes] struct {
	grpc Handler[G]
	web  Handler[W]
}

// NewMultiplexer returns a Multiplexer routing between grpc and web.
func NewMultiplexer[G, W Bytes](grpc Handler[G], web Handler[W]) *Multiplexer[G, W] {
	return &Multiplexer[G, W]{grpc: grpc, web: web}
}

// Ready blocks until both handlers are ready. Both are always consulted,
// concurrently; if either fails, Ready returns that error wrapped in a
// BranchError and the multiplexer must be discarded.
func (m *Multiplexer[G, W]) Ready(ctx context.Context) error {
	return readyBoth(ctx, m.grpc.Ready, m.web.Ready)
}

// Handle dispatches req to exactly one of the two handlers.
// The routing decision is made once; the other handler never sees req.
func (m *Multiplexer[G, W]) Handle(ctx context.Context, req *Request) Future[*Response[[]byte]] {
	if IsGRPC(req.Header) {
		return &ResponseFuture[G, W]{branch: BranchGRPC, grpc: m.grpc.Handle(ctx, req)}
	}
	return &ResponseFuture[G, W]{branch: BranchWeb, web: m.web.Handle(ctx, req)}
}

// readyBoth runs both readiness checks concurrently and waits for both,
// returning the first failure.
func readyBoth(ctx context.Context, grpc, web func(context.Context) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return branchErr(BranchGRPC, grpc(ctx))
	})
	eg.Go(func() error {
		return branchErr(BranchWeb, web(ctx))
	})
	return eg.Wait()
}

var _ Handler[[]byte] = &Multiplexer[[]byte, string]{}
