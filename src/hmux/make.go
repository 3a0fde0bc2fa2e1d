package hmux

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

// MakeMultiplexer is a Factory-of-multiplexers: it builds one Multiplexer
// per target out of a handler factory for each branch. Serving code uses it
// to give every connection its own pair of handlers.
type MakeMultiplexer[G, W Bytes] struct {
	grpc Factory[G]
	web  Factory[W]
}

// NewMakeMultiplexer returns a MakeMultiplexer building from grpc and web.
func NewMakeMultiplexer[G, W Bytes](grpc Factory[G], web Factory[W]) *MakeMultiplexer[G, W] {
	return &MakeMultiplexer[G, W]{grpc: grpc, web: web}
}

// Ready blocks until both factories are ready, consulting both concurrently
// exactly as Multiplexer.Ready does for handlers.
func (m *MakeMultiplexer[G, W]) Ready(ctx context.Context) error {
	return readyBoth(ctx, m.grpc.Ready, m.web.Ready)
}

// Build starts both factories for target and returns a future which joins
// them. Both factories receive their own copy of target.
func (m *MakeMultiplexer[G, W]) Build(ctx context.Context, target Target) *BuildFuture[G, W] {
	return &BuildFuture[G, W]{
		grpc: m.grpc.Build(ctx, target),
		web:  m.web.Build(ctx, target),
	}
}

// BuildFuture resolves to a Multiplexer once both inner builds have settled.
type BuildFuture[G, W Bytes] struct {
	grpc Future[Handler[G]]
	web  Future[Handler[W]]
}

// Await waits for both builds. It is a join, not a race: a failure on one
// side still waits for the other side to settle, so no in-flight build is
// abandoned. If one side fails its error is returned wrapped in a
// BranchError; if both fail the result is a multierror holding the gRPC
// error first and the web error second.
func (f *BuildFuture[G, W]) Await(ctx context.Context) (*Multiplexer[G, W], error) {
	grpc, grpcErr := f.grpc.Await(ctx)
	web, webErr := f.web.Await(ctx)
	grpcErr = branchErr(BranchGRPC, grpcErr)
	webErr = branchErr(BranchWeb, webErr)
	switch {
	case grpcErr != nil && webErr != nil:
		return nil, multierror.Append(grpcErr, webErr)
	case grpcErr != nil:
		return nil, grpcErr
	case webErr != nil:
		return nil, webErr
	}
	return NewMultiplexer(grpc, web), nil
}

var _ Future[*Multiplexer[[]byte, string]] = &BuildFuture[[]byte, string]{}
