package hmux

import (
	"context"
)

// ResponseFuture is the response future returned by Multiplexer.Handle.
// It remembers which branch the request went to and converts that branch's
// response to the canonical chunk type when it settles.
type ResponseFuture[G, W Bytes] struct {
	branch Branch
	grpc   Future[*Response[G]]
	web    Future[*Response[W]]
}

// Branch reports which handler the request was dispatched to.
func (f *ResponseFuture[G, W]) Branch() Branch {
	return f.branch
}

// Await blocks until the dispatched handler's response settles.
// Handler errors are wrapped in a BranchError; the response status, headers,
// and body are forwarded without modification, with the body re-exposed as
// []byte chunks.
func (f *ResponseFuture[G, W]) Await(ctx context.Context) (*Response[[]byte], error) {
	switch f.branch {
	case BranchGRPC:
		resp, err := f.grpc.Await(ctx)
		if err != nil {
			return nil, branchErr(BranchGRPC, err)
		}
		return &Response[[]byte]{
			Status: resp.Status,
			Header: resp.Header,
			Body:   NewGRPCBody[G, W](resp.Body),
		}, nil
	default:
		resp, err := f.web.Await(ctx)
		if err != nil {
			return nil, branchErr(BranchWeb, err)
		}
		return &Response[[]byte]{
			Status: resp.Status,
			Header: resp.Header,
			Body:   NewWebBody[G, W](resp.Body),
		}, nil
	}
}

var _ Future[*Response[[]byte]] = &ResponseFuture[[]byte, string]{}
