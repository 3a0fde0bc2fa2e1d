package hmux

import (
	"context"
	"io"
	"net/http"
)

// BranchBody re-exposes the body of whichever handler produced a response
// behind the canonical []byte chunk type. Exactly one inner body is ever
// set, and only that one is read.
type BranchBody[G, W Bytes] struct {
	branch Branch
	grpc   Body[G]
	web    Body[W]
}

// NewGRPCBody wraps the body of a gRPC response.
func NewGRPCBody[G, W Bytes](b Body[G]) *BranchBody[G, W] {
	return &BranchBody[G, W]{branch: BranchGRPC, grpc: b}
}

// NewWebBody wraps the body of a web response.
func NewWebBody[G, W Bytes](b Body[W]) *BranchBody[G, W] {
	return &BranchBody[G, W]{branch: BranchWeb, web: b}
}

// Branch reports which side produced the wrapped body.
func (b *BranchBody[G, W]) Branch() Branch {
	return b.branch
}

// Next returns the inner body's next chunk converted to []byte.
// Inner errors are wrapped in a BranchError, except io.EOF, which is
// passed through untouched so that it still means end of stream.
func (b *BranchBody[G, W]) Next(ctx context.Context) ([]byte, error) {
	switch b.branch {
	case BranchGRPC:
		chunk, err := b.grpc.Next(ctx)
		if err != nil {
			return nil, bodyErr(BranchGRPC, err)
		}
		return []byte(chunk), nil
	default:
		chunk, err := b.web.Next(ctx)
		if err != nil {
			return nil, bodyErr(BranchWeb, err)
		}
		return []byte(chunk), nil
	}
}

// Trailers returns the inner body's trailers unchanged.
func (b *BranchBody[G, W]) Trailers(ctx context.Context) (http.Header, error) {
	switch b.branch {
	case BranchGRPC:
		trailers, err := b.grpc.Trailers(ctx)
		return trailers, bodyErr(BranchGRPC, err)
	default:
		trailers, err := b.web.Trailers(ctx)
		return trailers, bodyErr(BranchWeb, err)
	}
}

func bodyErr(b Branch, err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	return &BranchError{Branch: b, Err: err}
}

var _ Body[[]byte] = &BranchBody[[]byte, string]{}
