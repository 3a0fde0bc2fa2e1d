package hmux

import (
	"errors"
	"fmt"
)

// Branch names one side of a multiplexer.
type Branch uint8

const (
	// BranchGRPC is the side which receives gRPC requests.
	BranchGRPC = Branch(1 + iota)
	// BranchWeb is the side which receives everything else.
	BranchWeb
)

func (b Branch) String() string {
	switch b {
	case BranchGRPC:
		return "grpc"
	case BranchWeb:
		return "web"
	default:
		return fmt.Sprintf("branch(%d)", uint8(b))
	}
}

// BranchError wraps an error from one side of a multiplexer so that callers
// can tell which handler produced it. The inner error is never altered;
// io.EOF from a body is passed through without wrapping.
type BranchError struct {
	Branch Branch
	Err    error
}

func (e *BranchError) Error() string {
	return fmt.Sprintf("%v branch: %v", e.Branch, e.Err)
}

func (e *BranchError) Unwrap() error {
	return e.Err
}

// IsBranchError returns true if err or anything it wraps is a BranchError.
func IsBranchError(err error) bool {
	var be *BranchError
	return errors.As(err, &be)
}

// BranchOf reports which branch err came from.
// ok is false if err does not carry branch information.
func BranchOf(err error) (b Branch, ok bool) {
	var be *BranchError
	if errors.As(err, &be) {
		return be.Branch, true
	}
	return 0, false
}

func branchErr(b Branch, err error) error {
	if err == nil {
		return nil
	}
	return &BranchError{Branch: b, Err: err}
}
