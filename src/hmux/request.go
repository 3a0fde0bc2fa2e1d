package hmux

import (
	"net/http"
	"net/url"
)

// Request is a protocol-agnostic view of an inbound HTTP request.
// The request body always carries []byte chunks.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header

	// Proto fields mirror net/http. Handlers which speak HTTP/2 only,
	// such as gRPC servers, reject requests that do not claim it.
	Proto      string
	ProtoMajor int
	ProtoMinor int

	// RemoteAddr is the address of the peer, when known.
	RemoteAddr string

	Body Body[[]byte]
}

// NewRequest assembles a request, mostly for tests and hand-rolled clients.
// A nil body is replaced with an empty one.
func NewRequest(method, target string, body Body[[]byte]) (*Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if body == nil {
		body = NewEmptyBody[[]byte]()
	}
	return &Request{
		Method:     method,
		URL:        u,
		Header:     http.Header{},
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Body:       body,
	}, nil
}

// Response is what a Handler resolves to.
type Response[D Bytes] struct {
	// Status is an HTTP status code. 0 is treated as 200 by transports.
	Status int
	Header http.Header
	Body   Body[D]
}

// NewResponse returns a response with the given status and body.
// A nil body is replaced with an empty one.
func NewResponse[D Bytes](status int, body Body[D]) *Response[D] {
	if body == nil {
		body = NewEmptyBody[D]()
	}
	return &Response[D]{
		Status: status,
		Header: http.Header{},
		Body:   body,
	}
}
