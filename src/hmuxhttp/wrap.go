// Package hmuxhttp connects hmux handlers to net/http.
//
// Wrap turns an http.Handler into an hmux.Handler, Server does the reverse,
// and Serve runs a MakeMultiplexer over a listener, building one multiplexer
// per connection.
package hmuxhttp

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"go.inet256.org/hmux/src/hmux"
)

// Wrap adapts an http.Handler into an hmux.Handler.
// Notably *grpc.Server implements http.Handler, so Wrap covers both branches
// of a multiplexer.
//
// The returned handler is always ready. Each request runs h.ServeHTTP in its
// own goroutine; the response future settles on the first call to Write or
// WriteHeader, and body chunks stream out as the handler produces them.
func Wrap(h http.Handler) hmux.Handler[[]byte] {
	return &wrapped{h: h}
}

type wrapped struct {
	h http.Handler
}

func (w *wrapped) Ready(ctx context.Context) error {
	return nil
}

func (w *wrapped) Handle(ctx context.Context, req *hmux.Request) hmux.Future[*hmux.Response[[]byte]] {
	p := hmux.NewPromise[*hmux.Response[[]byte]]()
	hreq, err := toHTTPRequest(ctx, req)
	if err != nil {
		p.Fail(err)
		return p
	}
	rw := &responseWriter{ctx: ctx, p: p, header: http.Header{}}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				err := errors.Errorf("handler panic: %v", r)
				if r == http.ErrAbortHandler {
					err = http.ErrAbortHandler
				}
				rw.abort(err)
				return
			}
			rw.finish()
		}()
		w.h.ServeHTTP(rw, hreq)
	}()
	return p
}

// toHTTPRequest rebuilds a net/http request for ServeHTTP.
func toHTTPRequest(ctx context.Context, req *hmux.Request) (*http.Request, error) {
	target := "/"
	if req.URL != nil {
		target = req.URL.String()
	}
	body := req.Body
	if body == nil {
		body = hmux.NewEmptyBody[[]byte]()
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, target, hmux.NewBodyReader(ctx, body))
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		hreq.Header[k] = append([]string(nil), vs...)
	}
	if req.Proto != "" {
		hreq.Proto = req.Proto
		hreq.ProtoMajor = req.ProtoMajor
		hreq.ProtoMinor = req.ProtoMinor
	}
	hreq.RemoteAddr = req.RemoteAddr
	hreq.RequestURI = target
	hreq.ContentLength = -1
	return hreq, nil
}

// responseWriter is the http.ResponseWriter handed to the wrapped handler.
// It resolves the response promise on the first write and then streams
// chunks through the response body.
//
// It is used from the handler's goroutine only.
type responseWriter struct {
	ctx    context.Context
	p      *hmux.Promise[*hmux.Response[[]byte]]
	header http.Header

	wrote    bool
	declared []string
	w        *hmux.StreamWriter[[]byte]
}

func (rw *responseWriter) Header() http.Header {
	return rw.header
}

func (rw *responseWriter) WriteHeader(status int) {
	if rw.wrote {
		return
	}
	rw.wrote = true
	rw.declared = declaredTrailers(rw.header)
	w, body := hmux.NewStreamBody[[]byte]()
	rw.w = w
	rw.p.Succeed(&hmux.Response[[]byte]{
		Status: status,
		Header: snapshotHeader(rw.header),
		Body:   body,
	})
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.wrote {
		rw.WriteHeader(http.StatusOK)
	}
	// the caller may reuse data after Write returns, so it is copied out.
	chunk := append([]byte(nil), data...)
	if err := rw.w.Send(rw.ctx, chunk); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Flush is a no-op; chunks are handed to the reader as they are written.
func (rw *responseWriter) Flush() {}

func (rw *responseWriter) finish() {
	if !rw.wrote {
		rw.WriteHeader(http.StatusOK)
	}
	if trailers := collectTrailers(rw.header, rw.declared); len(trailers) > 0 {
		rw.w.SendTrailers(trailers)
	}
	rw.w.Close()
}

func (rw *responseWriter) abort(err error) {
	if rw.w != nil {
		rw.w.Abort(err)
	}
	rw.p.Fail(err)
}

// snapshotHeader copies h, leaving out trailer declarations and
// trailer-prefixed keys.
func snapshotHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		if k == "Trailer" || strings.HasPrefix(k, http.TrailerPrefix) {
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// declaredTrailers parses the Trailer header, which declares trailer names
// ahead of the body, possibly comma-separated.
func declaredTrailers(h http.Header) (ret []string) {
	for _, v := range h.Values("Trailer") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				ret = append(ret, name)
			}
		}
	}
	return ret
}

// collectTrailers gathers trailer values the way net/http defines them:
// values of declared names set after the headers were written, plus any key
// carrying the TrailerPrefix escape hatch.
func collectTrailers(h http.Header, declared []string) http.Header {
	var trailers http.Header
	for _, name := range declared {
		vs := h.Values(name)
		if len(vs) == 0 {
			continue
		}
		if trailers == nil {
			trailers = http.Header{}
		}
		trailers[http.CanonicalHeaderKey(name)] = append([]string(nil), vs...)
	}
	for k, vs := range h {
		if !strings.HasPrefix(k, http.TrailerPrefix) {
			continue
		}
		name := http.CanonicalHeaderKey(strings.TrimPrefix(k, http.TrailerPrefix))
		if trailers == nil {
			trailers = http.Header{}
		}
		trailers[name] = append(trailers[name], vs...)
	}
	return trailers
}

var _ http.ResponseWriter = &responseWriter{}
var _ http.Flusher = &responseWriter{}
