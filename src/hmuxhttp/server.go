package hmuxhttp

import (
	"context"
	"io"
	"net"
	"net/http"

	"go.brendoncarroll.net/stdctx/logctx"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/net/http2"

	"go.inet256.org/hmux/src/hmux"
)

// Server serves an hmux.Handler as an http.Handler.
type Server struct {
	h hmux.Handler[[]byte]
}

func NewServer(h hmux.Handler[[]byte]) *Server {
	return &Server{h: h}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.h.Ready(ctx); err != nil {
		logctx.Errorln(ctx, err)
		http.Error(w, "handler not ready", http.StatusServiceUnavailable)
		return
	}
	resp, err := s.h.Handle(ctx, fromHTTPRequest(r)).Await(ctx)
	if err != nil {
		logctx.Errorln(ctx, err)
		http.Error(w, "handler failed", http.StatusBadGateway)
		return
	}
	writeResponse(ctx, w, resp)
}

func fromHTTPRequest(r *http.Request) *hmux.Request {
	return &hmux.Request{
		Method:     r.Method,
		URL:        r.URL,
		Header:     r.Header,
		Proto:      r.Proto,
		ProtoMajor: r.ProtoMajor,
		ProtoMinor: r.ProtoMinor,
		RemoteAddr: r.RemoteAddr,
		Body:       hmux.NewReaderBody(r.Body),
	}
}

// writeResponse streams resp out through w, flushing after each chunk and
// emitting trailers once the body ends.
func writeResponse(ctx context.Context, w http.ResponseWriter, resp *hmux.Response[[]byte]) {
	hdr := w.Header()
	for k, vs := range resp.Header {
		hdr[k] = vs
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	f, _ := w.(http.Flusher)
	for {
		chunk, err := resp.Body.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			logctx.Errorln(ctx, err)
			// the headers are out; all that is left is to kill the stream.
			panic(http.ErrAbortHandler)
		}
		if len(chunk) == 0 {
			continue
		}
		if _, err := w.Write(chunk); err != nil {
			logctx.Errorln(ctx, err)
			return
		}
		if f != nil {
			f.Flush()
		}
	}
	trailers, err := resp.Body.Trailers(ctx)
	if err != nil {
		logctx.Errorln(ctx, err)
		panic(http.ErrAbortHandler)
	}
	names := maps.Keys(trailers)
	slices.Sort(names)
	for _, name := range names {
		for _, v := range trailers[name] {
			hdr.Add(http.TrailerPrefix+name, v)
		}
	}
}

// Serve accepts connections from l and serves each one over cleartext
// HTTP/2, building a fresh Multiplexer per connection through mk.
// It returns when l fails or ctx is canceled.
func Serve[G, W hmux.Bytes](ctx context.Context, l net.Listener, mk *hmux.MakeMultiplexer[G, W]) error {
	h2s := &http2.Server{}
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go serveConn(ctx, h2s, conn, mk)
	}
}

func serveConn[G, W hmux.Bytes](ctx context.Context, h2s *http2.Server, conn net.Conn, mk *hmux.MakeMultiplexer[G, W]) {
	defer conn.Close()
	if err := mk.Ready(ctx); err != nil {
		logctx.Errorln(ctx, err)
		return
	}
	target := hmux.Target{
		LocalAddr:  conn.LocalAddr(),
		RemoteAddr: conn.RemoteAddr(),
	}
	m, err := mk.Build(ctx, target).Await(ctx)
	if err != nil {
		logctx.Errorln(ctx, err)
		return
	}
	h2s.ServeConn(conn, &http2.ServeConnOpts{
		Context: ctx,
		Handler: NewServer(m),
	})
}
