package hmuxd

import (
	"context"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/soheilhy/cmux"
	"go.brendoncarroll.net/stdctx/logctx"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"go.inet256.org/hmux/src/hmux"
	"go.inet256.org/hmux/src/hmuxhttp"
)

type Params struct {
	ListenAddr string
	// SharedHandlers disables per-connection handler pairs.
	SharedHandlers bool
	GRPC           *grpc.Server
	Web            http.Handler
	// Registry collects metrics when non-nil.
	Registry *prometheus.Registry
}

// MakeParams assembles the daemon's servers from a config.
func MakeParams(c Config) (*Params, error) {
	var registry *prometheus.Registry
	if c.Metrics != nil {
		registry = prometheus.NewRegistry()
	}
	return &Params{
		ListenAddr:     c.GetListenAddr(),
		SharedHandlers: c.SharedHandlers,
		GRPC:           makeGRPCServer(),
		Web:            newWebHandler(c.Web, registry),
		Registry:       registry,
	}, nil
}

type Daemon struct {
	params Params

	setupDone chan struct{}
	apiAddr   net.Addr
}

func New(p Params) *Daemon {
	return &Daemon{
		params:    p,
		setupDone: make(chan struct{}),
	}
}

// Run serves until ctx is canceled or the listener fails.
//
// Connections which open with the HTTP/2 preface get a Multiplexer built
// just for them; everything else is served over HTTP/1, with h2c upgrade,
// by one multiplexer shared across connections. With SharedHandlers set,
// every connection goes through the shared multiplexer.
func (d *Daemon) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", d.params.ListenAddr)
	if err != nil {
		return err
	}
	defer l.Close()
	d.apiAddr = l.Addr()
	close(d.setupDone)
	logctx.Infof(ctx, "API listening on: %v", l.Addr())

	grpcHandler, webHandler := d.handlers()
	shared := hmux.NewMultiplexer[[]byte, []byte](grpcHandler, webHandler)
	if d.params.SharedHandlers {
		if err := d.runHTTPServer(ctx, l, hmuxhttp.NewServer(shared)); err != nil {
			return err
		}
		return ctx.Err()
	}
	perConn := hmux.NewMakeMultiplexer[[]byte, []byte](
		hmux.NewShared[[]byte](grpcHandler),
		hmux.NewShared[[]byte](webHandler),
	)

	cm := cmux.New(l)
	h2Listener := cm.Match(cmux.HTTP2())
	h1Listener := cm.Match(cmux.Any())

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		l.Close()
		return nil
	})
	eg.Go(func() error {
		return hmuxhttp.Serve(ctx, h2Listener, perConn)
	})
	eg.Go(func() error {
		return d.runHTTPServer(ctx, h1Listener, hmuxhttp.NewServer(shared))
	})
	eg.Go(func() error {
		if err := cm.Serve(); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
	return eg.Wait()
}

func (d *Daemon) handlers() (grpcHandler, webHandler hmux.Handler[[]byte]) {
	grpcHandler = hmuxhttp.Wrap(d.params.GRPC)
	webHandler = hmuxhttp.Wrap(d.params.Web)
	if d.params.Registry != nil {
		m := newMetrics(d.params.Registry)
		grpcHandler = m.instrument(hmux.BranchGRPC, grpcHandler)
		webHandler = m.instrument(hmux.BranchWeb, webHandler)
	}
	return grpcHandler, webHandler
}

// DoWithAddr calls cb with the bound API address, waiting for Run to reach
// setup first.
func (d *Daemon) DoWithAddr(ctx context.Context, cb func(addr net.Addr) error) error {
	select {
	case <-d.setupDone:
		return cb(d.apiAddr)
	case <-ctx.Done():
		return ctx.Err()
	}
}
