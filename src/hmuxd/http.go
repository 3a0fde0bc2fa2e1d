package hmuxd

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.brendoncarroll.net/stdctx/logctx"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// runHTTPServer serves handler on l for HTTP/1 clients, upgrading to h2c
// when asked.
func (d *Daemon) runHTTPServer(ctx context.Context, l net.Listener, handler http.Handler) error {
	h2Srv := &http2.Server{}
	hSrv := http.Server{
		Handler:     h2c.NewHandler(handler, h2Srv),
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	go func() {
		err := hSrv.Serve(l)
		if err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
			logctx.Errorf(ctx, "error serving http: %v", err)
		}
	}()
	<-ctx.Done()
	return hSrv.Shutdown(context.Background())
}

// newWebHandler builds the handler for the web branch: a health check, the
// metrics endpoint when enabled, and a catch-all greeting route.
func newWebHandler(spec WebSpec, registry *prometheus.Registry) http.Handler {
	mux := chi.NewMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hmux\n"))
	})
	if registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	greeting := spec.Greeting
	if greeting == "" {
		greeting = "Hello World"
	}
	mux.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		logctx.Infof(r.Context(), "web request from %v: %v %v %v", r.RemoteAddr, r.Method, r.URL.Path, r.Proto)
		fmt.Fprintln(w, greeting)
	})
	return mux
}

// makeGRPCServer builds the gRPC branch with the standard health service
// registered. Serving status for the empty service name defaults to SERVING.
func makeGRPCServer() *grpc.Server {
	gs := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, health.NewServer())
	return gs
}
