package hmuxd

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"go.inet256.org/hmux/src/hmux"
)

type metrics struct {
	requests *prometheus.CounterVec
}

func newMetrics(registry *prometheus.Registry) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hmux_requests_total",
			Help: "Requests dispatched, by branch.",
		}, []string{"branch"}),
	}
	registry.MustRegister(m.requests)
	return m
}

// instrument wraps h so that every dispatched request is counted against b.
func (m *metrics) instrument(b hmux.Branch, h hmux.Handler[[]byte]) hmux.Handler[[]byte] {
	return &instrumented{
		requests: m.requests.WithLabelValues(b.String()),
		inner:    h,
	}
}

type instrumented struct {
	requests prometheus.Counter
	inner    hmux.Handler[[]byte]
}

func (h *instrumented) Ready(ctx context.Context) error {
	return h.inner.Ready(ctx)
}

func (h *instrumented) Handle(ctx context.Context, req *hmux.Request) hmux.Future[*hmux.Response[[]byte]] {
	h.requests.Inc()
	return h.inner.Handle(ctx, req)
}
