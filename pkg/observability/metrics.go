package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the client-side request collectors.
type Metrics struct {
	Requests *prometheus.CounterVec
	Retries  *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the client collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conduit_client_attempts_total",
				Help: "Total number of request attempts sent, retries included",
			},
			[]string{"method"},
		),
		Retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conduit_client_retries_total",
				Help: "Total number of retries scheduled, by reason",
			},
			[]string{"reason"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conduit_client_failures_total",
				Help: "Total number of requests that ended in a terminal error, by kind",
			},
			[]string{"kind"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conduit_client_request_duration_seconds",
				Help:    "End-to-end duration of logical requests, retries and backoff included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
	}
	for _, c := range []prometheus.Collector{m.Requests, m.Retries, m.Failures, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequest: func(ctx context.Context, e *domain.RequestEvent) {
			m.Requests.WithLabelValues(string(e.Method)).Inc()
		},
		OnRetry: func(ctx context.Context, e *domain.RequestEvent) {
			m.Retries.WithLabelValues(e.Reason).Inc()
		},
		OnResponse: func(ctx context.Context, e *domain.RequestEvent) {
			m.Duration.WithLabelValues(string(e.Method), "success").Observe(e.Duration.Seconds())
		},
		OnError: func(ctx context.Context, e *domain.RequestEvent) {
			m.Failures.WithLabelValues(e.Reason).Inc()
			m.Duration.WithLabelValues(string(e.Method), "error").Observe(e.Duration.Seconds())
		},
	}
}

// ServerMetrics instruments an http.Handler.
type ServerMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewServerMetrics creates and registers the server collectors on reg.
func NewServerMetrics(reg prometheus.Registerer) (*ServerMetrics, error) {
	m := &ServerMetrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conduit_server_requests_total",
				Help: "Total number of API requests served, by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conduit_server_request_duration_seconds",
				Help:    "Duration of API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	for _, c := range []prometheus.Collector{m.Requests, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware records one observation per request, labelled with the chi route
// pattern so that item IDs do not explode the label space.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.Duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
