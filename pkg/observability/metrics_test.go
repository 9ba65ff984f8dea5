package observability_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/observability"
	"github.com/aretw0/conduit/pkg/request"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums the samples of a counter family whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			match := true
			for k, v := range want {
				if labels[k] != v {
					match = false
				}
			}
			if match {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestMetrics_RecordsLifecycle(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch {
		case r.URL.Path == "/missing":
			w.WriteHeader(http.StatusNotFound)
		case n == 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	cfg := request.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RetryDelay = time.Millisecond
	o := request.New(
		request.WithConfig(cfg),
		request.WithLifecycleHooks(metrics.Hooks()),
	)

	_, err = o.Get(context.Background(), "/ok")
	require.NoError(t, err)
	_, err = o.Get(context.Background(), "/missing")
	require.Error(t, err)

	assert.Equal(t, 3.0, counterValue(t, reg, "conduit_client_attempts_total", map[string]string{"method": "GET"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "conduit_client_retries_total", map[string]string{"reason": "status_503"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "conduit_client_failures_total", map[string]string{"kind": "client"}))

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err, "collectors are registered once per registry")
}

func TestServerMetrics_LabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewServerMetrics(reg)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/teapot", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	h := metrics.Middleware(mux)

	for _, path := range []string{"/teapot", "/ok", "/ok"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1.0, counterValue(t, reg, "conduit_server_requests_total", map[string]string{"route": "/teapot", "code": "418"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "conduit_server_requests_total", map[string]string{"route": "/ok", "code": "200"}))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LogHooks(logging.NewWithWriter(&buf, -4))

	ctx := context.Background()
	hooks.OnRetry(ctx, &domain.RequestEvent{Method: domain.MethodGet, Path: "/x", Reason: "status_503", Delay: time.Second})
	hooks.OnError(ctx, &domain.RequestEvent{Method: domain.MethodGet, Path: "/x", Status: 503, Reason: "server"})

	out := buf.String()
	assert.Contains(t, out, "msg=request_retry")
	assert.Contains(t, out, "reason=status_503")
	assert.Contains(t, out, "delay=1s")
	assert.Contains(t, out, "msg=request_failed")
	assert.Contains(t, out, "kind=server")
}
