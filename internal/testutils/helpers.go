package testutils

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/aretw0/conduit/pkg/adapters/http"
	"github.com/aretw0/conduit/pkg/request"
)

// SetupAPI starts the reference API server on a loopback port for the duration
// of the test. It returns the server (for fault injection and inspection) and its
// base URL.
func SetupAPI(t *testing.T, opts ...httpadapter.Option) (*httpadapter.Server, string) {
	t.Helper()

	api := httpadapter.NewServer(opts...)
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)

	return api, ts.URL
}

// NoSleep is a request.Sleeper that returns immediately, so retry paths run
// without real backoff delays.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// NewClient returns an orchestrator pointed at baseURL that never sleeps between
// retries.
func NewClient(baseURL string, opts ...request.Option) *request.Orchestrator {
	base := []request.Option{
		request.WithBaseURL(baseURL),
		request.WithSleeper(NoSleep),
	}
	return request.New(append(base, opts...)...)
}
