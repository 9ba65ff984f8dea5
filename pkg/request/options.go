package request

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
	"golang.org/x/time/rate"
)

// Sleeper waits for d or until ctx is done. Tests inject a recording sleeper.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option defines a functional option for configuring the Orchestrator.
type Option func(*Orchestrator)

// WithConfig sets the initial policy. It is also what Reset restores.
func WithConfig(cfg Config) Option {
	return func(o *Orchestrator) {
		o.initial = cfg.normalize()
	}
}

// WithBaseURL is a shortcut for setting Config.BaseURL.
func WithBaseURL(baseURL string) Option {
	return func(o *Orchestrator) {
		o.initial.BaseURL = baseURL
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Orchestrator) {
		o.client = client
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithNotifier sets the sink used to surface terminal failures.
func WithNotifier(n ports.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithAuthHandler sets the 401/403 callbacks.
func WithAuthHandler(h ports.AuthHandler) Option {
	return func(o *Orchestrator) {
		o.auth = h
	}
}

// WithContextSource sets the provider of the X-Project-Id header.
func WithContextSource(src ports.ContextSource) Option {
	return func(o *Orchestrator) {
		o.contextSource = src
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// WithSleeper replaces the backoff wait.
func WithSleeper(s Sleeper) Option {
	return func(o *Orchestrator) {
		o.sleep = s
	}
}

// WithRateLimiter throttles attempts on the client side before they hit the server.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(o *Orchestrator) {
		o.limiter = l
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
