package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/http/cookiejar"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
	"golang.org/x/time/rate"
)

// Orchestrator sends requests with interceptors, per-attempt timeouts, retries and
// error classification. Safe for concurrent use; each Send owns its retry counters.
type Orchestrator struct {
	client   *http.Client
	logger   *slog.Logger
	notifier ports.Notifier
	auth     ports.AuthHandler
	hooks    domain.LifecycleHooks
	sleep    Sleeper
	limiter  *rate.Limiter

	mu            sync.RWMutex
	initial       Config
	cfg           Config
	contextSource ports.ContextSource

	requestInterceptors  registry[RequestInterceptor]
	responseInterceptors registry[ResponseInterceptor]
}

// New creates an Orchestrator. Without options it uses DefaultConfig, a cookie-jar
// client (credentials included), and no-op collaborators.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		initial: DefaultConfig(),
		logger:  logging.NewNop(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.client == nil {
		jar, _ := cookiejar.New(nil)
		o.client = &http.Client{Jar: jar}
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.sleep == nil {
		o.sleep = sleepContext
	}
	o.initial = o.initial.normalize()
	o.cfg = o.initial
	return o
}

// Configure replaces the process-wide policy. Intended to run once at startup.
func (o *Orchestrator) Configure(cfg Config) {
	o.mu.Lock()
	o.cfg = cfg.normalize()
	o.mu.Unlock()
}

// Config returns a copy of the active policy.
func (o *Orchestrator) Config() Config {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg.normalize()
}

// Reset restores the construction-time policy and drops every interceptor and the
// context source. It exists so test suites can run in isolation.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.cfg = o.initial
	o.contextSource = nil
	o.mu.Unlock()
	o.requestInterceptors.reset()
	o.responseInterceptors.reset()
}

// SetContextSource installs the project-context getter. It is queried at the
// start of every attempt and never cached.
func (o *Orchestrator) SetContextSource(src ports.ContextSource) {
	o.mu.Lock()
	o.contextSource = src
	o.mu.Unlock()
}

// UseRequest appends a request interceptor.
func (o *Orchestrator) UseRequest(fn RequestInterceptor) Unregister {
	return o.requestInterceptors.add(fn)
}

// UseResponse appends a response interceptor.
func (o *Orchestrator) UseResponse(fn ResponseInterceptor) Unregister {
	return o.responseInterceptors.add(fn)
}

// Interceptors reports how many request and response interceptors are registered.
func (o *Orchestrator) Interceptors() (requests, responses int) {
	return o.requestInterceptors.len(), o.responseInterceptors.len()
}

func (o *Orchestrator) snapshot() (Config, ports.ContextSource) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg, o.contextSource
}

// Send runs spec to completion, retrying transient failures, and returns the final
// envelope. Every failure is a *domain.APIError.
func (o *Orchestrator) Send(ctx context.Context, spec domain.RequestSpec) (domain.Response, error) {
	if spec.Method == "" {
		spec.Method = domain.MethodGet
	}
	if !spec.Method.Valid() {
		err := domain.NewAPIError(0, domain.KindInvalidRequest, fmt.Sprintf("Invalid request: unsupported method %q", spec.Method), nil)
		return domain.Response{}, o.fail(ctx, spec, err, time.Now())
	}

	start := time.Now()
	transient := 0
	limited := 0

	for attempt := 0; ; attempt++ {
		spec.Attempt = attempt
		cfg, _ := o.snapshot()

		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return domain.Response{}, o.fail(ctx, spec, canceledError(err), start)
			}
		}

		o.emit(ctx, o.hooks.OnRequest, &domain.RequestEvent{
			Type:    domain.EventRequest,
			Method:  spec.Method,
			Path:    spec.Path,
			Attempt: attempt,
		})

		resp, apiErr := o.attempt(ctx, spec)
		if apiErr != nil {
			if apiErr.Kind == domain.KindNetwork && transient < cfg.RetryCount {
				delay := cfg.Backoff(transient)
				transient++
				if err := o.wait(ctx, spec, delay, "network"); err != nil {
					return domain.Response{}, o.fail(ctx, spec, err, start)
				}
				continue
			}
			return domain.Response{}, o.fail(ctx, spec, apiErr, start)
		}

		if resp.OK {
			final, err := o.runResponseInterceptors(ctx, resp)
			if err != nil {
				return domain.Response{}, o.fail(ctx, spec, err, start)
			}
			o.emit(ctx, o.hooks.OnResponse, &domain.RequestEvent{
				Type:     domain.EventResponse,
				Method:   spec.Method,
				Path:     spec.Path,
				Attempt:  attempt,
				Status:   final.Status,
				Duration: time.Since(start),
			})
			return final, nil
		}

		switch resp.Status {
		case http.StatusTooManyRequests:
			if limited < cfg.RateLimitRetries {
				limited++
				delay := retryAfter(resp.Header.Get(domain.HeaderRetryAfter), cfg.DefaultRetryAfter, time.Now())
				if err := o.wait(ctx, spec, delay, "rate_limited"); err != nil {
					return domain.Response{}, o.fail(ctx, spec, err, start)
				}
				continue
			}
		case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			if transient < cfg.RetryCount {
				delay := cfg.Backoff(transient)
				transient++
				if err := o.wait(ctx, spec, delay, fmt.Sprintf("status_%d", resp.Status)); err != nil {
					return domain.Response{}, o.fail(ctx, spec, err, start)
				}
				continue
			}
		case http.StatusUnauthorized:
			if o.auth != nil {
				o.auth.OnUnauthorized()
			}
		case http.StatusForbidden:
			if o.auth != nil {
				o.auth.OnForbidden()
			}
		}

		err := domain.NewAPIError(resp.Status, domain.KindForStatus(resp.Status), errorMessage(resp), resp.Data.Value())
		return domain.Response{}, o.fail(ctx, spec, err, start)
	}
}

// canonicalHeaders folds h onto canonical header names. Keys are visited in
// sorted order and a non-canonical spelling overrides the canonical one, since
// the incoming map is canonical already and anything else was added on top of it.
func canonicalHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	keys := slices.Sorted(maps.Keys(h))
	for _, k := range keys {
		if http.CanonicalHeaderKey(k) == k {
			out[k] = h[k]
		}
	}
	for _, k := range keys {
		if c := http.CanonicalHeaderKey(k); c != k {
			out[c] = h[k]
		}
	}
	return out
}

// attempt performs one transfer. The returned error is already classified.
func (o *Orchestrator) attempt(ctx context.Context, spec domain.RequestSpec) (domain.Response, *domain.APIError) {
	cfg, source := o.snapshot()

	// Defaults < context header < caller headers, compared by canonical name.
	headers := canonicalHeaders(cfg.DefaultHeaders)
	if source != nil {
		if id, ok := source(); ok && id != "" {
			headers[domain.HeaderProjectID] = id
		}
	}
	maps.Copy(headers, canonicalHeaders(spec.Headers))

	out := spec.Clone()
	out.Headers = headers
	for _, interceptor := range o.requestInterceptors.snapshot() {
		next, err := interceptor(ctx, out)
		if err != nil {
			return domain.Response{}, domain.NewAPIError(0, domain.KindInterceptor, "Request interceptor failed", nil, err)
		}
		next.Headers = canonicalHeaders(next.Headers)
		out = next
	}

	timeout := cfg.Timeout
	if out.Timeout > 0 {
		timeout = out.Timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(out.Body) > 0 {
		body = bytes.NewReader(out.Body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, string(out.Method), joinURL(cfg.BaseURL, out.Path), body)
	if err != nil {
		return domain.Response{}, domain.NewAPIError(0, domain.KindInvalidRequest, "Invalid request: "+err.Error(), nil, err)
	}
	for k, v := range out.Headers {
		req.Header.Set(k, v)
	}

	o.logger.DebugContext(ctx, "sending request", "method", out.Method, "path", out.Path, "attempt", out.Attempt)

	httpResp, err := o.client.Do(req)
	if err != nil {
		return domain.Response{}, classifyTransport(ctx, attemptCtx, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return domain.Response{}, classifyTransport(ctx, attemptCtx, err)
	}

	ok := domain.IsSuccess(httpResp.StatusCode)
	data, err := decodeBody(httpResp.Header.Get(domain.HeaderContentType), raw)
	if err != nil {
		if ok {
			return domain.Response{}, domain.NewAPIError(0, domain.KindMalformed, domain.MessageMalformedResponse, string(raw), err)
		}
		// Error pages from proxies are often mislabelled; keep them as text.
		data = domain.TextBody(string(raw))
	}

	return domain.Response{
		Data:       data,
		OK:         ok,
		Status:     httpResp.StatusCode,
		StatusText: statusText(httpResp),
		Header:     httpResp.Header,
	}, nil
}

func (o *Orchestrator) runResponseInterceptors(ctx context.Context, resp domain.Response) (domain.Response, *domain.APIError) {
	for _, interceptor := range o.responseInterceptors.snapshot() {
		next, err := interceptor(ctx, resp)
		if err != nil {
			return domain.Response{}, domain.NewAPIError(resp.Status, domain.KindInterceptor, "Response interceptor failed", resp.Data.Value(), err)
		}
		resp = next
	}
	return resp, nil
}

// wait sleeps before the next attempt. A cancelled caller context aborts the sequence.
func (o *Orchestrator) wait(ctx context.Context, spec domain.RequestSpec, delay time.Duration, reason string) *domain.APIError {
	o.logger.InfoContext(ctx, "retrying request",
		"method", spec.Method,
		"path", spec.Path,
		"attempt", spec.Attempt+1,
		"reason", reason,
		"delay", delay,
	)
	o.emit(ctx, o.hooks.OnRetry, &domain.RequestEvent{
		Type:    domain.EventRetry,
		Method:  spec.Method,
		Path:    spec.Path,
		Attempt: spec.Attempt,
		Reason:  reason,
		Delay:   delay,
	})
	if err := o.sleep(ctx, delay); err != nil {
		return canceledError(err)
	}
	return nil
}

// fail logs, notifies and reports a terminal error.
func (o *Orchestrator) fail(ctx context.Context, spec domain.RequestSpec, apiErr *domain.APIError, start time.Time) error {
	o.logger.WarnContext(ctx, "request failed",
		"method", spec.Method,
		"path", spec.Path,
		"attempt", spec.Attempt,
		"status", apiErr.Status,
		"kind", apiErr.Kind,
		"err", apiErr.Message,
	)
	o.emit(ctx, o.hooks.OnError, &domain.RequestEvent{
		Type:     domain.EventError,
		Method:   spec.Method,
		Path:     spec.Path,
		Attempt:  spec.Attempt,
		Status:   apiErr.Status,
		Reason:   string(apiErr.Kind),
		Duration: time.Since(start),
		Err:      apiErr,
	})

	// 401 is handled by re-login; cancellation was asked for by the caller.
	notify := !spec.Silent && o.notifier != nil &&
		apiErr.Kind != domain.KindUnauthorized && apiErr.Kind != domain.KindCanceled
	if notify {
		o.notifier.Notify(ctx, apiErr.Message, ports.LevelError)
	}
	return apiErr
}

func (o *Orchestrator) emit(ctx context.Context, hook func(context.Context, *domain.RequestEvent), e *domain.RequestEvent) {
	if hook == nil {
		return
	}
	e.Timestamp = time.Now()
	hook(ctx, e)
}

// classifyTransport separates timeouts, caller cancellation and connectivity failures.
func classifyTransport(parent, attemptCtx context.Context, err error) *domain.APIError {
	if parent.Err() != nil {
		return canceledError(parent.Err())
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewAPIError(0, domain.KindTimeout, domain.MessageTimedOut, nil, err)
	}
	return domain.NewAPIError(0, domain.KindNetwork, domain.MessageNetwork, nil, err)
}

func canceledError(err error) *domain.APIError {
	return domain.NewAPIError(0, domain.KindCanceled, domain.MessageCanceled, nil, err)
}

func joinURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
