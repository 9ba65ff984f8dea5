package conduit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/adapters/memory"
	"github.com/aretw0/conduit/pkg/cache"
	"github.com/aretw0/conduit/pkg/config"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/entities"
	"github.com/aretw0/conduit/pkg/observability"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/aretw0/conduit/pkg/request"
	"github.com/aretw0/conduit/pkg/session"
	"github.com/aretw0/conduit/pkg/store"
	"github.com/aretw0/conduit/pkg/undo"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is the library version reported by the CLI.
const Version = "0.3.0"

// ErrNoBaseURL is returned by New when neither the argument nor the request config
// names the API.
var ErrNoBaseURL = errors.New("base URL is required")

// Client wires the orchestrator, session state and domain operations together.
type Client struct {
	orchestrator *request.Orchestrator
	session      *session.Manager
	entities     *entities.Service
	metrics      *observability.Metrics

	cfg         request.Config
	backend     ports.KVBackend
	cachePrefix string
	undoCap     int
	notifier    ports.Notifier
	auth        ports.AuthHandler
	hooks       domain.LifecycleHooks
	registerer  prometheus.Registerer
	httpClient  *http.Client
	requestOpts []request.Option
	logger      *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on the orchestrator.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithRequestConfig replaces the request policy. BaseURL, when empty, is taken
// from New's argument.
func WithRequestConfig(cfg request.Config) Option {
	return func(c *Client) {
		c.cfg = cfg
	}
}

// WithNotifier sets the sink for user-facing error messages.
func WithNotifier(n ports.Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithAuthHandler sets the 401/403 callbacks.
func WithAuthHandler(h ports.AuthHandler) Option {
	return func(c *Client) {
		c.auth = h
	}
}

// WithBackend persists session state in b instead of process memory.
func WithBackend(b ports.KVBackend) Option {
	return func(c *Client) {
		c.backend = b
	}
}

// WithCachePrefix namespaces the persisted keys.
func WithCachePrefix(prefix string) Option {
	return func(c *Client) {
		c.cachePrefix = prefix
	}
}

// WithUndoCapacity bounds the undo history.
func WithUndoCapacity(n int) Option {
	return func(c *Client) {
		c.undoCap = n
	}
}

// WithMetrics registers request collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRequestOptions passes extra options straight to the orchestrator.
func WithRequestOptions(opts ...request.Option) Option {
	return func(c *Client) {
		c.requestOpts = append(c.requestOpts, opts...)
	}
}

// New builds a Client talking to baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		cfg:         request.DefaultConfig(),
		cachePrefix: domain.DefaultCachePrefix,
		undoCap:     domain.DefaultUndoCapacity,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.BaseURL == "" {
		c.cfg.BaseURL = baseURL
	}
	if c.cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}

	backend := c.backend
	if backend == nil {
		backend = memory.NewStore()
	}
	c.session = session.NewManager(
		session.WithCache(cache.New(backend, cache.WithPrefix(c.cachePrefix), cache.WithLogger(c.logger))),
		session.WithUndoLog(undo.New(undo.WithCapacity(c.undoCap), undo.WithLogger(c.logger))),
		session.WithLogger(c.logger),
	)

	hooks := observability.LogHooks(c.logger).Merge(c.hooks)
	if c.registerer != nil {
		m, err := observability.NewMetrics(c.registerer)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		c.metrics = m
		hooks = hooks.Merge(m.Hooks())
	}

	ropts := []request.Option{
		request.WithConfig(c.cfg),
		request.WithLogger(c.logger),
		request.WithContextSource(c.session.ProjectID),
		request.WithLifecycleHooks(hooks),
	}
	if c.notifier != nil {
		ropts = append(ropts, request.WithNotifier(c.notifier))
	}
	if c.auth != nil {
		ropts = append(ropts, request.WithAuthHandler(c.auth))
	}
	if c.httpClient != nil {
		ropts = append(ropts, request.WithHTTPClient(c.httpClient))
	}
	c.orchestrator = request.New(append(ropts, c.requestOpts...)...)
	c.entities = entities.New(c.orchestrator, c.session, entities.WithLogger(c.logger))

	return c, nil
}

// FromConfig builds a Client from loaded settings, opening the configured cache
// backend. The returned function closes that backend.
func FromConfig(ctx context.Context, cfg config.Config, opts ...Option) (*Client, func() error, error) {
	backend, closeFn, err := cfg.Cache.OpenBackend(ctx)
	if err != nil {
		return nil, closeFn, err
	}
	base := []Option{
		WithRequestConfig(cfg.Request),
		WithBackend(backend),
	}
	if cfg.Cache.Prefix != "" {
		base = append(base, WithCachePrefix(cfg.Cache.Prefix))
	}
	c, err := New(cfg.Request.BaseURL, append(base, opts...)...)
	if err != nil {
		_ = closeFn()
		return nil, func() error { return nil }, err
	}
	return c, closeFn, nil
}

// Request returns the orchestrator, for interceptors and ad-hoc calls.
func (c *Client) Request() *request.Orchestrator { return c.orchestrator }

// Session returns the session manager.
func (c *Client) Session() *session.Manager { return c.session }

// Store returns the reactive store.
func (c *Client) Store() *store.Store { return c.session.Store() }

// Entities returns the domain operations.
func (c *Client) Entities() *entities.Service { return c.entities }

// History returns the undo/redo log.
func (c *Client) History() *undo.Log { return c.session.Undo() }

// Metrics returns the request collectors, or nil when WithMetrics was not used.
func (c *Client) Metrics() *observability.Metrics { return c.metrics }

// Start restores the persisted project and, if there is one, loads its data.
// It reports the restored project.
func (c *Client) Start(ctx context.Context) (*domain.Project, error) {
	p, ok := c.session.Restore(ctx)
	if !ok {
		return nil, nil
	}
	if err := c.entities.LoadAll(ctx); err != nil {
		return p, err
	}
	return p, nil
}

// SelectProject switches to p and loads its data.
func (c *Client) SelectProject(ctx context.Context, p domain.Project) error {
	if err := c.session.SelectProject(ctx, p); err != nil {
		return err
	}
	return c.entities.LoadAll(ctx)
}

// SignOut drops all session state.
func (c *Client) SignOut(ctx context.Context) {
	c.session.SignOut(ctx)
}

// Undo reverts the most recent mutation. It reports false when there was nothing
// to undo or the revert failed.
func (c *Client) Undo(ctx context.Context) (bool, error) {
	return c.session.Undo().Undo(ctx)
}

// Redo re-applies the most recently undone mutation.
func (c *Client) Redo(ctx context.Context) (bool, error) {
	return c.session.Undo().Redo(ctx)
}
