// Package cache is the local key-value cache: JSON values over a KVBackend,
// failing silently so that a broken or full store never breaks the caller.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
)

// Cache wraps a backend with JSON (de)serialisation and key namespacing.
type Cache struct {
	backend ports.KVBackend
	prefix  string
	logger  *slog.Logger
}

// Option configures the Cache.
type Option func(*Cache)

// WithPrefix namespaces every key. The default is domain.DefaultCachePrefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithLogger configures the logger used to report swallowed failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a cache over backend.
func New(backend ports.KVBackend, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		prefix:  domain.DefaultCachePrefix,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) key(key string) string {
	return c.prefix + key
}

// Get decodes the value for key into out and reports whether it succeeded.
// A missing key, a backend failure and a decode failure all return false.
func (c *Cache) Get(ctx context.Context, key string, out any) bool {
	data, err := c.backend.Get(ctx, c.key(key))
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			c.logger.DebugContext(ctx, "cache read failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.DebugContext(ctx, "cache value is not valid JSON", "key", key, "err", err)
		return false
	}
	return true
}

// Set stores v as JSON. Failures are logged and dropped.
func (c *Cache) Set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.DebugContext(ctx, "cache value not serialisable", "key", key, "err", err)
		return
	}
	if err := c.backend.Set(ctx, c.key(key), data); err != nil {
		c.logger.DebugContext(ctx, "cache write failed", "key", key, "err", err)
	}
}

// Remove deletes key.
func (c *Cache) Remove(ctx context.Context, key string) {
	if err := c.backend.Delete(ctx, c.key(key)); err != nil {
		c.logger.DebugContext(ctx, "cache delete failed", "key", key, "err", err)
	}
}

// Clear removes every key under the cache's prefix. Keys of other namespaces on
// a shared backend are left alone; with an empty prefix the whole backend is cleared.
func (c *Cache) Clear(ctx context.Context) {
	if c.prefix == "" {
		if err := c.backend.Clear(ctx); err != nil {
			c.logger.DebugContext(ctx, "cache clear failed", "err", err)
		}
		return
	}
	keys, err := c.backend.Keys(ctx)
	if err != nil {
		c.logger.DebugContext(ctx, "cache clear failed", "err", err)
		return
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, c.prefix) {
			continue
		}
		if err := c.backend.Delete(ctx, key); err != nil {
			c.logger.DebugContext(ctx, "cache clear failed", "key", key, "err", err)
		}
	}
}
