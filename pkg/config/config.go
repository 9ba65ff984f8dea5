// Package config loads the client and reference-server settings from a YAML or
// JSON file, with environment overrides.
package config

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/adapters/file"
	"github.com/aretw0/conduit/pkg/adapters/memory"
	"github.com/aretw0/conduit/pkg/adapters/redis"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/persistence/middleware"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/aretw0/conduit/pkg/request"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvBaseURL  = "CONDUIT_BASE_URL"
	EnvLogLevel = "CONDUIT_LOG_LEVEL"
	EnvRedis    = "CONDUIT_REDIS_ADDR"
	EnvCacheKey = "CONDUIT_CACHE_KEY"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// CacheConfig selects and configures the local key-value cache backend.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	Path     string        `mapstructure:"path"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	// Prefix namespaces the cache keys inside the backend.
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`

	// EncryptionKey, when set, is a base64 AES-256 key used to seal cached values.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

// ServerConfig configures `conduit serve`.
type ServerConfig struct {
	Addr      string  `mapstructure:"addr"`
	FaultRate float64 `mapstructure:"fault_rate"`
	Metrics   bool    `mapstructure:"metrics"`
}

// Config is the full settings tree.
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Request  request.Config `mapstructure:"request"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Request:  request.DefaultConfig(),
		Cache: CacheConfig{
			Backend: BackendMemory,
			Prefix:  domain.DefaultCachePrefix,
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Metrics: true,
		},
	}
}

// Load reads path (YAML unless the extension is .json) over the defaults and
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			format := "yaml"
			if strings.EqualFold(filepath.Ext(path), ".json") {
				format = "json"
			}
			if cfg, err = Parse(data, format); err != nil {
				return Config{}, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

// Parse decodes data ("yaml" or "json") over the defaults.
func Parse(data []byte, format string) (Config, error) {
	raw := map[string]any{}
	var err error
	if format == "json" {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides values from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.Request.BaseURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvCacheKey); ok && v != "" {
		c.Cache.EncryptionKey = v
	}
	if v, ok := lookup(EnvRedis); ok && v != "" {
		c.Cache.Backend = BackendRedis
		c.Cache.Address = v
	}
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Cache.Backend {
	case "", BackendMemory:
	case BackendFile:
		if c.Cache.Path == "" {
			errs = append(errs, errors.New("cache.path is required for the file backend"))
		}
	case BackendRedis:
		if c.Cache.Address == "" {
			errs = append(errs, errors.New("cache.address is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}
	if c.Cache.EncryptionKey != "" {
		if _, err := c.Cache.encryption(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Request.RetryCount < 0 || c.Request.RetryCount > request.MaxRetries {
		errs = append(errs, fmt.Errorf("request.retry_count must be within [0,%d], got %d", request.MaxRetries, c.Request.RetryCount))
	}
	if c.Request.RateLimitRetries < 0 || c.Request.RateLimitRetries > request.MaxRetries {
		errs = append(errs, fmt.Errorf("request.rate_limit_retries must be within [0,%d], got %d", request.MaxRetries, c.Request.RateLimitRetries))
	}
	if c.Server.FaultRate < 0 || c.Server.FaultRate > 1 {
		errs = append(errs, fmt.Errorf("server.fault_rate must be within [0,1], got %v", c.Server.FaultRate))
	}
	return errors.Join(errs...)
}

// OpenBackend builds the configured cache backend, sealed with the encryption
// middleware when a key is set. The returned close function releases its
// resources; it is never nil.
func (c CacheConfig) OpenBackend(ctx context.Context) (ports.KVBackend, func() error, error) {
	b, closeFn, err := c.open(ctx)
	if err != nil || c.EncryptionKey == "" {
		return b, closeFn, err
	}
	mw, err := c.encryption()
	if err != nil {
		_ = closeFn()
		return nil, func() error { return nil }, err
	}
	return middleware.Chain(b, mw), closeFn, nil
}

func (c CacheConfig) encryption() (middleware.Middleware, error) {
	enc := middleware.EncryptionConfig{}
	var err error
	if enc.ActiveKey, err = base64.StdEncoding.DecodeString(c.EncryptionKey); err != nil {
		return nil, fmt.Errorf("cache.encryption_key: %w", err)
	}
	for i, k := range c.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("cache.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryption(enc)
	if err != nil {
		return nil, fmt.Errorf("cache encryption: %w", err)
	}
	return mw, nil
}

func (c CacheConfig) open(ctx context.Context) (ports.KVBackend, func() error, error) {
	noop := func() error { return nil }
	switch c.Backend {
	case "", BackendMemory:
		return memory.NewStore(), noop, nil
	case BackendFile:
		return file.New(c.Path), noop, nil
	case BackendRedis:
		var opts []redis.Option
		if c.TTL > 0 {
			opts = append(opts, redis.WithTTL(c.TTL))
		}
		store := redis.New(c.Address, c.Password, c.DB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, noop, fmt.Errorf("redis %s: %w", c.Address, err)
		}
		return store, store.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", c.Backend)
}
