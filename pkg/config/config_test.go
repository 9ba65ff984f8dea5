package config

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/conduit/pkg/adapters/file"
	"github.com/aretw0/conduit/pkg/adapters/memory"
	"github.com/aretw0/conduit/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
log_level: debug
request:
  base_url: http://localhost:9000
  timeout: 2s
  retry_count: 4
  retry_delay: 250ms
  default_headers:
    X-Client: cli
cache:
  backend: file
  path: /tmp/conduit-cache
  ttl: 1h
server:
  addr: ":9090"
  fault_rate: 0.25
`

func TestParse_YAML(t *testing.T) {
	cfg, err := Parse([]byte(sample), "yaml")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://localhost:9000", cfg.Request.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Request.Timeout)
	assert.Equal(t, 4, cfg.Request.RetryCount)
	assert.Equal(t, 250*time.Millisecond, cfg.Request.RetryDelay)
	assert.Equal(t, "cli", cfg.Request.DefaultHeaders["X-Client"])
	assert.Equal(t, "application/json", cfg.Request.DefaultHeaders["Content-Type"], "defaults survive a partial map")
	assert.Equal(t, 3, cfg.Request.RateLimitRetries, "unset fields keep their defaults")

	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.InDelta(t, 0.25, cfg.Server.FaultRate, 1e-9)
	assert.True(t, cfg.Server.Metrics)
}

func TestParse_JSON(t *testing.T) {
	cfg, err := Parse([]byte(`{"request": {"retry_delay": "2s"}, "cache": {"backend": "redis", "address": "localhost:6379"}}`), "json")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Request.RetryDelay)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("request: [unclosed"), "yaml")
	assert.ErrorContains(t, err, "parse")

	_, err = Parse([]byte("requset:\n  timeout: 1s\n"), "yaml")
	assert.ErrorContains(t, err, "requset", "unknown keys are rejected")

	_, err = Parse([]byte("request:\n  timeout: soon\n"), "yaml")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default().Server, cfg.Server)
	})

	t.Run("file values", func(t *testing.T) {
		path := filepath.Join(dir, "conduit.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Addr)
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv(EnvBaseURL, "https://api.example.com")
		t.Setenv(EnvLogLevel, "warn")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", cfg.Request.BaseURL)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"log_level": "loud", "server": {"fault_rate": 2}}`), 0o644))

		_, err := Load(path)
		assert.ErrorContains(t, err, "loud")
		assert.ErrorContains(t, err, "fault_rate")
	})
}

func TestApplyEnv_Redis(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(func(key string) (string, bool) {
		if key == EnvRedis {
			return "cache:6379", true
		}
		return "", false
	})
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.Address)
}

func TestValidate_Backends(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = BackendFile
	assert.ErrorContains(t, cfg.Validate(), "cache.path")

	cfg.Cache.Backend = BackendRedis
	assert.ErrorContains(t, cfg.Validate(), "cache.address")

	cfg.Cache.Backend = "etcd"
	assert.ErrorContains(t, cfg.Validate(), "etcd")

	assert.NoError(t, Default().Validate())
}

func TestValidate_RetryBudgets(t *testing.T) {
	cfg := Default()
	cfg.Request.RetryCount = 34
	assert.ErrorContains(t, cfg.Validate(), "request.retry_count")

	cfg = Default()
	cfg.Request.RetryCount = -1
	assert.ErrorContains(t, cfg.Validate(), "request.retry_count")

	cfg = Default()
	cfg.Request.RateLimitRetries = 100
	assert.ErrorContains(t, cfg.Validate(), "request.rate_limit_retries")

	cfg = Default()
	cfg.Request.RetryCount = 10
	cfg.Request.RateLimitRetries = 0
	assert.NoError(t, cfg.Validate())
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	b, closeFn, err := CacheConfig{}.OpenBackend(ctx)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, b)
	assert.NoError(t, closeFn())

	b, _, err = CacheConfig{Backend: BackendFile, Path: t.TempDir()}.OpenBackend(ctx)
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, b)

	mr := miniredis.RunT(t)
	b, closeFn, err = CacheConfig{Backend: BackendRedis, Address: mr.Addr(), TTL: time.Minute}.OpenBackend(ctx)
	require.NoError(t, err)
	assert.IsType(t, &redis.Store{}, b)
	require.NoError(t, b.Set(ctx, "k", []byte("v")))
	assert.NoError(t, closeFn())

	addr := mr.Addr()
	mr.Close()
	_, _, err = CacheConfig{Backend: BackendRedis, Address: addr}.OpenBackend(ctx)
	assert.Error(t, err)
}

func TestOpenBackend_Encrypted(t *testing.T) {
	ctx := context.Background()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	dir := t.TempDir()

	sealed, _, err := CacheConfig{Backend: BackendFile, Path: dir, EncryptionKey: key}.OpenBackend(ctx)
	require.NoError(t, err)
	require.NoError(t, sealed.Set(ctx, "currentProject", []byte(`{"name":"Apollo"}`)))

	got, err := sealed.Get(ctx, "currentProject")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Apollo"}`, string(got))

	raw, err := file.New(dir).Get(ctx, "currentProject")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Apollo")

	_, _, err = CacheConfig{EncryptionKey: "not base64!"}.OpenBackend(ctx)
	assert.ErrorContains(t, err, "encryption_key")

	cfg := Default()
	cfg.Cache.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))
	assert.ErrorContains(t, cfg.Validate(), "32 bytes")
}
