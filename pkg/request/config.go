package request

import (
	"maps"
	"math"
	"time"

	"github.com/aretw0/conduit/pkg/domain"
)

// Config is the process-wide request policy.
// It is meant to be set once at startup through Configure.
type Config struct {
	BaseURL        string            `yaml:"base_url" mapstructure:"base_url"`
	DefaultHeaders map[string]string `yaml:"default_headers" mapstructure:"default_headers"`

	// Timeout bounds each attempt. Non-positive values fall back to domain.DefaultTimeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// RetryCount is the transient (503/504/network) retry budget. Zero disables retries.
	RetryCount int           `yaml:"retry_count" mapstructure:"retry_count"`
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`

	// RateLimitRetries is the 429 retry budget.
	RateLimitRetries  int           `yaml:"rate_limit_retries" mapstructure:"rate_limit_retries"`
	DefaultRetryAfter time.Duration `yaml:"default_retry_after" mapstructure:"default_retry_after"`
}

// DefaultConfig returns the policy used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		DefaultHeaders:    map[string]string{domain.HeaderContentType: domain.ContentTypeJSON},
		Timeout:           domain.DefaultTimeout,
		RetryCount:        domain.DefaultRetryCount,
		RetryDelay:        domain.DefaultRetryDelay,
		RateLimitRetries:  domain.DefaultRateLimitRetries,
		DefaultRetryAfter: domain.DefaultRetryAfter,
	}
}

// normalize clamps invalid values and guarantees the JSON content type default.
func (c Config) normalize() Config {
	out := c
	out.DefaultHeaders = maps.Clone(c.DefaultHeaders)
	if out.DefaultHeaders == nil {
		out.DefaultHeaders = map[string]string{}
	}
	if _, ok := out.DefaultHeaders[domain.HeaderContentType]; !ok {
		out.DefaultHeaders[domain.HeaderContentType] = domain.ContentTypeJSON
	}
	if out.Timeout <= 0 {
		out.Timeout = domain.DefaultTimeout
	}
	if out.RetryCount < 0 {
		out.RetryCount = 0
	}
	if out.RetryDelay < 0 {
		out.RetryDelay = 0
	}
	if out.RateLimitRetries < 0 {
		out.RateLimitRetries = 0
	}
	if out.DefaultRetryAfter <= 0 {
		out.DefaultRetryAfter = domain.DefaultRetryAfter
	}
	return out
}

// MaxRetries bounds RetryCount and RateLimitRetries in loaded configuration.
const MaxRetries = 10

// Backoff returns the wait before transient retry k (0-based): RetryDelay × 2^k,
// saturating at the largest representable duration.
func (c Config) Backoff(k int) time.Duration {
	if c.RetryDelay <= 0 {
		return 0
	}
	if k < 0 {
		k = 0
	}
	if k >= 63 || c.RetryDelay > math.MaxInt64>>k {
		return math.MaxInt64
	}
	return c.RetryDelay << k
}
