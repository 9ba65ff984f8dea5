package request

import (
	"encoding/json"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fallback := 5 * time.Second

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"missing", "", fallback},
		{"seconds", "7", 7 * time.Second},
		{"zero", "0", 0},
		{"negative", "-3", fallback},
		{"garbage", "soon", fallback},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"date in the past", now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryAfter(tt.value, fallback, now))
		})
	}
}

func TestDecodeBody(t *testing.T) {
	body, err := decodeBody("application/json; charset=utf-8", []byte(`{"n": 1.50}`))
	require.NoError(t, err)
	assert.Equal(t, domain.BodyJSON, body.Kind)
	assert.Equal(t, map[string]any{"n": json.Number("1.50")}, body.JSON)

	body, err = decodeBody("application/problem+json", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, []any{}, body.JSON)

	body, err = decodeBody("application/json", []byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, domain.BodyEmpty, body.Kind)

	body, err = decodeBody("text/html", []byte("<p>hi</p>"))
	require.NoError(t, err)
	assert.Equal(t, domain.TextBody("<p>hi</p>"), body)

	_, err = decodeBody("application/json", []byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)

	_, err = decodeBody("application/json", []byte(`{"a":`))
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		resp domain.Response
		want string
	}{
		{
			name: "error field",
			resp: domain.Response{Data: domain.JSONBody(map[string]any{"error": "boom", "message": "ignored"})},
			want: "boom",
		},
		{
			name: "message field",
			resp: domain.Response{Data: domain.JSONBody(map[string]any{"message": "invalid title"})},
			want: "invalid title",
		},
		{
			name: "detail field",
			resp: domain.Response{Data: domain.JSONBody(map[string]any{"detail": "not found"})},
			want: "not found",
		},
		{
			name: "nested error object",
			resp: domain.Response{Data: domain.JSONBody(map[string]any{"error": map[string]any{"message": "quota"}})},
			want: "quota",
		},
		{
			name: "empty fields fall back to status text",
			resp: domain.Response{Data: domain.JSONBody(map[string]any{"error": ""}), StatusText: "Conflict"},
			want: "Conflict",
		},
		{
			name: "text body",
			resp: domain.Response{Data: domain.TextBody("oops"), StatusText: "Bad Gateway"},
			want: "Bad Gateway",
		},
		{
			name: "nothing at all",
			resp: domain.Response{Status: 599},
			want: "HTTP 599",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage(tt.resp))
		})
	}
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://api/x/y", joinURL("http://api/", "/x/y"))
	assert.Equal(t, "http://api/x", joinURL("http://api", "x"))
	assert.Equal(t, "/x", joinURL("", "/x"))
	assert.Equal(t, "https://other/z", joinURL("http://api", "https://other/z"))
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{
		DefaultHeaders: map[string]string{"X-Client": "cli"},
		RetryCount:     -1,
		RetryDelay:     -time.Second,
	}.normalize()

	assert.Equal(t, domain.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, 0, cfg.RetryCount)
	assert.Equal(t, time.Duration(0), cfg.RetryDelay)
	assert.Equal(t, domain.DefaultRetryAfter, cfg.DefaultRetryAfter)
	assert.Equal(t, "application/json", cfg.DefaultHeaders["Content-Type"])
	assert.Equal(t, "cli", cfg.DefaultHeaders["X-Client"])

	custom := Config{DefaultHeaders: map[string]string{"Content-Type": "text/plain"}}.normalize()
	assert.Equal(t, "text/plain", custom.DefaultHeaders["Content-Type"])
}

func TestBackoff(t *testing.T) {
	cfg := Config{RetryDelay: 250 * time.Millisecond}
	assert.Equal(t, 250*time.Millisecond, cfg.Backoff(0))
	assert.Equal(t, 500*time.Millisecond, cfg.Backoff(1))
	assert.Equal(t, time.Second, cfg.Backoff(2))

	slow := Config{RetryDelay: time.Second}
	assert.Equal(t, time.Second<<33, slow.Backoff(33))
	assert.Equal(t, time.Duration(math.MaxInt64), slow.Backoff(34))
	assert.Equal(t, time.Duration(math.MaxInt64), slow.Backoff(62))
	assert.Equal(t, time.Duration(math.MaxInt64), slow.Backoff(200))
	for k := 0; k < 100; k++ {
		assert.Positive(t, slow.Backoff(k), "k=%d", k)
	}
	assert.Zero(t, Config{}.Backoff(5))
}
