package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	baseURL  string
	cacheDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	handler, err := buildServer(cfg, logging.NewNop())
	require.NoError(t, err)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return &harness{baseURL: ts.URL, cacheDir: t.TempDir()}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(h.cacheDir, "absent.yaml"),
		"--base-url", h.baseURL,
		"--cache-dir", h.cacheDir,
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := newHarness(t).run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "conduit version")
}

func TestProjectsAndUse(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "proj-1")
	assert.Contains(t, out, "Borealis")

	out, err = h.run(t, "use", "proj-2")
	require.NoError(t, err)
	assert.Contains(t, out, "Using project proj-2 (Borealis)")

	out, err = h.run(t, "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "*  proj-2")

	_, err = h.run(t, "use", "proj-9")
	assert.ErrorContains(t, err, "not found")
}

func TestItems(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "items", "list", "risks")
	require.Error(t, err, "no project selected yet")

	_, err = h.run(t, "use", "proj-1")
	require.NoError(t, err)

	out, err := h.run(t, "items", "list", "risks")
	require.NoError(t, err)
	assert.Contains(t, out, "Supplier delay")

	out, err = h.run(t, "items", "add", "risks", "--title", "Budget overrun", "--owner", "finance")
	require.NoError(t, err)
	id := string(bytes.TrimSpace([]byte(out)))
	require.NotEmpty(t, id)

	out, err = h.run(t, "items", "list", "risks")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget overrun")

	_, err = h.run(t, "items", "rm", "risks", id)
	require.NoError(t, err)

	out, err = h.run(t, "items", "list", "risks")
	require.NoError(t, err)
	assert.NotContains(t, out, "Budget overrun")

	_, err = h.run(t, "items", "list", "widgets")
	assert.ErrorContains(t, err, "unknown item kind")
}

func TestRequest(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "request", "/api/items/decisions", "--project", "proj-1")
	require.NoError(t, err)
	assert.Contains(t, out, `"Freeze schema on 15 Jan"`)

	out, err = h.run(t, "request", "POST", "/api/items/actions", "-p", "proj-1", "-d", `{"title":"Call supplier"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "actions"`)

	_, err = h.run(t, "request", "GET", "/api/contacts", "--silent")
	assert.ErrorContains(t, err, "no active project")

	_, err = h.run(t, "request", "TRACE", "/api/projects")
	assert.ErrorContains(t, err, "unsupported method")

	_, err = h.run(t, "request", "POST", "/api/items/actions", "-d", "{nope")
	assert.ErrorContains(t, err, "not valid JSON")
}

func TestBuildServer_Metrics(t *testing.T) {
	cfg := config.Default()
	handler, err := buildServer(cfg, logging.NewNop())
	require.NoError(t, err)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/projects")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `conduit_server_requests_total{code="200",method="GET",route="/api/projects"}`)

	cfg.Server.Metrics = false
	handler, err = buildServer(cfg, logging.NewNop())
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	printBanner(&buf, ":8080")
	assert.Contains(t, buf.String(), "listening on :8080")
}
