package domain

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// Method is an HTTP verb accepted by the orchestrator.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Valid reports whether m is one of the supported verbs.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

// ParseMethod normalises a verb string, defaulting to GET when empty.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return MethodGet, nil
	}
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unsupported method %q", s)
	}
	return m, nil
}

// RequestSpec describes a single logical request.
// Attempt is owned by the orchestrator's retry loop; any caller value is discarded.
type RequestSpec struct {
	Path    string            `json:"path"`
	Method  Method            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`

	// Timeout overrides the configured per-attempt timeout when positive.
	Timeout time.Duration `json:"timeout,omitempty"`

	Attempt int `json:"attempt"`

	// Silent suppresses the user-visible notification for a terminal failure.
	Silent bool `json:"silent,omitempty"`
}

// Clone returns a copy whose header map and body can be mutated independently.
func (r RequestSpec) Clone() RequestSpec {
	out := r
	out.Headers = maps.Clone(r.Headers)
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}
