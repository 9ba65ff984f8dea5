package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/conduit/pkg/domain"
)

// isJSON reports whether a Content-Type declares a JSON payload.
func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

// decodeBody resolves the raw payload into the Body union exactly once.
// Numbers decode as json.Number so large identifiers keep their precision.
func decodeBody(contentType string, raw []byte) (domain.Body, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.Body{}, nil
	}
	if !isJSON(contentType) {
		return domain.TextBody(string(raw)), nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return domain.Body{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.Body{}, fmt.Errorf("unexpected data after JSON value")
	}
	return domain.JSONBody(v), nil
}

// errorMessage prefers a body field named error, message or detail, then the status text.
func errorMessage(resp domain.Response) string {
	if obj, ok := resp.Data.Object(); ok {
		for _, field := range []string{"error", "message", "detail"} {
			switch v := obj[field].(type) {
			case string:
				if v != "" {
					return v
				}
			case map[string]any:
				// {"error": {"message": "..."}}
				if msg, ok := v["message"].(string); ok && msg != "" {
					return msg
				}
			}
		}
	}
	if resp.StatusText != "" {
		return resp.StatusText
	}
	return fmt.Sprintf("HTTP %d", resp.Status)
}

// statusText returns the reason phrase, e.g. "Service Unavailable".
func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// retryAfter parses a Retry-After value given in seconds or as an HTTP date.
func retryAfter(value string, fallback time.Duration, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return fallback
}
