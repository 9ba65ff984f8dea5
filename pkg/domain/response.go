package domain

import "net/http"

// BodyKind tags which variant of Body is populated.
type BodyKind int

const (
	BodyEmpty BodyKind = iota
	BodyJSON
	BodyText
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "json"
	case BodyText:
		return "text"
	default:
		return "empty"
	}
}

// Body is a decoded response payload: either a JSON value or raw text.
// It is resolved once when the response is read and never re-interpreted.
type Body struct {
	Kind BodyKind
	JSON any
	Text string
}

// JSONBody wraps a decoded JSON value.
func JSONBody(v any) Body { return Body{Kind: BodyJSON, JSON: v} }

// TextBody wraps raw text. An empty string yields an empty body.
func TextBody(s string) Body {
	if s == "" {
		return Body{}
	}
	return Body{Kind: BodyText, Text: s}
}

// Value returns the JSON value, the text, or nil.
func (b Body) Value() any {
	switch b.Kind {
	case BodyJSON:
		return b.JSON
	case BodyText:
		return b.Text
	default:
		return nil
	}
}

// Object returns the body as a JSON object when it is one.
func (b Body) Object() (map[string]any, bool) {
	if b.Kind != BodyJSON {
		return nil, false
	}
	m, ok := b.JSON.(map[string]any)
	return m, ok
}

// Response is the envelope returned by the orchestrator.
type Response struct {
	Data       Body
	OK         bool
	Status     int
	StatusText string
	Header     http.Header
}

// IsSuccess reports whether status is in [200,300).
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
