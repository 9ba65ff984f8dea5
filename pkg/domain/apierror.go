package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a terminal request failure.
type ErrorKind string

const (
	KindNetwork        ErrorKind = "network"
	KindTimeout        ErrorKind = "timeout"
	KindCanceled       ErrorKind = "canceled"
	KindMalformed      ErrorKind = "malformed"
	KindUnauthorized   ErrorKind = "unauthorized"
	KindForbidden      ErrorKind = "forbidden"
	KindRateLimited    ErrorKind = "rate_limited"
	KindServer         ErrorKind = "server"
	KindClient         ErrorKind = "client"
	KindInterceptor    ErrorKind = "interceptor"
	KindInvalidRequest ErrorKind = "invalid_request"
)

// APIError is the failure returned for every terminal outcome of a request.
// Status is 0 when no HTTP status was obtained (network, timeout, malformed body).
// Values are built once and not mutated afterwards.
type APIError struct {
	Status  int
	Message string
	Details any
	Kind    ErrorKind
	cause   error
}

// NewAPIError builds an APIError. The optional cause is exposed via Unwrap.
func NewAPIError(status int, kind ErrorKind, message string, details any, cause ...error) *APIError {
	e := &APIError{
		Status:  status,
		Message: message,
		Details: details,
		Kind:    kind,
	}
	if len(cause) > 0 {
		e.cause = cause[0]
	}
	return e
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return fmt.Sprintf("api %s (%d): %s: %v", e.Kind, e.Status, e.Message, e.cause)
	}
	return fmt.Sprintf("api %s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

// AsAPIError extracts an *APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsTimeout reports whether err is a per-attempt timeout.
func IsTimeout(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindTimeout
}

// KindForStatus maps a terminal HTTP status to its ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == 401:
		return KindUnauthorized
	case status == 403:
		return KindForbidden
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindClient
	}
}
