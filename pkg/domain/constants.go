package domain

import "time"

// Header names used on the wire.
const (
	HeaderContentType = "Content-Type"
	HeaderProjectID   = "X-Project-Id"
	HeaderRetryAfter  = "Retry-After"
)

// ContentTypeJSON is the default request content type.
const ContentTypeJSON = "application/json"

// Defaults applied when a Config field is left zero.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultRetryCount        = 2
	DefaultRetryDelay        = time.Second
	DefaultRateLimitRetries  = 3
	DefaultRetryAfter        = 5 * time.Second
	DefaultUndoCapacity      = 50
	DefaultCachePrefix       = "conduit:"
	KeyCurrentProjectID      = "currentProjectId"
	KeyCurrentProject        = "currentProject"
	MessageTimedOut          = "Request timed out"
	MessageCanceled          = "Request cancelled"
	MessageNetwork           = "Network error: unable to reach server"
	MessageMalformedResponse = "Server returned non-JSON response"
)
