package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRequest  EventType = "request"
	EventRetry    EventType = "retry"
	EventResponse EventType = "response"
	EventError    EventType = "error"
)

// RequestEvent describes one step of a request's life.
type RequestEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	Method    Method        `json:"method"`
	Path      string        `json:"path"`
	Attempt   int           `json:"attempt"`
	Status    int           `json:"status,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Delay     time.Duration `json:"delay,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for orchestrator observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnRequest  func(context.Context, *RequestEvent)
	OnRetry    func(context.Context, *RequestEvent)
	OnResponse func(context.Context, *RequestEvent)
	OnError    func(context.Context, *RequestEvent)
}

// Merge returns hooks that invoke h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRequest:  chain(h.OnRequest, other.OnRequest),
		OnRetry:    chain(h.OnRetry, other.OnRetry),
		OnResponse: chain(h.OnResponse, other.OnResponse),
		OnError:    chain(h.OnError, other.OnError),
	}
}

func chain(a, b func(context.Context, *RequestEvent)) func(context.Context, *RequestEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *RequestEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
