/*
Package observability turns orchestrator lifecycle events into Prometheus metrics
and structured log lines.

Both are plain domain.LifecycleHooks values, so they compose with Merge and are
installed with request.WithLifecycleHooks (or conduit.WithLifecycleHooks).
ServerMetrics instruments the reference API server the same way.
*/
package observability
