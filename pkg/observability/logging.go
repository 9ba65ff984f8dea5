package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/conduit/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one debug record per attempt and
// one record per outcome.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequest: func(ctx context.Context, e *domain.RequestEvent) {
			logger.DebugContext(ctx, "request_attempt", "method", e.Method, "path", e.Path, "attempt", e.Attempt)
		},
		OnRetry: func(ctx context.Context, e *domain.RequestEvent) {
			logger.InfoContext(ctx, "request_retry",
				"method", e.Method,
				"path", e.Path,
				"attempt", e.Attempt,
				"reason", e.Reason,
				"delay", e.Delay,
			)
		},
		OnResponse: func(ctx context.Context, e *domain.RequestEvent) {
			logger.InfoContext(ctx, "request_done",
				"method", e.Method,
				"path", e.Path,
				"status", e.Status,
				"duration", e.Duration,
			)
		},
		OnError: func(ctx context.Context, e *domain.RequestEvent) {
			logger.WarnContext(ctx, "request_failed",
				"method", e.Method,
				"path", e.Path,
				"status", e.Status,
				"kind", e.Reason,
				"err", e.Err,
			)
		},
	}
}
