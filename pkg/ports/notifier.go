package ports

import "context"

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier surfaces a message to the user. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, message string, level Level)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string, level Level)

func (f NotifierFunc) Notify(ctx context.Context, message string, level Level) {
	f(ctx, message, level)
}
