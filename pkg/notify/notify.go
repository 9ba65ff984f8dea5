package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/muesli/termenv"
)

// Log writes each notification as a log record at the matching slog level.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log sink. A nil logger discards everything.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, message string, level ports.Level) {
	l.logger.Log(ctx, slogLevel(level), message, "channel", "notification", "level_name", string(level))
}

func slogLevel(level ports.Level) slog.Level {
	switch level {
	case ports.LevelError:
		return slog.LevelError
	case ports.LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Console prints one coloured line per notification, like a terminal toast.
type Console struct {
	mu  sync.Mutex
	out *termenv.Output
}

// ConsoleOption configures a Console.
type ConsoleOption func(*consoleConfig)

type consoleConfig struct {
	profile *termenv.Profile
}

// WithProfile forces a colour profile instead of detecting it from the writer.
// termenv.Ascii disables colour.
func WithProfile(p termenv.Profile) ConsoleOption {
	return func(c *consoleConfig) {
		c.profile = &p
	}
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	cfg := &consoleConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	var outOpts []termenv.OutputOption
	if cfg.profile != nil {
		outOpts = append(outOpts, termenv.WithProfile(*cfg.profile))
	}
	return &Console{out: termenv.NewOutput(w, outOpts...)}
}

var levelStyles = map[ports.Level]struct {
	icon  string
	color string
}{
	ports.LevelInfo:    {"i", "#60a5fa"},
	ports.LevelSuccess: {"✓", "#34d399"},
	ports.LevelWarning: {"!", "#fbbf24"},
	ports.LevelError:   {"✗", "#f87171"},
}

func (c *Console) Notify(ctx context.Context, message string, level ports.Level) {
	style, ok := levelStyles[level]
	if !ok {
		style = levelStyles[ports.LevelInfo]
	}
	line := c.out.String(fmt.Sprintf("%s %s", style.icon, message)).Foreground(c.out.Color(style.color))
	if level == ports.LevelError {
		line = line.Bold()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line.String())
}

// Multi fans a notification out to every non-nil sink, in order.
func Multi(sinks ...ports.Notifier) ports.Notifier {
	var out multi
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []ports.Notifier

func (m multi) Notify(ctx context.Context, message string, level ports.Level) {
	for _, s := range m {
		s.Notify(ctx, message, level)
	}
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, string, ports.Level) {}
