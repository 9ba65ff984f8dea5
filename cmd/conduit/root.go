package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/conduit"
	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/config"
	"github.com/aretw0/conduit/pkg/notify"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	baseURL    string
	logLevel   string
	cacheDir   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "conduit",
		Short:         "Conduit is a resilient client for the project register API",
		Long:          `Conduit talks to the project API with retries, project scoping and undo, and can serve a reference implementation of that API.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "conduit.yaml", "Path to the YAML or JSON config file")
	pf.StringVar(&opts.baseURL, "base-url", "", "API base URL (overrides config and "+config.EnvBaseURL+")")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&opts.cacheDir, "cache-dir", "", "Directory for persisted session state (default: user cache dir)")

	cmd.AddCommand(
		newRequestCmd(opts),
		newProjectsCmd(opts),
		newUseCmd(opts),
		newItemsCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *globalOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.baseURL != "" {
		cfg.Request.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	// The CLI is one process per command, so an in-memory cache would forget the
	// selected project between invocations.
	if cfg.Cache.Backend == config.BackendMemory || cfg.Cache.Backend == "" {
		cfg.Cache.Backend = config.BackendFile
		cfg.Cache.Path = o.cacheDir
		if cfg.Cache.Path == "" {
			dir, err := os.UserCacheDir()
			if err != nil {
				dir = os.TempDir()
			}
			cfg.Cache.Path = filepath.Join(dir, "conduit")
		}
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.NewWithWriter(w, level)
}

// newNotifier prints coloured toasts on a terminal and falls back to log records
// when output is redirected.
func newNotifier(w io.Writer, logger *slog.Logger) ports.Notifier {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return notify.NewConsole(w)
	}
	return notify.NewLog(logger)
}

// openClient builds a client from the flags and config. The returned function
// releases the cache backend.
func (o *globalOptions) openClient(ctx context.Context, cmd *cobra.Command) (*conduit.Client, func() error, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())
	client, closeFn, err := conduit.FromConfig(ctx, cfg,
		conduit.WithLogger(logger),
		conduit.WithNotifier(newNotifier(cmd.ErrOrStderr(), logger)),
	)
	if err != nil {
		return nil, nil, err
	}
	return client, closeFn, nil
}
