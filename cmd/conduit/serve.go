package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/aretw0/conduit/pkg/adapters/http"
	"github.com/aretw0/conduit/pkg/config"
	"github.com/aretw0/conduit/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		addr      string
		faultRate float64
		noMetrics bool
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the reference project API",
		Long: `Serves an in-memory implementation of the project API, seeded with demo data.
Use --fault-rate to make a share of requests fail with 503 and exercise client retries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("fault-rate") {
				cfg.Server.FaultRate = faultRate
			}
			if noMetrics {
				cfg.Server.Metrics = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			handler, err := buildServer(cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if !quiet {
				printBanner(cmd.OutOrStdout(), cfg.Server.Addr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return listen(ctx, cfg.Server.Addr, handler, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	f.Float64Var(&faultRate, "fault-rate", 0, "Share of API requests answered with 503, in [0,1]")
	f.BoolVar(&noMetrics, "no-metrics", false, "Do not expose /metrics")
	f.BoolVarP(&quiet, "quiet", "q", false, "Do not print the banner")
	return cmd
}

// buildServer assembles the reference API with fault injection and, unless
// disabled, Prometheus metrics on /metrics.
func buildServer(cfg config.Config, logger *slog.Logger) (http.Handler, error) {
	opts := []httpadapter.Option{
		httpadapter.WithLogger(logger),
		httpadapter.WithFaults(&httpadapter.Faults{Rate: cfg.Server.FaultRate}),
	}

	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err := observability.NewServerMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts,
			httpadapter.WithMiddleware(m.Middleware),
			httpadapter.WithMount("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)
	}

	logger.Info("reference API configured", "addr", cfg.Server.Addr, "fault_rate", cfg.Server.FaultRate, "metrics", cfg.Server.Metrics)
	return httpadapter.NewServer(opts...).Handler(), nil
}

func listen(ctx context.Context, addr string, handler http.Handler, cmd *cobra.Command) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Graceful shutdown did not complete in %v: %v\n", shutdownTimeout, err)
			return srv.Close()
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Server stopped gracefully")
		return nil
	}
}
