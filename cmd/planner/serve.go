package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/planner/completion"
	"github.com/tailored-agentic-units/planner/kvstore"
	"github.com/tailored-agentic-units/planner/observability"
	"github.com/tailored-agentic-units/planner/remote"
	"github.com/tailored-agentic-units/planner/server"
)

var (
	serveAddr    string
	serveMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the persistence and chat service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if serveMetrics {
			cfg.Server.Metrics = true
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := kvstore.New(ctx, &cfg.Store)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer backend.Close()

		completer, err := completion.New(&cfg.Completion)
		if err != nil {
			return fmt.Errorf("failed to create completer: %w", err)
		}

		var observer observability.Observer = observability.NewSlogObserver(slog.Default())
		if cfg.Server.Metrics {
			prom, err := observability.NewPrometheusObserver(prometheus.DefaultRegisterer, cfg.Server.MetricsName)
			if err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}
			observer = observability.NewMultiObserver(observer, prom)
		}

		srv := server.New(&cfg.Server, remote.NewBackendStore(backend), completer, server.WithObserver(observer))

		errc := make(chan error, 1)
		go func() {
			slog.Info("planner service listening",
				"addr", cfg.Server.Addr,
				"store", cfg.Store.Driver,
				"completion", cfg.Completion.Provider,
				"metrics", cfg.Server.Metrics,
			)
			errc <- srv.Listen()
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		slog.Info("shutting down planner service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", false, "Serve Prometheus metrics at /metrics")
}
