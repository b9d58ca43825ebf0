package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joelkehle/transformation-dashboard/internal/dashboard"
	"github.com/joelkehle/transformation-dashboard/internal/report"
	"github.com/joelkehle/transformation-dashboard/internal/telemetry"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Long: `Run the dashboard HTTP server and the analysis job poll loop.

The server stops gracefully on SIGINT or SIGTERM, persisting job state and the
narrative cache snapshot when configured.

Examples:
  dashboard serve
  dashboard serve --config dashboard.yaml --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *configPath, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(ctx context.Context, configPath, addr string) error {
	a, err := loadApp(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()
	if addr != "" {
		a.cfg.Server.Addr = addr
	}

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    a.cfg.Telemetry.OTLPEndpoint,
		ServiceName: a.cfg.Telemetry.ServiceName,
		Insecure:    a.cfg.Telemetry.Insecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			a.logger.Warn("flush traces failed", zap.Error(err))
		}
	}()

	cache, closeCache, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	narratives, err := a.narratives(cache, true)
	if err != nil {
		return err
	}

	tracker := dashboard.NewTracker(a.client, dashboard.NewJobStore(),
		dashboard.WithPollInterval(a.cfg.Poll.Interval),
		dashboard.WithStatePath(a.cfg.Server.StatePath),
		dashboard.WithTrackerLogger(a.logger),
		dashboard.WithTrackerMetrics(a.metrics),
	)
	if err := tracker.Load(); err != nil {
		a.logger.Warn("restore job state failed", zap.String("path", a.cfg.Server.StatePath), zap.Error(err))
	}

	handler := dashboard.NewServer(dashboard.Config{
		Backend:    a.client,
		Narratives: narratives,
		Renderer:   a.renderer(),
		Tracker:    tracker,
		WebDir:     a.cfg.Server.WebDir,
		Theme:      a.cfg.Report.Theme,
		Provider:   report.DefaultProvider,
		Logger:     a.logger,
		Metrics:    a.metrics,
	})
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tracker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.logger.Info("dashboard listening",
			zap.String("addr", srv.Addr),
			zap.String("backend", a.client.BaseURL()),
			zap.String("llm_provider", a.cfg.LLM.Provider),
			zap.String("cache", a.cfg.Cache.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	tracker.Wait()
	a.logger.Info("dashboard stopped")
	return err
}
