package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/joelkehle/transformation-dashboard/internal/backend"
	"github.com/joelkehle/transformation-dashboard/internal/config"
	"github.com/joelkehle/transformation-dashboard/internal/contentcache"
	"github.com/joelkehle/transformation-dashboard/internal/logging"
	"github.com/joelkehle/transformation-dashboard/internal/metrics"
	"github.com/joelkehle/transformation-dashboard/internal/narrative"
	"github.com/joelkehle/transformation-dashboard/internal/report"
)

// app is the configured service graph shared by the subcommands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	client  *backend.Client
}

func loadApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		backend.WithLogger(logger),
		backend.WithMetrics(m),
	)
	return &app{cfg: cfg, logger: logger, metrics: m, client: client}, nil
}

// openCache builds the narrative content cache. The returned close function
// snapshots a memory cache or closes the SQLite database.
func (a *app) openCache(ctx context.Context) (contentcache.Cache, func(), error) {
	cfg := a.cfg.Cache
	switch cfg.Driver {
	case config.CacheSQLite:
		c, err := contentcache.NewSQLite(cfg.Path, cfg.TTL, contentcache.WithMetrics(a.metrics))
		if err != nil {
			return nil, nil, fmt.Errorf("open content cache: %w", err)
		}
		if n, err := c.Purge(ctx); err != nil {
			a.logger.Warn("purge expired cache entries failed", zap.Error(err))
		} else if n > 0 {
			a.logger.Info("purged expired cache entries", zap.Int64("count", n))
		}
		return c, func() {
			if err := c.Close(); err != nil {
				a.logger.Warn("close content cache failed", zap.Error(err))
			}
		}, nil
	default:
		c := contentcache.NewMemory(cfg.TTL, contentcache.WithMetrics(a.metrics))
		if cfg.SnapshotPath == "" {
			return c, func() {}, nil
		}
		if err := c.Restore(cfg.SnapshotPath); err != nil {
			a.logger.Warn("restore cache snapshot failed", zap.String("path", cfg.SnapshotPath), zap.Error(err))
		}
		return c, func() {
			if err := c.Snapshot(cfg.SnapshotPath); err != nil {
				a.logger.Warn("write cache snapshot failed", zap.String("path", cfg.SnapshotPath), zap.Error(err))
			}
		}, nil
	}
}

// narratives wires the content service to the configured generator. The backend
// pre-generated content source is skipped for offline renders.
func (a *app) narratives(cache contentcache.Cache, withBackendContent bool) (*narrative.Service, error) {
	opts := []narrative.ServiceOption{
		narrative.WithCache(cache),
		narrative.WithRateLimit(a.cfg.LLM.RatePerSecond),
		narrative.WithCallTimeout(a.cfg.LLM.Timeout),
		narrative.WithLogger(a.logger),
		narrative.WithMetrics(a.metrics),
	}
	if withBackendContent {
		opts = append(opts, narrative.WithPreGenerated(a.client))
	}
	switch a.cfg.LLM.Provider {
	case config.ProviderBackend:
		opts = append(opts, narrative.WithGenerator(config.ProviderBackend, narrative.NewBackendGenerator(a.client)))
	case config.ProviderAnthropic:
		g, err := narrative.NewAnthropicGenerator(a.cfg.LLM.APIKey, a.cfg.LLM.Model, a.cfg.LLM.MaxTokens)
		if err != nil {
			return nil, err
		}
		opts = append(opts, narrative.WithGenerator(config.ProviderAnthropic, g))
	}
	return narrative.NewService(opts...), nil
}

func (a *app) renderer() *report.ChromiumPDFRenderer {
	return report.NewChromiumPDFRenderer(
		report.WithChromePath(a.cfg.Report.ChromePath),
		report.WithRenderTimeout(a.cfg.Report.RenderTimeout),
		report.WithMaxConcurrent(a.cfg.Report.MaxConcurrent),
		report.WithLogger(a.logger),
		report.WithMetrics(a.metrics),
	)
}
