package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/narrative"
	"github.com/joelkehle/transformation-dashboard/internal/report"
)

type renderOptions struct {
	company  string
	input    string
	output   string
	theme    string
	markdown bool
	noCache  bool
}

func newRenderCmd(configPath *string) *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a company's transformation plan",
		Long: `Render a company's AI transformation plan to PDF or markdown.

The analysis is fetched from the backend unless --input names a saved bundle
JSON file, in which case the backend's pre-generated content is not consulted.

Examples:
  dashboard render --company acme --output acme.pdf
  dashboard render --company acme --input acme.json --output acme.md --markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), *configPath, opts)
		},
	}
	cmd.Flags().StringVar(&opts.company, "company", "", "company name")
	cmd.Flags().StringVar(&opts.input, "input", "", "analysis bundle JSON file (default: fetch from backend)")
	cmd.Flags().StringVar(&opts.output, "output", "", "output file path")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "report theme (classic, nature, ocean)")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "write markdown instead of PDF")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "regenerate narrative content instead of using the cache")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runRender(ctx context.Context, configPath string, opts renderOptions) error {
	a, err := loadApp(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	bundle, err := loadBundle(ctx, a, opts)
	if err != nil {
		return err
	}

	cache, closeCache, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	defer closeCache()
	narratives, err := a.narratives(cache, opts.input == "")
	if err != nil {
		return err
	}
	res, err := narratives.Content(ctx, opts.company, bundle, narrative.Options{UseCache: !opts.noCache})
	if err != nil {
		return fmt.Errorf("generate report content: %w", err)
	}
	a.logger.Info("narrative content resolved", zap.String("company", opts.company), zap.String("source", string(res.Source)))

	theme := opts.theme
	if theme == "" {
		theme = a.cfg.Report.Theme
	}
	doc := report.Build(bundle, res.Content, report.Options{
		Theme:    analysis.ThemeByName(theme),
		Date:     time.Now(),
		Provider: report.DefaultProvider,
	})

	var out []byte
	if opts.markdown {
		out = []byte(doc.Markdown())
	} else {
		out, err = a.renderer().Render(ctx, doc)
		if err != nil {
			return fmt.Errorf("render pdf: %w", err)
		}
	}

	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	a.logger.Info("report written", zap.String("path", opts.output), zap.Int("bytes", len(out)))
	return nil
}

func loadBundle(ctx context.Context, a *app, opts renderOptions) (analysis.Bundle, error) {
	if opts.input == "" {
		return a.client.Bundle(ctx, opts.company)
	}
	data, err := os.ReadFile(opts.input)
	if err != nil {
		return analysis.Bundle{}, fmt.Errorf("read bundle: %w", err)
	}
	var b analysis.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return analysis.Bundle{}, fmt.Errorf("decode bundle %s: %w", opts.input, err)
	}
	if len(b.Company.AIOpportunities) == 0 && b.Company.CompanyName == "" {
		return analysis.Bundle{}, errors.New("bundle has no company analysis")
	}
	return b, nil
}
