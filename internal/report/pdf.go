package report

import (
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/logging"
	"github.com/joelkehle/transformation-dashboard/internal/metrics"
	"github.com/joelkehle/transformation-dashboard/internal/telemetry"
)

//go:embed style.css
var styleCSS string

const (
	DefaultRenderTimeout = 60 * time.Second
	DefaultMaxConcurrent = 2
)

// Renderer turns a report document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

type ChromiumPDFRenderer struct {
	chromePath string
	timeout    time.Duration
	sem        *semaphore.Weighted
	logger     *zap.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type RendererOption func(*ChromiumPDFRenderer)

// WithChromePath overrides browser detection.
func WithChromePath(path string) RendererOption {
	return func(r *ChromiumPDFRenderer) {
		if strings.TrimSpace(path) != "" {
			r.chromePath = path
		}
	}
}

func WithRenderTimeout(d time.Duration) RendererOption {
	return func(r *ChromiumPDFRenderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMaxConcurrent caps how many browsers render at once.
func WithMaxConcurrent(n int) RendererOption {
	return func(r *ChromiumPDFRenderer) {
		if n > 0 {
			r.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

func WithLogger(l *zap.Logger) RendererOption {
	return func(r *ChromiumPDFRenderer) { r.logger = logging.OrNop(l) }
}

func WithMetrics(m *metrics.Metrics) RendererOption {
	return func(r *ChromiumPDFRenderer) { r.metrics = m }
}

func NewChromiumPDFRenderer(opts ...RendererOption) *ChromiumPDFRenderer {
	r := &ChromiumPDFRenderer{
		chromePath: detectChromePath(),
		timeout:    DefaultRenderTimeout,
		sem:        semaphore.NewWeighted(DefaultMaxConcurrent),
		logger:     zap.NewNop(),
		tracer:     telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ChromiumPDFRenderer) Render(ctx context.Context, doc Document) (pdf []byte, err error) {
	ctx, span := r.tracer.Start(ctx, "report.render_pdf", trace.WithAttributes(attribute.String("company", doc.Company)))
	start := time.Now()
	defer func() {
		r.metrics.ReportRendered("pdf", err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	htmlDoc, err := BuildHTML(doc)
	if err != nil {
		return nil, err
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for renderer: %w", err)
	}
	defer r.sem.Release(1)

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlDoc))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			footer := `<div style="width:100%;text-align:center;font-size:9px;color:#666;">` +
				html.EscapeString(doc.Company) + ` · Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(`<div></div>`).
				WithFooterTemplate(footer).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.5).
				WithMarginBottom(0.75).
				WithMarginLeft(0.45).
				WithMarginRight(0.45).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = out
			return nil
		}),
	); err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	r.logger.Info("report rendered",
		zap.String("company", doc.Company), zap.Int("bytes", len(pdf)), zap.Duration("elapsed", time.Since(start)))
	return pdf, nil
}

// BuildHTML converts the document's markdown into a standalone print-ready page
// styled with the document theme.
func BuildHTML(doc Document) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(doc.Markdown()), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + html.EscapeString(doc.Title) + "</title>" +
		"<style>" + styleCSS + "\n" + themeCSS(doc.Theme) + "</style></head><body>" +
		"<div class='pdf-wrap'>" + applyPrintLayoutHooks(content.String()) + "</div>" +
		"</body></html>", nil
}

func themeCSS(t analysis.Theme) string {
	if t.Name == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(":root{")
	for _, v := range [][2]string{
		{"--primary", t.Primary},
		{"--secondary", t.Secondary},
		{"--tertiary", t.Tertiary},
		{"--quaternary", t.Quaternary},
		{"--gray", t.Gray},
		{"--light-border", t.LightBorder},
	} {
		if v[1] != "" {
			b.WriteString(v[0] + ":" + v[1] + ";")
		}
	}
	b.WriteString("}")
	return b.String()
}

var (
	reSectionHeading = regexp.MustCompile(`<h2([^>]*)>`)
	reSeverity       = regexp.MustCompile(`Severity: (\d+)/10`)
	reAddressable    = regexp.MustCompile(`<strong>Addressable</strong>`)
)

// applyPrintLayoutHooks starts every section after the first on a new page and
// turns severity scores into coloured badges.
func applyPrintLayoutHooks(contentHTML string) string {
	first := true
	out := reSectionHeading.ReplaceAllStringFunc(contentHTML, func(m string) string {
		if first {
			first = false
			return m
		}
		return strings.TrimSuffix(m, ">") + ` data-page-break-before="true">`
	})
	out = reSeverity.ReplaceAllStringFunc(out, func(m string) string {
		n, _ := strconv.Atoi(reSeverity.FindStringSubmatch(m)[1])
		return fmt.Sprintf(`Severity: <span class="severity %s">%d</span>`, severityClass(n), n)
	})
	return reAddressable.ReplaceAllString(out, `<span class="addressable">Addressable</span>`)
}

func severityClass(n int) string {
	switch {
	case n >= 8:
		return "severity-high"
	case n >= 6:
		return "severity-medium"
	default:
		return "severity-low"
	}
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
