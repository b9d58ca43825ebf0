package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/metrics"
	"github.com/joelkehle/transformation-dashboard/internal/narrative"
)

func TestApplyPrintLayoutHooksBreaksBeforeLaterSections(t *testing.T) {
	in := "<h1>Plan</h1><h2>Letter</h2><p>x</p><h2 id=\"toc\">Contents</h2>"
	out := applyPrintLayoutHooks(in)
	assert.Contains(t, out, "<h2>Letter</h2>")
	assert.Contains(t, out, `<h2 id="toc" data-page-break-before="true">Contents</h2>`)
}

func TestApplyPrintLayoutHooksSeverityBadges(t *testing.T) {
	out := applyPrintLayoutHooks("<p>Severity: 9/10 · <strong>Addressable</strong></p><p>Severity: 6/10</p><p>Severity: 2/10</p>")
	assert.Contains(t, out, `Severity: <span class="severity severity-high">9</span>`)
	assert.Contains(t, out, `Severity: <span class="severity severity-medium">6</span>`)
	assert.Contains(t, out, `Severity: <span class="severity severity-low">2</span>`)
	assert.Contains(t, out, `<span class="addressable">Addressable</span>`)
}

func TestApplyPrintLayoutHooksNoopWithoutHooks(t *testing.T) {
	in := "<h2>Only</h2><p>plain</p>"
	assert.Equal(t, in, applyPrintLayoutHooks(in))
}

func TestBuildHTML(t *testing.T) {
	opts := testOptions()
	opts.Theme = analysis.ThemeByName("ocean")
	doc := Build(testBundle(), narrative.Content{}, opts)
	out, err := BuildHTML(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "<title>AI Transformation Plan for Acme Corp</title>")
	assert.Contains(t, out, "--primary:"+opts.Theme.Primary+";")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, `data-page-break-before="true">Executive Summary</h2>`)
	assert.Contains(t, out, `class="severity severity-high"`)
}

func TestThemeCSSEmptyTheme(t *testing.T) {
	assert.Equal(t, "", themeCSS(analysis.Theme{}))
}

func TestRenderHonorsConcurrencyLimit(t *testing.T) {
	m := metrics.New()
	r := NewChromiumPDFRenderer(WithMaxConcurrent(1), WithMetrics(m))
	require.NoError(t, r.sem.Acquire(context.Background(), 1))
	defer r.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.Render(ctx, Build(testBundle(), narrative.Content{}, testOptions()))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportRenders.WithLabelValues("pdf", "error")))
}

func TestRendererOptions(t *testing.T) {
	r := NewChromiumPDFRenderer(WithChromePath("/opt/chrome"), WithRenderTimeout(time.Second), WithChromePath(" "))
	assert.Equal(t, "/opt/chrome", r.chromePath)
	assert.Equal(t, time.Second, r.timeout)
}
