package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/backend"
	"github.com/joelkehle/transformation-dashboard/internal/metrics"
	"github.com/joelkehle/transformation-dashboard/internal/narrative"
	"github.com/joelkehle/transformation-dashboard/internal/painpoints"
	"github.com/joelkehle/transformation-dashboard/internal/report"
)

type proxyCall struct {
	method   string
	prefix   string
	path     string
	rawQuery string
	body     string
}

type fakeBackend struct {
	bundles   map[string]analysis.Bundle
	bundleErr error
	proxyResp *backend.Response
	proxyErr  error
	calls     []proxyCall
}

func (f *fakeBackend) Bundle(_ context.Context, company string) (analysis.Bundle, error) {
	if company == "boom" {
		panic("bundle exploded")
	}
	if f.bundleErr != nil {
		return analysis.Bundle{}, f.bundleErr
	}
	b, ok := f.bundles[company]
	if !ok {
		return analysis.Bundle{}, fmt.Errorf("no analysis found for %s: %w", company, backend.ErrNotFound)
	}
	return b, nil
}

func (f *fakeBackend) Proxy(_ context.Context, method, prefix, path, rawQuery string, body []byte) (*backend.Response, error) {
	f.calls = append(f.calls, proxyCall{method: method, prefix: prefix, path: path, rawQuery: rawQuery, body: string(body)})
	return f.proxyResp, f.proxyErr
}

type fakeNarratives struct {
	mu      sync.Mutex
	opts    []narrative.Options
	cleared []string
	err     error
}

func (f *fakeNarratives) Content(_ context.Context, _ string, b analysis.Bundle, opts narrative.Options) (narrative.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return narrative.Result{}, f.err
	}
	return narrative.Result{
		Content: narrative.Content{
			CompanyContext: b.Company.CompanyName + " sells anvils to coyotes.",
			ExecutiveSummaryContent: narrative.ExecutiveSummaryContent{
				ProblemStatement: "Anvils arrive late.",
			},
		},
		Source: narrative.SourceGenerated,
	}, nil
}

func (f *fakeNarratives) Clear(_ context.Context, company string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, company)
	return f.err
}

type fakeRenderer struct {
	docs []report.Document
	err  error
}

func (f *fakeRenderer) Render(_ context.Context, doc report.Document) ([]byte, error) {
	f.docs = append(f.docs, doc)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func score(v float64) *float64 { return &v }

func acmeBundle() analysis.Bundle {
	return analysis.Bundle{
		Company: analysis.CompanyData{
			CompanyName:         "Acme Corp",
			CompanyURL:          "https://acme.test",
			Industry:            "Retail",
			BusinessContext:     "Acme sells anvils.",
			RecommendedApproach: "Start small.",
			NextSteps:           []string{"Kick off"},
			AIOpportunities: []analysis.Opportunity{
				{
					ID: "o1", Title: "Inventory forecasting engine", Impact: analysis.LevelHigh, Complexity: analysis.LevelLow,
					Timeframe: analysis.TimeframeShort, CombinedScore: score(82.4),
					PainPointRelevances: []analysis.PainPointRelevance{
						{PainPointID: "pp-stock", RelevanceScore: 9},
						{PainPointID: "pp-price", RelevanceScore: 3},
						{PainPointID: "pp-churn", RelevanceScore: 5},
						{PainPointID: "pp-other", RelevanceScore: 1},
					},
				},
				{ID: "o2", Title: "Support chatbot", Impact: analysis.LevelMedium, Complexity: analysis.LevelHigh, Timeframe: analysis.TimeframeLong},
				{ID: "o3", Title: "Fraud screening", Impact: analysis.LevelLow, Complexity: analysis.LevelHigh, Timeframe: analysis.TimeframeMedium},
				{ID: "o4", Title: "Price tuning", Impact: analysis.LevelHigh, Complexity: analysis.LevelMedium, Timeframe: analysis.TimeframeMedium},
			},
		},
		Insights: analysis.IndustryInsights{
			Industry:         "Retail",
			IndustryInsights: []string{"Margins are thin"},
			PossiblePainPoints: []painpoints.RawPainPoint{
				{"id": "pp-stock", "title": "Stockouts", "typicalSeverity": 6.0},
				{"id": "pp-churn", "title": "Churn", "typicalSeverity": 9.0},
				{"id": "pp-price", "title": "Price wars", "typicalSeverity": 4.0},
				{"id": "pp-other", "title": "Other", "typicalSeverity": 2.0},
			},
		},
		Challenges: []analysis.BusinessChallenge{},
	}
}

type testServer struct {
	handler    http.Handler
	backend    *fakeBackend
	narratives *fakeNarratives
	renderer   *fakeRenderer
	analyzer   *fakeAnalyzer
	tracker    *Tracker
	metrics    *metrics.Metrics
	webDir     string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		backend:    &fakeBackend{bundles: map[string]analysis.Bundle{"acme": acmeBundle()}},
		narratives: &fakeNarratives{},
		renderer:   &fakeRenderer{},
		analyzer:   newFakeAnalyzer(),
		metrics:    metrics.New(),
		webDir:     t.TempDir(),
	}
	ts.tracker = NewTracker(ts.analyzer, NewJobStore())
	t.Cleanup(ts.tracker.Wait)
	ts.handler = NewServer(Config{
		Backend:    ts.backend,
		Narratives: ts.narratives,
		Renderer:   ts.renderer,
		Tracker:    ts.tracker,
		WebDir:     ts.webDir,
		Metrics:    ts.metrics,
		Now:        func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp["error"]
}

func TestHealthzAndCommonHeaders(t *testing.T) {
	ts := setupServer(t)
	rr := ts.do(t, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.HTTPRequests.WithLabelValues("GET", "/healthz", "2xx")))
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := setupServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-Id"))
}

func TestPreflightAnswersNoContent(t *testing.T) {
	ts := setupServer(t)
	for _, target := range []string{"/api/analysis/acme", "/v1/analyses", "/anything"} {
		rr := ts.do(t, http.MethodOptions, target, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code, target)
		assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", rr.Header().Get("Access-Control-Allow-Headers"))
	}
	assert.Empty(t, ts.backend.calls)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupServer(t)
	ts.do(t, http.MethodGet, "/healthz", nil)
	rr := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dashboard_http_requests_total")
}

func TestProxyReencodesJSON(t *testing.T) {
	ts := setupServer(t)
	ts.backend.proxyResp = &backend.Response{Status: http.StatusOK, ContentType: "application/json; charset=utf-8", Body: []byte(`{ "exists" : true }`)}

	rr := ts.do(t, http.MethodPost, "/api/cache-status/acme?fresh=1", strings.NewReader(`{"x":1}`))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"exists":true}`, rr.Body.String())
	require.Len(t, ts.backend.calls, 1)
	assert.Equal(t, proxyCall{method: http.MethodPost, prefix: "/api", path: "/cache-status/acme", rawQuery: "fresh=1", body: `{"x":1}`}, ts.backend.calls[0])
}

func TestProxyPassesThroughOtherContent(t *testing.T) {
	ts := setupServer(t)
	ts.backend.proxyResp = &backend.Response{Status: http.StatusOK, ContentType: "text/csv", Body: []byte("a,b\n1,2\n")}

	rr := ts.do(t, http.MethodGet, "/test-results/run-1/results.csv", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n1,2\n", rr.Body.String())
	assert.Equal(t, "/test-results", ts.backend.calls[0].prefix)
	assert.Equal(t, "/run-1/results.csv", ts.backend.calls[0].path)
}

func TestProxyErrorStatusIsMirrored(t *testing.T) {
	ts := setupServer(t)
	ts.backend.proxyResp = &backend.Response{Status: http.StatusNotFound, ContentType: "text/html", Body: []byte("<h1>nope</h1>")}
	ts.backend.proxyErr = &backend.StatusError{Status: http.StatusNotFound}

	rr := ts.do(t, http.MethodGet, "/api/analysis/unknown", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Backend returned status: 404", decodeError(t, rr))
}

func TestProxyFailures(t *testing.T) {
	ts := setupServer(t)

	ts.backend.proxyErr = errors.New("dial tcp: connection refused")
	rr := ts.do(t, http.MethodGet, "/api/analysis/acme", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to proxy request to backend", decodeError(t, rr))

	ts.backend.proxyErr = fmt.Errorf("proxy path: %w", backend.ErrInvalidRequest)
	rr = ts.do(t, http.MethodGet, "/api/analysis/acme", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	ts.backend.proxyErr = nil
	ts.backend.proxyResp = &backend.Response{Status: http.StatusOK, ContentType: "application/json", Body: []byte("{truncated")}
	rr = ts.do(t, http.MethodGet, "/api/analysis/acme", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to parse JSON response", decodeError(t, rr))
}

func TestProxyThroughBackendClient(t *testing.T) {
	var gotPath, gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"exists":false}`))
	}))
	defer upstream.Close()

	handler := NewServer(Config{Backend: backend.NewClient(upstream.URL, time.Second)})
	req := httptest.NewRequest(http.MethodGet, "/api/cache-status/acme?x=1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"exists":false}`, rr.Body.String())
	assert.Equal(t, "/api/cache-status/acme", gotPath)
	assert.Equal(t, "x=1", gotQuery)
}

func TestDashboardView(t *testing.T) {
	ts := setupServer(t)
	rr := ts.do(t, http.MethodGet, "/v1/companies/acme/dashboard", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var view View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "acme", view.Company)
	assert.Equal(t, "Acme Corp", view.CompanyName)
	assert.Len(t, view.Strategies, 4)
	require.Len(t, view.Overview.TopStrategies, topStrategyCount)
	assert.Equal(t, "o1", view.Overview.TopStrategies[0].ID)
	assert.Equal(t, analysis.QuadrantQuickWins, view.Overview.TopStrategies[0].Quadrant)
	assert.Equal(t, "Quick Wins", view.Overview.TopStrategies[0].QuadrantInfo.Name)
	assert.Len(t, view.Strategies[0].TopRelevances, topRelevanceCount)
	assert.Equal(t, "pp-stock", view.Strategies[0].TopRelevances[0].PainPointID)

	require.Len(t, view.PainPoints, painpoints.DefaultMaxPoints)
	assert.Equal(t, "pp-stock", view.PainPoints[0].ID)
	assert.True(t, view.PainPoints[0].HasRelevantStrategies)
	assert.Equal(t, "pp-churn", view.PainPoints[1].ID)
	assert.Len(t, view.BusinessChallenges, 4)

	assert.Equal(t, "Retail", view.Insights.Industry)
	assert.Equal(t, []string{"Margins are thin"}, view.Insights.Insights)
	assert.Equal(t, analysis.DefaultTheme, view.Settings.Theme)
	assert.Equal(t, []string{"classic", "nature", "ocean"}, view.Settings.Themes)
	assert.Equal(t, analysis.ComputeOverviewMetrics(acmeBundle().Company.AIOpportunities), view.Overview.Metrics)
}

func TestDashboardQueryOptions(t *testing.T) {
	ts := setupServer(t)
	rr := ts.do(t, http.MethodGet, "/v1/companies/acme/dashboard?theme=ocean&max=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var view View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "ocean", view.Settings.Theme)
	assert.Len(t, view.PainPoints, 1)
	assert.Equal(t, analysis.ThemeByName("ocean").Primary, view.Overview.TopStrategies[0].QuadrantInfo.Color)

	rr = ts.do(t, http.MethodGet, "/v1/companies/acme/dashboard?max=lots", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = ts.do(t, http.MethodGet, "/v1/companies/acme/dashboard?max=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboardBackendErrors(t *testing.T) {
	ts := setupServer(t)

	rr := ts.do(t, http.MethodGet, "/v1/companies/globex/dashboard", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, decodeError(t, rr), "No analysis found for globex")

	ts.backend.bundleErr = fmt.Errorf("retrieve: %w", backend.ErrTimeout)
	rr = ts.do(t, http.MethodGet, "/v1/companies/acme/dashboard", nil)
	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)

	ts.backend.bundleErr = errors.New("decode final proposal: unexpected EOF")
	rr = ts.do(t, http.MethodGet, "/v1/companies/acme/dashboard", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestPanicIsRecovered(t *testing.T) {
	ts := setupServer(t)
	rr := ts.do(t, http.MethodGet, "/v1/companies/boom/dashboard", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", decodeError(t, rr))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.HTTPRequests.WithLabelValues("GET", "/v1/companies/:company/dashboard", "5xx")))
}

func TestPainPointsEndpoint(t *testing.T) {
	ts := setupServer(t)
	rr := ts.do(t, http.MethodGet, "/v1/companies/acme/pain-points?max=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		PainPoints []painpoints.ProcessedPainPoint `json:"painPoints"`
		Total      int                             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.PainPoints, 2)
	assert.Equal(t, "Stockouts", resp.PainPoints[0].Title)
	assert.Equal(t, 4, resp.Total)

	rr = ts.do(t, http.MethodGet, "/v1/companies/acme/pain-points?max=0", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.PainPoints)
}

func TestReportMarkdown(t *testing.T) {
	ts := setupServer(t)
	rr := ts.do(t, http.MethodGet, "/v1/companies/acme/report.md", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, "text/markdown; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "generated", rr.Header().Get("X-Narrative-Source"))
	body := rr.Body.String()
	assert.True(t, strings.HasPrefix(body, "# AI Transformation Plan for Acme Corp\n"))
	assert.Contains(t, body, "Anvils arrive late.")
	require.Len(t, ts.narratives.opts, 1)
	assert.True(t, ts.narratives.opts[0].UseCache)
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.ReportRenders.WithLabelValues("markdown", "ok")))

	ts.do(t, http.MethodGet, "/v1/companies/acme/report.md?cache=false", nil)
	require.Len(t, ts.narratives.opts, 2)
	assert.False(t, ts.narratives.opts[1].UseCache)
}

func TestReportNarrativeFailure(t *testing.T) {
	ts := setupServer(t)
	ts.narratives.err = context.Canceled
	rr := ts.do(t, http.MethodGet, "/v1/companies/acme/report.md", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestReportPDFDownloadAndPreview(t *testing.T) {
	ts := setupServer(t)

	rr := ts.do(t, http.MethodGet, "/v1/companies/acme/report.pdf?theme=nature", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="acme-ai-transformation-plan.pdf"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 fake", rr.Body.String())
	require.Len(t, ts.renderer.docs, 1)
	assert.Equal(t, "nature", ts.renderer.docs[0].Theme.Name)
	assert.Equal(t, "Acme Corp", ts.renderer.docs[0].Company)

	rr = ts.do(t, http.MethodGet, "/v1/companies/acme/report/preview", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `inline; filename="acme-ai-transformation-plan.pdf"`, rr.Header().Get("Content-Disposition"))
}

func TestReportPDFFailures(t *testing.T) {
	ts := setupServer(t)
	ts.renderer.err = errors.New("chrome crashed")
	rr := ts.do(t, http.MethodGet, "/v1/companies/acme/report.pdf", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "failed to render pdf", decodeError(t, rr))

	handler := NewServer(Config{Backend: ts.backend, Narratives: ts.narratives})
	req := httptest.NewRequest(http.MethodGet, "/v1/companies/acme/report.pdf", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClearContent(t *testing.T) {
	ts := setupServer(t)
	rr := ts.do(t, http.MethodDelete, "/v1/companies/acme/content", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"company":"acme"}`, rr.Body.String())
	assert.Equal(t, []string{"acme"}, ts.narratives.cleared)

	ts.narratives.err = errors.New("disk full")
	rr = ts.do(t, http.MethodDelete, "/v1/companies/acme/content", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestSubmitAndTrackAnalysis(t *testing.T) {
	ts := setupServer(t)

	rr := ts.do(t, http.MethodPost, "/v1/analyses", strings.NewReader(`{"companyName":"Globex","companyUrl":"https://globex.test"}`))
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	var job Job
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &job))
	assert.NotEmpty(t, job.Token)
	assert.Equal(t, StatusExecuting, job.Status)
	assert.Equal(t, "globex", job.Company)
	ts.tracker.Wait()

	ts.analyzer.finish("Globex")
	ts.tracker.Poll(context.Background())

	rr = ts.do(t, http.MethodGet, "/v1/analyses/"+job.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &job))
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
}

func TestSubmitFinishedAnalysisReturnsOK(t *testing.T) {
	ts := setupServer(t)
	ts.analyzer.finish("Acme Corp")
	rr := ts.do(t, http.MethodPost, "/v1/analyses", strings.NewReader(`{"companyName":"Acme Corp"}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestSubmitErrors(t *testing.T) {
	ts := setupServer(t)

	rr := ts.do(t, http.MethodPost, "/v1/analyses", strings.NewReader(`{"companyName":`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodPost, "/v1/analyses", strings.NewReader(`{"companyName":"Globex"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrCompanyURLRequired.Error(), decodeError(t, rr))

	ts.analyzer.statusErr = errors.New("backend down")
	rr = ts.do(t, http.MethodPost, "/v1/analyses", strings.NewReader(`{"companyName":"Globex","companyUrl":"https://globex.test"}`))
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	rr = ts.do(t, http.MethodGet, "/v1/analyses/unknown-token", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "job not found", decodeError(t, rr))
}

func TestStaticFiles(t *testing.T) {
	ts := setupServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(ts.webDir, "index.html"), []byte("<h1>dashboard</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(ts.webDir, "app.js"), []byte("console.log(1)"), 0o644))

	rr := ts.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "<h1>dashboard</h1>", rr.Body.String())
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	rr = ts.do(t, http.MethodGet, "/app.js", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "console.log(1)", rr.Body.String())

	for _, target := range []string{"/missing.css", "/v1/unknown", "/../secret"} {
		rr = ts.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, target)
	}
	rr = ts.do(t, http.MethodPost, "/app.js", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSanitizeFilename(t *testing.T) {
	for in, want := range map[string]string{
		"acme":         "acme",
		"Acme Corp":    "Acme-Corp",
		"  ":           "report",
		"../../etc":    "etc",
		"a/b\\c":       "a-b-c",
		"name_with-ok": "name_with-ok",
	} {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
