// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	BackendRequests     *prometheus.CounterVec
	BackendDuration     *prometheus.HistogramVec
	NarrativeResolved   *prometheus.CounterVec
	GeneratorCalls      *prometheus.CounterVec
	CacheLookups        *prometheus.CounterVec
	ReportRenders       *prometheus.CounterVec
	ReportRenderSeconds prometheus.Histogram
	JobsActive          prometheus.Gauge
}

// New registers every collector on a fresh registry, plus the Go and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BackendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_backend_requests_total",
			Help: "Requests made to the analysis backend, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		BackendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_backend_request_duration_seconds",
			Help:    "Analysis backend request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		NarrativeResolved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_narrative_resolved_total",
			Help: "Narrative content resolutions, by source (cache, pregenerated, generated, simulated).",
		}, []string{"source"}),
		GeneratorCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_generator_calls_total",
			Help: "LLM generator calls, by generator and outcome.",
		}, []string{"generator", "outcome"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_content_cache_lookups_total",
			Help: "Narrative cache lookups, by result (hit, miss, expired, error).",
		}, []string{"result"}),
		ReportRenders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_report_renders_total",
			Help: "Report renders, by format and outcome.",
		}, []string{"format", "outcome"}),
		ReportRenderSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_report_render_duration_seconds",
			Help:    "PDF render latency.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		JobsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_analysis_jobs_active",
			Help: "Analysis jobs still executing.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveBackend(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.BackendDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) NarrativeSource(source string) {
	if m == nil {
		return
	}
	m.NarrativeResolved.WithLabelValues(source).Inc()
}

func (m *Metrics) GeneratorCall(generator string, err error) {
	if m == nil {
		return
	}
	m.GeneratorCalls.WithLabelValues(generator, outcome(err)).Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ReportRendered(format string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ReportRenders.WithLabelValues(format, outcome(err)).Inc()
	if format == "pdf" && err == nil {
		m.ReportRenderSeconds.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) SetActiveJobs(n int) {
	if m == nil {
		return
	}
	m.JobsActive.Set(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
