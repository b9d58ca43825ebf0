// Package dashboard serves the transformation dashboard: the backend proxy, the
// analysis job tracker, the dashboard tab views and the report downloads.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/backend"
	"github.com/joelkehle/transformation-dashboard/internal/logging"
	"github.com/joelkehle/transformation-dashboard/internal/metrics"
	"github.com/joelkehle/transformation-dashboard/internal/narrative"
	"github.com/joelkehle/transformation-dashboard/internal/report"
)

const maxProxyBody = 10 << 20

// Backend is the part of the analysis backend the dashboard reads.
type Backend interface {
	Bundle(ctx context.Context, company string) (analysis.Bundle, error)
	Proxy(ctx context.Context, method, prefix, path, rawQuery string, body []byte) (*backend.Response, error)
}

// Narratives resolves the generated report prose for a company.
type Narratives interface {
	Content(ctx context.Context, company string, b analysis.Bundle, opts narrative.Options) (narrative.Result, error)
	Clear(ctx context.Context, company string) error
}

type Config struct {
	Backend    Backend
	Narratives Narratives
	// Renderer may be nil, in which case PDF routes answer 503.
	Renderer report.Renderer
	Tracker  *Tracker
	WebDir   string
	Theme    string
	Provider report.Provider
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

type Server struct {
	backend    Backend
	narratives Narratives
	renderer   report.Renderer
	tracker    *Tracker
	webDir     string
	theme      string
	provider   report.Provider
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewServer(cfg Config) http.Handler {
	s := &Server{
		backend:    cfg.Backend,
		narratives: cfg.Narratives,
		renderer:   cfg.Renderer,
		tracker:    cfg.Tracker,
		webDir:     cfg.WebDir,
		theme:      cfg.Theme,
		provider:   cfg.Provider,
		logger:     logging.OrNop(cfg.Logger),
		metrics:    cfg.Metrics,
		now:        cfg.Now,
	}
	if s.theme == "" {
		s.theme = analysis.DefaultTheme
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s.routes()
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		requestID(),
		cors(),
		observe(s.metrics),
		accessLog(s.logger),
		recovery(s.logger),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	r.Any("/api/*path", s.handleProxy("/api"))
	r.GET("/test-results/*path", s.handleProxy("/test-results"))

	v1 := r.Group("/v1")
	v1.POST("/analyses", s.handleSubmit)
	v1.GET("/analyses/:token", s.handleJob)

	company := v1.Group("/companies/:company")
	company.GET("/dashboard", s.handleDashboard)
	company.GET("/pain-points", s.handlePainPoints)
	company.GET("/report.md", s.handleReportMarkdown)
	company.GET("/report.pdf", s.handleReportPDF)
	company.GET("/report/preview", s.handleReportPreview)
	company.DELETE("/content", s.handleClearContent)

	r.NoRoute(s.handleStatic)
	return r
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// handleProxy forwards the request to the backend under prefix. Error statuses
// are reported as a JSON error body with the same status.
func (s *Server) handleProxy(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			blob, err := io.ReadAll(io.LimitReader(c.Request.Body, maxProxyBody))
			if err != nil {
				writeError(c, http.StatusBadRequest, "invalid request body")
				return
			}
			body = blob
		}

		resp, err := s.backend.Proxy(c.Request.Context(), c.Request.Method, prefix, c.Param("path"), c.Request.URL.RawQuery, body)
		if resp == nil {
			if errors.Is(err, backend.ErrInvalidRequest) {
				writeError(c, http.StatusBadRequest, "invalid proxy path")
				return
			}
			s.logger.Error("proxy request failed", zap.String("prefix", prefix), zap.String("path", c.Param("path")), zap.Error(err))
			writeError(c, http.StatusInternalServerError, "Failed to proxy request to backend")
			return
		}
		if resp.Status < 200 || resp.Status > 299 {
			s.logger.Warn("backend returned error status", zap.String("path", prefix+c.Param("path")), zap.Int("status", resp.Status))
			writeError(c, resp.Status, fmt.Sprintf("Backend returned status: %d", resp.Status))
			return
		}

		if strings.Contains(resp.ContentType, "application/json") {
			var payload any
			if err := json.Unmarshal(resp.Body, &payload); err != nil {
				writeError(c, http.StatusInternalServerError, "Failed to parse JSON response")
				return
			}
			c.JSON(resp.Status, payload)
			return
		}
		contentType := resp.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(resp.Status, contentType, resp.Body)
	}
}

func (s *Server) handleSubmit(c *gin.Context) {
	if s.tracker == nil {
		writeError(c, http.StatusServiceUnavailable, "analysis tracking unavailable")
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	job, err := s.tracker.Submit(c.Request.Context(), req)
	switch {
	case errors.Is(err, ErrCompanyNameRequired), errors.Is(err, ErrCompanyURLRequired):
		writeError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("submit analysis failed", zap.String("company", req.CompanyName), zap.Error(err))
		writeError(c, http.StatusBadGateway, "Error starting analysis. Please try again.")
		return
	}
	status := http.StatusAccepted
	if job.Status == StatusCompleted {
		status = http.StatusOK
	}
	c.JSON(status, job)
}

func (s *Server) handleJob(c *gin.Context) {
	if s.tracker == nil {
		writeError(c, http.StatusServiceUnavailable, "analysis tracking unavailable")
		return
	}
	job, ok := s.tracker.Store().Get(c.Param("token"))
	if !ok {
		writeError(c, http.StatusNotFound, "job not found")
		return
	}
	c.JSON(http.StatusOK, job)
}

// bundle loads the company's analysis, answering the request itself on failure.
func (s *Server) bundle(c *gin.Context) (analysis.Bundle, bool) {
	company := c.Param("company")
	b, err := s.backend.Bundle(c.Request.Context(), company)
	if err == nil {
		return b, true
	}
	switch {
	case backend.IsNotFound(err):
		writeError(c, http.StatusNotFound, fmt.Sprintf("No analysis found for %s. Please generate an analysis first.", company))
	case errors.Is(err, backend.ErrTimeout):
		writeError(c, http.StatusGatewayTimeout, "Request timed out. The server may be busy processing your request.")
	default:
		s.logger.Error("load company analysis failed", zap.String("company", company), zap.Error(err))
		writeError(c, http.StatusBadGateway, "Failed to retrieve company analysis")
	}
	return analysis.Bundle{}, false
}

func parseMax(c *gin.Context) (int, bool) {
	raw := c.Query("max")
	if raw == "" {
		return defaultPainPointMax, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(c, http.StatusBadRequest, "max must be a non-negative integer")
		return 0, false
	}
	return min(n, maxPainPointsParam), true
}

func (s *Server) handleDashboard(c *gin.Context) {
	limit, ok := parseMax(c)
	if !ok {
		return
	}
	b, ok := s.bundle(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, BuildView(c.Param("company"), b, c.DefaultQuery("theme", s.theme), limit))
}

func (s *Server) handlePainPoints(c *gin.Context) {
	limit, ok := parseMax(c)
	if !ok {
		return
	}
	b, ok := s.bundle(c)
	if !ok {
		return
	}
	view := BuildView(c.Param("company"), b, s.theme, limit)
	c.JSON(http.StatusOK, gin.H{
		"company":    c.Param("company"),
		"painPoints": view.PainPoints,
		"total":      len(view.BusinessChallenges),
	})
}

// document builds the report, honouring ?cache=false and ?theme=.
func (s *Server) document(c *gin.Context) (report.Document, bool) {
	b, ok := s.bundle(c)
	if !ok {
		return report.Document{}, false
	}
	company := c.Param("company")
	var content narrative.Content
	if s.narratives != nil {
		res, err := s.narratives.Content(c.Request.Context(), company, b, narrative.Options{UseCache: c.Query("cache") != "false"})
		if err != nil {
			s.logger.Warn("narrative content unavailable", zap.String("company", company), zap.Error(err))
			writeError(c, http.StatusInternalServerError, "Failed to generate report content")
			return report.Document{}, false
		}
		content = res.Content
		c.Header("X-Narrative-Source", string(res.Source))
	}
	doc := report.Build(b, content, report.Options{
		Theme:    analysis.ThemeByName(c.DefaultQuery("theme", s.theme)),
		Date:     s.now(),
		Provider: s.provider,
	})
	return doc, true
}

func (s *Server) handleReportMarkdown(c *gin.Context) {
	start := s.now()
	doc, ok := s.document(c)
	if !ok {
		return
	}
	s.metrics.ReportRendered("markdown", nil, s.now().Sub(start))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc.Markdown()))
}

func (s *Server) handleReportPDF(c *gin.Context) {
	s.servePDF(c, "attachment")
}

func (s *Server) handleReportPreview(c *gin.Context) {
	s.servePDF(c, "inline")
}

func (s *Server) servePDF(c *gin.Context, disposition string) {
	if s.renderer == nil {
		writeError(c, http.StatusServiceUnavailable, "pdf renderer unavailable")
		return
	}
	doc, ok := s.document(c)
	if !ok {
		return
	}
	pdf, err := s.renderer.Render(c.Request.Context(), doc)
	if err != nil {
		s.logger.Error("render pdf failed", zap.String("company", c.Param("company")), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to render pdf")
		return
	}
	filename := sanitizeFilename(c.Param("company")) + "-ai-transformation-plan.pdf"
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) handleClearContent(c *gin.Context) {
	if s.narratives == nil {
		writeError(c, http.StatusServiceUnavailable, "narrative content unavailable")
		return
	}
	company := c.Param("company")
	if err := s.narratives.Clear(c.Request.Context(), company); err != nil {
		s.logger.Error("clear narrative content failed", zap.String("company", company), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to clear cached content")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "company": company})
}

// handleStatic serves the web directory, with index.html at the root.
func (s *Server) handleStatic(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		writeError(c, http.StatusNotFound, "not found")
		return
	}
	clean := path.Clean("/" + c.Request.URL.Path)
	if clean == "/v1" || strings.HasPrefix(clean, "/v1/") {
		writeError(c, http.StatusNotFound, "not found")
		return
	}
	if clean == "/" {
		clean = "/index.html"
	}
	full := filepath.Join(s.webDir, filepath.FromSlash(clean))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		writeError(c, http.StatusNotFound, "not found")
		return
	}
	// Stale frontend bundles break the UI after deploys.
	c.Header("Cache-Control", "no-store")
	c.File(full)
}

func sanitizeFilename(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "report"
	}
	v = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, v)
	if v = strings.Trim(v, "-"); v == "" {
		return "report"
	}
	return v
}
