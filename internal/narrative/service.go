package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/contentcache"
	"github.com/joelkehle/transformation-dashboard/internal/logging"
	"github.com/joelkehle/transformation-dashboard/internal/metrics"
	"github.com/joelkehle/transformation-dashboard/internal/telemetry"
)

// Source names where resolved content came from.
type Source string

const (
	SourceCache        Source = "cache"
	SourcePreGenerated Source = "pre_generated"
	SourceGenerated    Source = "generated"
	SourceSimulated    Source = "simulated"
)

const (
	DefaultCallTimeout   = 30 * time.Second
	DefaultRatePerSecond = 2.0
	rateBurst            = 3
)

// PreGenerated serves content the backend wrote during the analysis.
// *backend.Client satisfies it.
type PreGenerated interface {
	PreGeneratedContent(ctx context.Context, company string) (json.RawMessage, error)
}

type Options struct {
	// UseCache enables reading and writing the content cache.
	UseCache bool
}

type Result struct {
	Content Content
	Source  Source
}

// Service resolves narrative content for a company.
type Service struct {
	cache         contentcache.Cache
	pregen        PreGenerated
	generator     Generator
	generatorName string
	limiter       *rate.Limiter
	timeout       time.Duration
	logger        *zap.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	now           func() time.Time
}

type ServiceOption func(*Service)

func WithCache(c contentcache.Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

func WithPreGenerated(p PreGenerated) ServiceOption {
	return func(s *Service) { s.pregen = p }
}

// WithGenerator sets the text generator; name labels its metrics.
func WithGenerator(name string, g Generator) ServiceOption {
	return func(s *Service) {
		s.generator = g
		s.generatorName = name
	}
}

// WithRateLimit caps generator calls per second. Zero or less disables the limit.
func WithRateLimit(perSecond float64) ServiceOption {
	return func(s *Service) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), rateBurst)
	}
}

func WithCallTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = logging.OrNop(l) }
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		generatorName: "none",
		limiter:       rate.NewLimiter(rate.Limit(DefaultRatePerSecond), rateBurst),
		timeout:       DefaultCallTimeout,
		logger:        zap.NewNop(),
		tracer:        telemetry.Tracer(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Content resolves the narrative for company: cache, then backend pre-generated
// content, then three concurrent generator prompts with simulated text for any
// prompt that fails. It only errors when ctx ends.
func (s *Service) Content(ctx context.Context, company string, b analysis.Bundle, opts Options) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "narrative.content", trace.WithAttributes(attribute.String("company", company)))
	defer span.End()

	key := analysis.CompanyID(company)
	log := s.logger.With(zap.String("company", company))

	if opts.UseCache {
		if c, ok := s.fromCache(ctx, key, log); ok {
			return s.resolved(span, c, SourceCache), nil
		}
	}

	if c, ok := s.fromBackend(ctx, company, log); ok {
		if opts.UseCache {
			s.store(ctx, key, c, log)
		}
		return s.resolved(span, c, SourcePreGenerated), nil
	}

	c, source, err := s.generate(ctx, company, b)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	if opts.UseCache {
		s.store(ctx, key, c, log)
	}
	return s.resolved(span, c, source), nil
}

// Refresh drops the cached narrative for company and resolves it again.
func (s *Service) Refresh(ctx context.Context, company string, b analysis.Bundle) (Result, error) {
	if err := s.Clear(ctx, company); err != nil {
		return Result{}, err
	}
	return s.Content(ctx, company, b, Options{UseCache: true})
}

// Clear removes the cached narrative for company.
func (s *Service) Clear(ctx context.Context, company string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Clear(ctx, analysis.CompanyID(company)); err != nil {
		return fmt.Errorf("clear narrative cache for %s: %w", company, err)
	}
	s.logger.Info("narrative cache cleared", zap.String("company", company))
	return nil
}

func (s *Service) resolved(span trace.Span, c Content, source Source) Result {
	span.SetAttributes(attribute.String("narrative.source", string(source)))
	s.metrics.NarrativeSource(string(source))
	return Result{Content: c, Source: source}
}

func (s *Service) fromCache(ctx context.Context, key string, log *zap.Logger) (Content, bool) {
	if s.cache == nil {
		return Content{}, false
	}
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("narrative cache read failed", zap.Error(err))
		return Content{}, false
	}
	if !ok {
		return Content{}, false
	}
	c, err := Decode(payload)
	if err != nil {
		log.Warn("discarding unreadable cached narrative", zap.Error(err))
		return Content{}, false
	}
	return c, true
}

func (s *Service) fromBackend(ctx context.Context, company string, log *zap.Logger) (Content, bool) {
	if s.pregen == nil {
		return Content{}, false
	}
	raw, err := s.pregen.PreGeneratedContent(ctx, company)
	if err != nil {
		log.Debug("no pre-generated narrative", zap.Error(err))
		return Content{}, false
	}
	c, err := Decode(raw)
	if err != nil {
		log.Warn("pre-generated narrative is malformed", zap.Error(err))
		return Content{}, false
	}
	if c.GeneratedAt == 0 {
		c.GeneratedAt = s.now().UnixMilli()
	}
	return c, true
}

func (s *Service) store(ctx context.Context, key string, c Content, log *zap.Logger) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(c)
	if err != nil {
		log.Warn("encode narrative for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, payload); err != nil {
		log.Warn("narrative cache write failed", zap.Error(err))
	}
}

func (s *Service) generate(ctx context.Context, company string, b analysis.Bundle) (Content, Source, error) {
	gen := s.generator
	if scoped, ok := gen.(CompanyScoped); ok {
		gen = scoped.ForCompany(company)
	}

	data := b.Company
	if strings.TrimSpace(data.CompanyName) == "" {
		data.CompanyName = company
	}
	prompts := []struct {
		kind   promptKind
		prompt string
	}{
		{promptContext, contextPrompt(data)},
		{promptPainPoints, painPointsPrompt(data)},
		{promptOpportunities, opportunitiesPrompt(data, b.Challenges)},
	}

	texts := make([]string, len(prompts))
	failed := make([]bool, len(prompts))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range prompts {
		g.Go(func() error {
			text, err := s.call(gctx, gen, p.prompt)
			if err != nil {
				s.logger.Warn("generation failed, using simulated text",
					zap.String("company", company), zap.String("prompt", string(p.kind)), zap.Error(err))
				text = simulated(p.kind, data)
				failed[i] = true
			}
			texts[i] = text
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Content{}, "", err
	}

	c := Content{
		CompanyContext:         strings.TrimSpace(texts[0]),
		KeyBusinessChallenges:  bullets(texts[1]),
		StrategicOpportunities: bullets(texts[2]),
		ExecutiveSummaryContent: ExecutiveSummaryContent{
			IndustryTerminology: ExtractKeyTerms(data.BusinessContext),
		},
		GeneratedAt: s.now().UnixMilli(),
	}
	if c.CompanyContext == "" {
		c.CompanyContext = fmt.Sprintf("%s offers solutions in the %s sector.", data.CompanyName, industry(data))
	}
	if len(c.KeyBusinessChallenges) == 0 {
		c.KeyBusinessChallenges = append([]string(nil), fallbackPainPoints...)
	}
	if len(c.StrategicOpportunities) == 0 {
		c.StrategicOpportunities = append([]string(nil), fallbackOpportunities...)
	}
	c.fill()

	source := SourceSimulated
	for _, f := range failed {
		if !f {
			source = SourceGenerated
			break
		}
	}
	return c, source, nil
}

func (s *Service) call(ctx context.Context, gen Generator, prompt string) (string, error) {
	if gen == nil {
		return "", ErrNoGenerator
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	text, err := gen.Generate(callCtx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty generation")
	}
	s.metrics.GeneratorCall(s.generatorName, err)
	return text, err
}
