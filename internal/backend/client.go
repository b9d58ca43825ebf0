// Package backend is the HTTP client of the remote analysis backend.
package backend

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/joelkehle/transformation-dashboard/internal/logging"
	"github.com/joelkehle/transformation-dashboard/internal/metrics"
	"github.com/joelkehle/transformation-dashboard/internal/telemetry"
)

const maxResponseBytes = 32 << 20

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(l) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
		tracer:  telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is a raw backend response.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// DoJSON sends payload (JSON, may be nil) to path and returns the response body.
// Non-2xx responses return the body together with a *StatusError.
func (c *Client) DoJSON(ctx context.Context, endpoint, method, path string, payload []byte) ([]byte, int, error) {
	resp, err := c.do(ctx, endpoint, method, path, payload)
	if err != nil {
		if resp != nil {
			return resp.Body, resp.Status, err
		}
		return nil, 0, err
	}
	return resp.Body, resp.Status, nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, payload []byte) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "backend."+endpoint, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	defer span.End()
	start := time.Now()

	resp, err := c.send(ctx, method, path, payload)

	outcome := "ok"
	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	}
	if err != nil {
		outcome = "error"
		if isTimeout(err) {
			outcome = "timeout"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.metrics.ObserveBackend(endpoint, outcome, time.Since(start))
	return resp, err
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	out := &Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: blob}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(blob)}
	}
	return out, nil
}
