package narrative

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joelkehle/transformation-dashboard/internal/backend"
)

// ErrNoGenerator is returned when no text generator is configured.
var ErrNoGenerator = errors.New("no text generator configured")

const systemPrompt = "You are a strategy consultant writing sections of an AI transformation proposal for a company's executives. Respond with the requested text only, without preamble."

const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 1500
	maxAttempts      = 3
	maxBackoff       = 2 * time.Second
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CompanyScoped is implemented by generators that run prompts in the context of
// one company.
type CompanyScoped interface {
	ForCompany(company string) Generator
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type failureClass int

const (
	failureNone failureClass = iota
	failureEmpty
	failureTimeout
	failureRateLimit
	failureServer
	failureClient
)

func (c failureClass) retryable() bool {
	return c == failureTimeout || c == failureRateLimit || c == failureServer || c == failureEmpty
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

// AnthropicGenerator calls the Anthropic Messages API, retrying transient
// failures.
type AnthropicGenerator struct {
	messages  AnthropicMessager
	model     anthropic.Model
	maxTokens int64
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewAnthropicGenerator builds a generator for apiKey. An empty key yields
// ErrNoGenerator.
func NewAnthropicGenerator(apiKey, model string, maxTokens int) (*AnthropicGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not configured: %w", ErrNoGenerator)
	}
	return newAnthropicGenerator(newAnthropicClient(apiKey), model, maxTokens), nil
}

func newAnthropicGenerator(m AnthropicMessager, model string, maxTokens int) *AnthropicGenerator {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &AnthropicGenerator{
		messages:  m,
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
		sleep:     sleepContext,
	}
}

func (a *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := a.call(ctx, prompt)
		class := failureNone
		switch {
		case err != nil:
			class = classifyTransportError(err)
			lastErr = err
		case strings.TrimSpace(text) == "":
			class = failureEmpty
			lastErr = errors.New("empty response")
		default:
			return stripCodeFences(text), nil
		}
		if !class.retryable() || attempt == maxAttempts || ctx.Err() != nil {
			break
		}
		if err := a.sleep(ctx, backoffDelay(attempt)); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("anthropic generate: %w", lastErr)
}

func (a *AnthropicGenerator) call(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0.3),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// BackendGenerator asks the analysis backend to generate text.
type BackendGenerator struct {
	client  *backend.Client
	company string
}

func NewBackendGenerator(client *backend.Client) *BackendGenerator {
	return &BackendGenerator{client: client}
}

// ForCompany returns a generator whose prompts run against company's analysis.
func (g *BackendGenerator) ForCompany(company string) Generator {
	return &BackendGenerator{client: g.client, company: company}
}

func (g *BackendGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", ErrNoGenerator
	}
	text, err := g.client.GenerateContent(ctx, prompt, g.company)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("backend returned no content")
	}
	return text, nil
}

// stripCodeFences unwraps a reply the model sent as a single fenced block.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	body, ok := strings.CutPrefix(s, "```")
	if !ok {
		return s
	}
	if _, rest, found := strings.Cut(body, "\n"); found {
		body = rest
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(body), "```"))
}

// classifyTransportError sorts a failed Messages call by the API status code.
// Errors without a status are connection failures and are retried.
func classifyTransportError(err error) failureClass {
	if errors.Is(err, context.Canceled) {
		return failureClient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	return failureServer
}

func classifyStatus(code int) failureClass {
	switch {
	case code == http.StatusTooManyRequests:
		return failureRateLimit
	case code == http.StatusRequestTimeout:
		return failureTimeout
	case code >= 500:
		return failureServer
	case code >= 400:
		return failureClient
	default:
		return failureServer
	}
}

func backoffDelay(attempt int) time.Duration {
	return min(time.Duration(max(attempt, 1))*time.Second, maxBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
