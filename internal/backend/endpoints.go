package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
)

func companyPath(company string) string {
	return url.PathEscape(analysis.CompanyID(company))
}

// CacheStatus reports which analysis files exist for company. A 404 means no
// analysis has been cached yet and is not an error.
func (c *Client) CacheStatus(ctx context.Context, company string) (analysis.CacheStatus, error) {
	blob, status, err := c.DoJSON(ctx, "cache-status", http.MethodGet, "/api/cache-status/"+url.PathEscape(company), nil)
	if status == http.StatusNotFound {
		return analysis.CacheStatus{Exists: false, Message: "No cache found for this company"}, nil
	}
	if err != nil {
		return analysis.CacheStatus{}, fmt.Errorf("check cache status for %s: %w", company, err)
	}
	var out analysis.CacheStatus
	if err := json.Unmarshal(blob, &out); err != nil {
		return analysis.CacheStatus{}, fmt.Errorf("decode cache status: %w", err)
	}
	return out, nil
}

// ClearCache removes the backend's cached analysis for company. newName, when
// set, tells the backend the company will be re-analyzed under a new name.
func (c *Client) ClearCache(ctx context.Context, company, newName string) (bool, error) {
	payload := map[string]string{}
	if strings.TrimSpace(newName) != "" {
		payload["newCompanyName"] = newName
	}
	body, _ := json.Marshal(payload)
	blob, _, err := c.DoJSON(ctx, "clear-cache", http.MethodDelete, "/api/clear-cache/"+url.PathEscape(company), body)
	if err != nil {
		return false, fmt.Errorf("clear cache for %s: %w", company, err)
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(blob, &resp); err != nil {
		return false, fmt.Errorf("decode clear cache response: %w", err)
	}
	return resp.Success, nil
}

// GenerateAnalysis asks the backend to analyze a company website.
func (c *Client) GenerateAnalysis(ctx context.Context, companyURL, companyName string) (json.RawMessage, error) {
	body, _ := json.Marshal(map[string]string{"companyUrl": companyURL, "companyName": companyName})
	blob, _, err := c.DoJSON(ctx, "analyze", http.MethodPost, "/api/analyze", body)
	if err != nil {
		return nil, fmt.Errorf("generate analysis for %s: %w", companyName, err)
	}
	return json.RawMessage(blob), nil
}

// GenerateContent runs prompt through the backend LLM, in the company's context
// when company is set. Failures wrap ErrTimeout, ErrInvalidRequest,
// ErrEndpointNotFound or ErrUpstream where they apply.
func (c *Client) GenerateContent(ctx context.Context, prompt, company string) (string, error) {
	path := "/api/generate"
	if strings.TrimSpace(company) != "" {
		path = "/api/analysis/" + companyPath(company) + "/generate"
	}
	body, _ := json.Marshal(map[string]string{"prompt": prompt})
	blob, _, err := c.DoJSON(ctx, "generate", http.MethodPost, path, body)
	if err != nil {
		return "", classifyGenerate(err)
	}
	var resp struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(blob, &resp); err != nil {
		return "", fmt.Errorf("decode generated content: %w", err)
	}
	return resp.Content, nil
}

// Analysis returns the backend's analysis document for company as-is.
func (c *Client) Analysis(ctx context.Context, company string) (json.RawMessage, error) {
	blob, _, err := c.DoJSON(ctx, "analysis", http.MethodGet, "/api/analysis/"+url.PathEscape(company), nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve analysis for %s: %w", company, err)
	}
	return json.RawMessage(blob), nil
}

// FinalProposal fetches the finished analysis. It wraps ErrNotFound when no
// analysis exists and ErrTimeout on timeouts.
func (c *Client) FinalProposal(ctx context.Context, company string) (analysis.CompanyData, error) {
	blob, status, err := c.DoJSON(ctx, "final-proposal", http.MethodGet, "/cache/"+companyPath(company)+"/"+analysis.FinalProposalFile, nil)
	switch {
	case status == http.StatusNotFound:
		return analysis.CompanyData{}, fmt.Errorf("no analysis found for %s, generate an analysis first: %w", company, ErrNotFound)
	case err != nil && isTimeout(err):
		return analysis.CompanyData{}, fmt.Errorf("retrieve analysis for %s: %w: %w", company, ErrTimeout, err)
	case err != nil:
		return analysis.CompanyData{}, fmt.Errorf("retrieve analysis for %s: %w", company, err)
	}
	var out analysis.CompanyData
	if err := json.Unmarshal(blob, &out); err != nil {
		return analysis.CompanyData{}, fmt.Errorf("decode final proposal for %s: %w", company, err)
	}
	return out, nil
}

// IndustryInsights never fails: errors are logged and yield empty insights.
func (c *Client) IndustryInsights(ctx context.Context, company string) analysis.IndustryInsights {
	blob, _, err := c.DoJSON(ctx, "industry-insights", http.MethodGet, "/cache/"+companyPath(company)+"/industry_insights.json", nil)
	if err != nil {
		c.logger.Warn("industry insights unavailable", zap.String("company", company), zap.Error(err))
		return analysis.IndustryInsights{IndustryInsights: []string{}}
	}
	var out analysis.IndustryInsights
	if err := json.Unmarshal(blob, &out); err != nil {
		c.logger.Warn("industry insights malformed", zap.String("company", company), zap.Error(err))
		return analysis.IndustryInsights{IndustryInsights: []string{}}
	}
	if out.IndustryInsights == nil {
		out.IndustryInsights = []string{}
	}
	return out
}

// BusinessChallenges never fails: errors are logged and yield no challenges.
func (c *Client) BusinessChallenges(ctx context.Context, company string) []analysis.BusinessChallenge {
	blob, _, err := c.DoJSON(ctx, "business-challenges", http.MethodGet, "/cache/"+companyPath(company)+"/businessChallenges.json", nil)
	if err != nil {
		c.logger.Warn("business challenges unavailable", zap.String("company", company), zap.Error(err))
		return []analysis.BusinessChallenge{}
	}
	out, err := analysis.BusinessChallenges(blob)
	if err != nil {
		c.logger.Warn("business challenges malformed", zap.String("company", company), zap.Error(err))
		return []analysis.BusinessChallenge{}
	}
	return out
}

// PreGeneratedContent returns narrative content the backend produced during the
// analysis. It wraps ErrNotFound when the backend has none.
func (c *Client) PreGeneratedContent(ctx context.Context, company string) (json.RawMessage, error) {
	blob, _, err := c.DoJSON(ctx, "llm-content", http.MethodGet, "/api/llm-content/"+companyPath(company), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch pre-generated content for %s: %w", company, err)
	}
	var resp struct {
		Success bool            `json:"success"`
		Source  string          `json:"source"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(blob, &resp); err != nil {
		return nil, fmt.Errorf("decode pre-generated content: %w", err)
	}
	if !resp.Success || len(resp.Content) == 0 || string(resp.Content) == "null" {
		return nil, fmt.Errorf("pre-generated content not available for %s: %w", company, ErrNotFound)
	}
	c.logger.Debug("pre-generated content fetched", zap.String("company", company), zap.String("source", resp.Source))
	return resp.Content, nil
}

// Proxy forwards a request to prefix+path on the backend. The response is
// returned for every status; non-2xx responses also return a *StatusError.
func (c *Client) Proxy(ctx context.Context, method, prefix, path, rawQuery string, body []byte) (*Response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return nil, fmt.Errorf("proxy path %q: %w", path, ErrInvalidRequest)
		}
	}
	target := prefix + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	if len(body) == 0 {
		body = nil
	}
	return c.do(ctx, "proxy", method, target, body)
}

// IsNotFound reports whether err means the backend has no such document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || StatusCode(err) == http.StatusNotFound
}
