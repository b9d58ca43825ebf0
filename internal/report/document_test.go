package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/narrative"
)

func testBundle() analysis.Bundle {
	return analysis.Bundle{Company: testCompany(), Insights: testInsights()}
}

func testOptions() Options {
	return Options{Date: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)}
}

func sectionIDs(d Document) []string {
	ids := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		ids[i] = s.ID
	}
	return ids
}

func TestBuildSectionOrder(t *testing.T) {
	doc := Build(testBundle(), narrative.Content{}, testOptions())
	assert.Equal(t, "AI Transformation Plan for Acme Corp", doc.Title)
	assert.Equal(t, []string{
		"cover-letter", "table-of-contents", "executive-summary", "top-opportunities", "strategy-matrix",
		"opportunity-1", "opportunity-2", "next-steps", "why-us", "contact",
	}, sectionIDs(doc))

	// opportunities are ordered by combined score
	first, ok := doc.Section("opportunity-1")
	require.True(t, ok)
	assert.Equal(t, "Support chatbot", first.Title)
	assert.Equal(t, analysis.DefaultTheme, doc.Theme.Name)
}

func TestBuildCoverLetter(t *testing.T) {
	doc := Build(testBundle(), narrative.Content{}, testOptions())
	letter, _ := doc.Section("cover-letter")
	assert.Equal(t, "Acme Corp's AI Transformation Plan", letter.Title)
	assert.Contains(t, letter.Body, "March 4, 2025")
	assert.Contains(t, letter.Body, "Dear Acme Corp Leadership Team,")
	assert.Contains(t, letter.Body, "competitive advantage in the Retail sector")
	assert.Contains(t, letter.Body, DefaultProvider.SignatoryTitle)
}

func TestTableOfContentsListsSubsections(t *testing.T) {
	doc := Build(testBundle(), narrative.Content{}, testOptions())
	toc, _ := doc.Section("table-of-contents")
	assert.Contains(t, toc.Body, "1. **Executive Summary**")
	assert.Contains(t, toc.Body, "    - 1.1 Company's Mission")
	assert.Contains(t, toc.Body, "**Why HawkenAI?**")
	assert.NotContains(t, toc.Body, "Table of Contents")
}

func TestExecutiveSummarySectionContent(t *testing.T) {
	doc := Build(testBundle(), narrative.Content{}, testOptions())
	es, _ := doc.Section("executive-summary")
	assert.Contains(t, es.Body, "#### Support backlog\n\nSeverity: 9/10\n")
	assert.Contains(t, es.Body, "Severity: 6/10 · **Addressable**")
	assert.Contains(t, es.Body, "| Inventory stockouts | 6/10 | Inventory forecasting engine |")
	assert.Contains(t, es.Body, "**Support backlog**\n\n- Support chatbot (relevance 90%)")
	assert.Contains(t, es.Body, "> By implementing these AI solutions, Acme Corp can transform")
}

func TestTopOpportunitiesSection(t *testing.T) {
	doc := Build(testBundle(), narrative.Content{}, Options{TopOpportunities: 1})
	top, _ := doc.Section("top-opportunities")
	assert.Contains(t, top.Body, "| Implementation ease | 60% |")
	assert.Contains(t, top.Body, "| Workflow Automation | 1 | 50% |")
	assert.Contains(t, top.Body, "### Top 1 Opportunities")
	assert.Contains(t, top.Body, "1. **Support chatbot**")
	assert.NotContains(t, top.Body, "2. **")

	empty := Build(analysis.Bundle{Company: analysis.CompanyData{CompanyName: "Empty"}}, narrative.Content{}, Options{})
	top, _ = empty.Section("top-opportunities")
	assert.Contains(t, top.Body, "No opportunities have been identified yet.")
	assert.NotContains(t, sectionIDs(empty), "opportunity-1")
}

func TestMatrixSection(t *testing.T) {
	doc := Build(testBundle(), narrative.Content{}, testOptions())
	m, _ := doc.Section("strategy-matrix")
	quick := strings.Index(m.Body, "### Quick Wins")
	major := strings.Index(m.Body, "### Major Projects")
	require.True(t, quick >= 0 && major > quick)
	assert.Contains(t, m.Body[quick:major], "- Inventory forecasting engine")
	assert.Contains(t, m.Body[major:], "- Support chatbot")
	assert.Contains(t, m.Body, "### Avoid\n\n_Low Impact, High Complexity_\n\n- None")
}

func TestOpportunitySection(t *testing.T) {
	doc := Build(testBundle(), narrative.Content{}, testOptions())
	o, _ := doc.Section("opportunity-2")
	assert.Equal(t, "Inventory forecasting engine", o.Title)
	assert.Contains(t, o.Body, "| Category | Workflow-automation |")
	assert.Contains(t, o.Body, "| Combined score | 82% |")
	assert.NotContains(t, o.Body, "| Validation |")
	assert.Contains(t, o.Body, "### Key Benefits\n\n- Fewer stockouts")
	assert.Contains(t, o.Body, "1. **Audit**: review current data\n2. Pilot\n")
	assert.Contains(t, o.Body, "| Inventory stockouts | 9/10 | 35% fewer stockouts |")
	assert.NotContains(t, o.Body, "### Risk Factors")
}

func TestNextStepsAndProvider(t *testing.T) {
	opts := testOptions()
	opts.Provider = Provider{Name: "Initech", Email: "hello@initech.test", Website: "initech.test"}
	doc := Build(testBundle(), narrative.Content{}, opts)

	next, _ := doc.Section("next-steps")
	assert.Contains(t, next.Body, "### Recommended Approach\n\nStart small.")
	assert.Contains(t, next.Body, "1. Kickoff\n2. Data audit")

	why, _ := doc.Section("why-us")
	assert.Equal(t, "Why Initech?", why.Title)
	contact, _ := doc.Section("contact")
	assert.Contains(t, contact.Body, "hello@initech.test or visit initech.test")
}

func TestMarkdownHeadings(t *testing.T) {
	doc := Build(testBundle(), narrative.Content{}, testOptions())
	md := doc.Markdown()
	assert.True(t, strings.HasPrefix(md, "# AI Transformation Plan for Acme Corp\n\n## Acme Corp's AI Transformation Plan\n\n"))
	assert.Equal(t, len(doc.Sections), strings.Count(md, "\n## "))
	assert.True(t, strings.HasSuffix(md, "\n"))
	assert.False(t, strings.HasSuffix(md, "\n\n"))
}

func TestCellEscapesPipes(t *testing.T) {
	assert.Equal(t, `a \| b c`, cell("a | b\n c"))
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "9/10", formatScore(9))
	assert.Equal(t, "7.5/10", formatScore(7.5))
	assert.Equal(t, "82%", formatScore(82.4))
}
