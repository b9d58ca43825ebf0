// Package report assembles the AI transformation plan for a company and renders
// it to markdown and PDF.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/narrative"
	"github.com/joelkehle/transformation-dashboard/internal/painpoints"
)

const (
	defaultSolution       = "AI-powered automation solution"
	defaultExpectedImpact = "Significant operational improvement"
	defaultSolutionScore  = 7
)

// Challenge is a prioritized challenge as shown in the executive summary.
type Challenge struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Severity          int      `json:"severity"`
	Manifestations    []string `json:"manifestations"`
	IndustryRelevance string   `json:"industryRelevance"`
	Addressable       bool     `json:"addressable"`
}

type ExecutiveSummary struct {
	BusinessSummary       string                          `json:"businessSummary"`
	PainPoints            []painpoints.ProcessedPainPoint `json:"painPoints"`
	PrioritizedChallenges []Challenge                     `json:"prioritizedChallenges"`
	ChallengeSolutions    []narrative.ChallengeSolution   `json:"challengeSolutions"`
	ProblemStatement      string                          `json:"problemStatement"`
	PartnershipProposals  []string                        `json:"partnershipProposals"`
	TimingPoints          []string                        `json:"timingPoints"`
}

// BuildExecutiveSummary combines the analysis with generated narrative, falling
// back to templated text wherever the narrative has nothing.
func BuildExecutiveSummary(company analysis.CompanyData, challenges []analysis.BusinessChallenge, insights analysis.IndustryInsights, content narrative.Content) ExecutiveSummary {
	es := content.ExecutiveSummaryContent
	strategies := analysis.Strategies(company.AIOpportunities)

	summary := ExecutiveSummary{
		BusinessSummary: firstNonEmpty(
			es.BusinessContextSummary,
			content.CompanyContext,
			fmt.Sprintf("%s operates in the %s industry, providing solutions to address industry challenges.", company.CompanyName, company.Industry),
		),
		PainPoints: painpoints.PrioritizeTop(painPointSource(company, challenges, insights, content), strategies),
	}

	if len(es.PrioritizedChallenges) > 0 {
		summary.PrioritizedChallenges = generatedChallenges(es.PrioritizedChallenges, strategies)
	} else {
		summary.PrioritizedChallenges = fallbackChallenges(summary.PainPoints, company.Industry)
	}

	if len(es.ChallengeSolutions) > 0 {
		summary.ChallengeSolutions = es.ChallengeSolutions
	} else {
		summary.ChallengeSolutions = matchSolutions(summary.PrioritizedChallenges, company.AIOpportunities)
	}

	summary.ProblemStatement = firstNonEmpty(es.ProblemStatement,
		fmt.Sprintf("%s's %s team faces significant challenges that require substantial manual effort that could be better spent advancing strategic initiatives directly.", company.CompanyName, company.Industry))
	summary.PartnershipProposals = firstNonEmptyList(es.PartnershipProposals, []string{
		fmt.Sprintf("Develop an AI-powered system that monitors and analyzes %s data", company.Industry),
		"Reclaim significant staff time through automation",
		"Enable monitoring of additional metrics and KPIs",
		"Help shift the team to a more proactive stance",
		"Strengthen stakeholder relationships through comprehensive coverage",
	})
	summary.TimingPoints = firstNonEmptyList(es.TimingPoints, []string{
		fmt.Sprintf("%s competitors are increasingly adopting AI solutions", company.Industry),
		"Staff currently turn down strategic opportunities due to time constraints",
		"Implementing this solution now enables influencing upcoming business cycles",
		fmt.Sprintf("Early adoption provides competitive advantage in the %s market", company.Industry),
	})
	return summary
}

// painPointSource picks the pain points to rank: industry insights, then the
// proposal, then the backend's business challenges, then the narrative's key
// business challenges.
func painPointSource(company analysis.CompanyData, challenges []analysis.BusinessChallenge, insights analysis.IndustryInsights, content narrative.Content) []painpoints.RawPainPoint {
	bundle := analysis.Bundle{Company: company, Insights: insights}
	if raw := bundle.PainPointSource(); len(raw) > 0 {
		return raw
	}
	if len(challenges) > 0 {
		raw := make([]painpoints.RawPainPoint, 0, len(challenges))
		for i, c := range challenges {
			raw = append(raw, painpoints.RawPainPoint{
				"id":              fmt.Sprintf("business-challenge-%d", i),
				"title":           firstNonEmpty(c.Name, c.Description),
				"description":     firstNonEmpty(c.Description, c.Name),
				"typicalSeverity": painpoints.DefaultSeverity,
			})
		}
		return raw
	}
	raw := make([]painpoints.RawPainPoint, 0, len(content.KeyBusinessChallenges))
	for i, c := range content.KeyBusinessChallenges {
		raw = append(raw, painpoints.RawPainPoint{
			"id":              fmt.Sprintf("challenge-%d", i),
			"title":           c,
			"description":     c,
			"typicalSeverity": painpoints.DefaultSeverity,
		})
	}
	return raw
}

func generatedChallenges(in []narrative.PrioritizedChallenge, strategies []painpoints.Strategy) []Challenge {
	raw := make([]painpoints.RawPainPoint, len(in))
	for i, c := range in {
		manifestations := make([]any, len(c.Manifestations))
		for j, m := range c.Manifestations {
			manifestations[j] = m
		}
		raw[i] = painpoints.RawPainPoint{
			"id":                   fmt.Sprintf("challenge-%d", i),
			"title":                c.Title,
			"description":          c.Description,
			"typicalSeverity":      int(c.Severity),
			"commonManifestations": manifestations,
			"industryRelevance":    c.IndustryRelevance,
		}
	}
	return challengesFrom(painpoints.Process(raw, strategies))
}

func fallbackChallenges(points []painpoints.ProcessedPainPoint, industry string) []Challenge {
	out := challengesFrom(points)
	for i := range out {
		out[i].Manifestations = []string{fmt.Sprintf("Common issue in %s companies", industry)}
		out[i].IndustryRelevance = fmt.Sprintf("Affects 70%% of %s organizations", industry)
	}
	return out
}

// challengesFrom converts processed pain points, highest severity first.
func challengesFrom(points []painpoints.ProcessedPainPoint) []Challenge {
	out := make([]Challenge, len(points))
	for i, p := range points {
		out[i] = Challenge{
			ID:                p.ID,
			Title:             p.Title,
			Description:       p.Description,
			Severity:          p.Severity,
			Manifestations:    p.Manifestations,
			IndustryRelevance: p.IndustryRelevance,
			Addressable:       p.HasRelevantStrategies,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	return out
}

// matchSolutions pairs each challenge with the first opportunity whose title
// contains the challenge title's first word.
func matchSolutions(challenges []Challenge, opps []analysis.Opportunity) []narrative.ChallengeSolution {
	out := make([]narrative.ChallengeSolution, 0, len(challenges))
	for _, c := range challenges {
		sol := narrative.ChallengeSolution{
			Challenge:      c.Title,
			Solution:       defaultSolution,
			RelevanceScore: defaultSolutionScore,
			ExpectedImpact: defaultExpectedImpact,
		}
		if o, ok := matchOpportunity(c.Title, opps); ok {
			sol.Solution = firstNonEmpty(o.Title, defaultSolution)
			if o.CombinedScore != nil && *o.CombinedScore != 0 {
				sol.RelevanceScore = *o.CombinedScore
			}
			sol.ExpectedImpact = firstNonEmpty(o.Impact, defaultExpectedImpact)
		}
		out = append(out, sol)
	}
	return out
}

func matchOpportunity(title string, opps []analysis.Opportunity) (analysis.Opportunity, bool) {
	words := strings.Fields(strings.ToLower(title))
	if len(words) == 0 {
		return analysis.Opportunity{}, false
	}
	for _, o := range opps {
		if strings.Contains(strings.ToLower(o.Title), words[0]) {
			return o, true
		}
	}
	return analysis.Opportunity{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptyList(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return []string{}
}
