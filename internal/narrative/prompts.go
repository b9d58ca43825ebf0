package narrative

import (
	"fmt"
	"strings"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
)

type promptKind string

const (
	promptContext       promptKind = "context"
	promptPainPoints    promptKind = "pain_points"
	promptOpportunities promptKind = "opportunities"
)

const (
	defaultBusinessContext = "The company operates in the technology sector."
	defaultIndustry        = "Technology"
	defaultPainPointText   = "Industry-wide operational inefficiencies and data management challenges."
)

func businessContext(c analysis.CompanyData) string {
	if s := strings.TrimSpace(c.BusinessContext); s != "" {
		return s
	}
	return defaultBusinessContext
}

func industry(c analysis.CompanyData) string {
	if s := strings.TrimSpace(c.Industry); s != "" {
		return s
	}
	return defaultIndustry
}

func contextPrompt(c analysis.CompanyData) string {
	return fmt.Sprintf(`Using only the business context below, write a concise 2-3 line statement describing what the company does, for the executive summary of an AI transformation plan read by C-level executives.

The statement must:
- name the company's core products or services specifically
- describe the business model (subscription, freemium, marketplace, ad-supported, ...)
- mention the primary customers or target market when known
- avoid buzzwords such as "digital transformation" or "business optimization"
- not describe the company as an AI or consulting firm unless it is one
- not invent facts missing from the context

Business context:
%s`, businessContext(c))
}

func painPointsPrompt(c analysis.CompanyData) string {
	return fmt.Sprintf(`Extract 3-4 common industry pain points from the business context below that AI could address well. Prefer challenges typical of the industry over company-specific ones.

Business context:
%s

Industry:
%s

Write each pain point on its own line starting with a dash (-), in direct declarative language, with quantifiable impact where possible.`, businessContext(c), industry(c))
}

func opportunitiesPrompt(c analysis.CompanyData, challenges []analysis.BusinessChallenge) string {
	return fmt.Sprintf(`Using the business context and industry pain points below, propose 3-4 high-impact strategic AI opportunities for this company.

Business context:
%s

Industry:
%s

Common industry pain points:
%s

Write each opportunity on its own line starting with a dash (-). Begin with an action verb, name a concrete AI-powered solution tied to one of the pain points and state a quantifiable benefit such as "reducing costs by 30%%".`, businessContext(c), industry(c), painPointLines(c, challenges))
}

// painPointLines lists the pain points the opportunities prompt builds on: the
// proposal's possible pain points, else the business challenges, else a generic
// statement.
func painPointLines(c analysis.CompanyData, challenges []analysis.BusinessChallenge) string {
	var lines []string
	for _, pp := range c.PossiblePainPoints {
		for _, key := range []string{"description", "title"} {
			if s, _ := pp[key].(string); strings.TrimSpace(s) != "" {
				lines = append(lines, s)
				break
			}
		}
	}
	if len(lines) == 0 {
		for _, ch := range challenges {
			switch {
			case ch.Description != "":
				lines = append(lines, ch.Description)
			case ch.Name != "":
				lines = append(lines, ch.Name)
			}
		}
	}
	if len(lines) == 0 {
		return defaultPainPointText
	}
	return strings.Join(lines, "\n")
}
