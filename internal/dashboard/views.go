package dashboard

import (
	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/painpoints"
)

const (
	topStrategyCount    = 3
	topRelevanceCount   = 3
	allPainPointsMax    = 1000
	maxPainPointsParam  = allPainPointsMax
	defaultPainPointMax = painpoints.DefaultMaxPoints
)

// View holds every dashboard tab for one company.
type View struct {
	Company            string                          `json:"company"`
	CompanyName        string                          `json:"companyName"`
	CompanyURL         string                          `json:"companyUrl"`
	Industry           string                          `json:"industry"`
	Overview           OverviewTab                     `json:"overview"`
	Strategies         []StrategyCard                  `json:"strategies"`
	PainPoints         []painpoints.ProcessedPainPoint `json:"painPoints"`
	Insights           InsightsTab                     `json:"insights"`
	BusinessChallenges []painpoints.ProcessedPainPoint `json:"businessChallenges"`
	Settings           SettingsTab                     `json:"settings"`
}

type OverviewTab struct {
	Metrics              analysis.OverviewMetrics  `json:"metrics"`
	BusinessContext      string                    `json:"businessContext"`
	RecommendedApproach  string                    `json:"recommendedApproach"`
	CategoryDistribution []analysis.CategoryShare  `json:"categoryDistribution"`
	QuadrantCounts       map[analysis.Quadrant]int `json:"quadrantCounts"`
	TopStrategies        []StrategyCard            `json:"topStrategies"`
	NextSteps            []string                  `json:"nextSteps"`
}

// StrategyCard is an opportunity with its matrix placement and strongest pain
// point links.
type StrategyCard struct {
	analysis.Opportunity
	Quadrant       analysis.Quadrant             `json:"quadrant"`
	QuadrantInfo   analysis.QuadrantInfo         `json:"quadrantInfo"`
	ImpactBarWidth int                           `json:"impactBarWidth"`
	CategoryID     string                        `json:"categoryId"`
	CategoryName   string                        `json:"categoryName"`
	TopRelevances  []analysis.PainPointRelevance `json:"topRelevances"`
}

type InsightsTab struct {
	Industry string   `json:"industry"`
	Insights []string `json:"insights"`
}

type SettingsTab struct {
	Theme       string   `json:"theme"`
	Themes      []string `json:"themes"`
	CompanyName string   `json:"companyName"`
	CompanyURL  string   `json:"companyUrl"`
}

// BuildView derives the dashboard tabs from a company bundle. maxPainPoints caps
// the pain points tab; the business challenges tab lists every pain point.
func BuildView(company string, b analysis.Bundle, themeName string, maxPainPoints int) View {
	theme := analysis.ThemeByName(themeName)
	data := b.Company
	opps := data.AIOpportunities
	strategies := analysis.Strategies(opps)
	source := b.PainPointSource()

	cards := make([]StrategyCard, len(opps))
	for i, o := range opps {
		cards[i] = strategyCard(o, analysis.QuadrantFor(o), theme)
	}
	top := analysis.TopStrategies(opps, topStrategyCount)
	topCards := make([]StrategyCard, len(top))
	for i, r := range top {
		topCards[i] = strategyCard(r.Opportunity, r.Quadrant, theme)
	}

	insights := b.Insights.IndustryInsights
	if insights == nil {
		insights = []string{}
	}
	nextSteps := data.NextSteps
	if nextSteps == nil {
		nextSteps = []string{}
	}

	return View{
		Company:     company,
		CompanyName: data.CompanyName,
		CompanyURL:  data.CompanyURL,
		Industry:    data.Industry,
		Overview: OverviewTab{
			Metrics:              analysis.ComputeOverviewMetrics(opps),
			BusinessContext:      data.BusinessContext,
			RecommendedApproach:  data.RecommendedApproach,
			CategoryDistribution: analysis.CategoryDistribution(opps, theme),
			QuadrantCounts:       analysis.QuadrantCounts(opps),
			TopStrategies:        topCards,
			NextSteps:            nextSteps,
		},
		Strategies:         cards,
		PainPoints:         painpoints.Prioritize(source, strategies, maxPainPoints),
		BusinessChallenges: painpoints.Prioritize(source, strategies, allPainPointsMax),
		Insights: InsightsTab{
			Industry: firstNonEmpty(b.Insights.Industry, data.Industry),
			Insights: insights,
		},
		Settings: SettingsTab{
			Theme:       theme.Name,
			Themes:      analysis.ThemeNames(),
			CompanyName: data.CompanyName,
			CompanyURL:  data.CompanyURL,
		},
	}
}

func strategyCard(o analysis.Opportunity, q analysis.Quadrant, theme analysis.Theme) StrategyCard {
	category := analysis.CategoryFor(o)
	return StrategyCard{
		Opportunity:    o,
		Quadrant:       q,
		QuadrantInfo:   q.Info(theme),
		ImpactBarWidth: analysis.ImpactBarWidth(o),
		CategoryID:     category.ID,
		CategoryName:   category.Name,
		TopRelevances:  analysis.TopRelevances(o.PainPointRelevances, topRelevanceCount),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
