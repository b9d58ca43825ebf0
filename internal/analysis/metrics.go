package analysis

import "math"

var (
	complexityScores = map[string]int{LevelLow: 100, LevelMedium: 60, LevelHigh: 20}
	impactScores     = map[string]int{LevelHigh: 100, LevelMedium: 60, LevelLow: 20}
	timeframeScores  = map[string]int{TimeframeShort: 100, TimeframeMedium: 60, TimeframeLong: 20}
	impactBarWidths  = map[string]int{LevelHigh: 100, LevelMedium: 70, LevelLow: 40}
)

const unknownLevelScore = 50

// OverviewMetrics are the three headline scores of the overview tab, each 0-100.
type OverviewMetrics struct {
	ImplementationEase int `json:"implementationEase"`
	ImpactPotential    int `json:"impactPotential"`
	TimeToValue        int `json:"timeToValue"`
}

func ComputeOverviewMetrics(opps []Opportunity) OverviewMetrics {
	return OverviewMetrics{
		ImplementationEase: ImplementationEase(opps),
		ImpactPotential:    ImpactPotential(opps),
		TimeToValue:        TimeToValue(opps),
	}
}

// ImplementationEase averages complexity scores; low complexity scores highest.
func ImplementationEase(opps []Opportunity) int {
	return averageScore(opps, complexityScores, func(o Opportunity) string { return o.Complexity })
}

func ImpactPotential(opps []Opportunity) int {
	return averageScore(opps, impactScores, func(o Opportunity) string { return o.Impact })
}

func TimeToValue(opps []Opportunity) int {
	return averageScore(opps, timeframeScores, func(o Opportunity) string { return o.Timeframe })
}

// ImpactBarWidth is the percentage width of the impact bar on a strategy card.
func ImpactBarWidth(o Opportunity) int {
	return levelScore(impactBarWidths, o.Impact)
}

func averageScore(opps []Opportunity, scores map[string]int, field func(Opportunity) string) int {
	if len(opps) == 0 {
		return 0
	}
	total := 0
	for _, o := range opps {
		total += levelScore(scores, field(o))
	}
	return int(math.Round(float64(total) / float64(len(opps))))
}

func levelScore(scores map[string]int, level string) int {
	if s, ok := scores[level]; ok {
		return s
	}
	return unknownLevelScore
}

// LevelCounts tallies opportunities per level of one attribute.
func LevelCounts(opps []Opportunity, field func(Opportunity) string) map[string]int {
	out := map[string]int{}
	for _, o := range opps {
		out[field(o)]++
	}
	return out
}
