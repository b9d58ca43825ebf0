package analysis

import "sort"

type Quadrant string

const (
	QuadrantQuickWins     Quadrant = "quick-wins"
	QuadrantMajorProjects Quadrant = "major-projects"
	QuadrantLowPriority   Quadrant = "low-priority"
	QuadrantAvoid         Quadrant = "avoid"
)

// Quadrants lists the prioritization matrix cells in priority order.
var Quadrants = []Quadrant{QuadrantQuickWins, QuadrantMajorProjects, QuadrantLowPriority, QuadrantAvoid}

type QuadrantInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func matrixScore(level string) int {
	switch level {
	case LevelHigh:
		return 75
	case LevelMedium, "":
		return 50
	default:
		return 25
	}
}

// QuadrantFor places an opportunity on the impact/complexity matrix. Missing
// levels count as Medium.
func QuadrantFor(o Opportunity) Quadrant {
	impact := matrixScore(o.Impact)
	complexity := matrixScore(o.Complexity)
	switch {
	case impact >= 50 && complexity < 50:
		return QuadrantQuickWins
	case impact >= 50:
		return QuadrantMajorProjects
	case complexity < 50:
		return QuadrantLowPriority
	default:
		return QuadrantAvoid
	}
}

// Priority ranks quadrants: 1 for quick wins through 4 for avoid.
func (q Quadrant) Priority() int {
	for i, v := range Quadrants {
		if v == q {
			return i + 1
		}
	}
	return len(Quadrants)
}

// Info returns the display name, description and theme colour of the quadrant.
func (q Quadrant) Info(theme Theme) QuadrantInfo {
	switch q {
	case QuadrantQuickWins:
		return QuadrantInfo{Name: "Quick Wins", Description: "High Impact, Low Complexity", Color: theme.Primary}
	case QuadrantMajorProjects:
		return QuadrantInfo{Name: "Major Projects", Description: "High Impact, High Complexity", Color: theme.Secondary}
	case QuadrantLowPriority:
		return QuadrantInfo{Name: "Low Priority", Description: "Low Impact, Low Complexity", Color: theme.Tertiary}
	case QuadrantAvoid:
		return QuadrantInfo{Name: "Avoid", Description: "Low Impact, High Complexity", Color: theme.Quaternary}
	default:
		return QuadrantInfo{Name: "Unknown", Color: theme.Gray}
	}
}

func impactRank(level string) int {
	switch level {
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	default:
		return 1
	}
}

// RankedOpportunity is an opportunity annotated with its matrix placement.
type RankedOpportunity struct {
	Opportunity
	Quadrant Quadrant `json:"quadrant"`
}

// TopStrategies orders opportunities by quadrant priority, then impact, and
// returns the first n. Ties keep input order.
func TopStrategies(opps []Opportunity, n int) []RankedOpportunity {
	ranked := make([]RankedOpportunity, len(opps))
	for i, o := range opps {
		ranked[i] = RankedOpportunity{Opportunity: o, Quadrant: QuadrantFor(o)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := ranked[i].Quadrant.Priority(), ranked[j].Quadrant.Priority()
		if pi != pj {
			return pi < pj
		}
		return impactRank(ranked[i].Impact) > impactRank(ranked[j].Impact)
	})
	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// QuadrantCounts tallies opportunities per quadrant; every quadrant is present.
func QuadrantCounts(opps []Opportunity) map[Quadrant]int {
	out := make(map[Quadrant]int, len(Quadrants))
	for _, q := range Quadrants {
		out[q] = 0
	}
	for _, o := range opps {
		out[QuadrantFor(o)]++
	}
	return out
}
