// Package painpoints ranks industry pain points against candidate AI strategies.
//
// Raw pain points arrive as loosely typed JSON records. Normalize turns them into a
// canonical shape, FindRelevant matches strategies to a single pain point, and
// Prioritize orders the annotated pain points and keeps the top N.
package painpoints

// RelevanceThreshold is the minimum relevance score for a strategy to count as
// addressing a pain point.
const RelevanceThreshold = 7.0

// DefaultMaxPoints is the number of pain points PrioritizeTop keeps.
const DefaultMaxPoints = 3

// DefaultSeverity is used when a raw record carries no numeric severity.
const DefaultSeverity = 5

// RawPainPoint is an untrusted pain point record as decoded from JSON.
// Recognised keys are id, title, description, typicalSeverity,
// commonManifestations and industryRelevance.
type RawPainPoint map[string]any

// RawPainPoints is a list of raw records as found in backend documents.
type RawPainPoints []RawPainPoint

// NormalizedPainPoint is a pain point with every field populated.
type NormalizedPainPoint struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Severity          int      `json:"severity"`
	Manifestations    []string `json:"manifestations"`
	IndustryRelevance string   `json:"industryRelevance"`
}

// Relevance links a strategy to a pain point.
type Relevance struct {
	PainPointID         string  `json:"painPointId"`
	RelevanceScore      float64 `json:"relevanceScore"`
	Explanation         string  `json:"explanation"`
	ExpectedImprovement string  `json:"expectedImprovement"`
}

// Strategy is the subset of an AI opportunity the matcher needs.
type Strategy struct {
	ID                  string      `json:"id"`
	Title               string      `json:"title"`
	PainPointRelevances []Relevance `json:"painPointRelevances,omitempty"`
}

// RelevanceFor returns the strongest relevance record of s for painPointID.
func (s Strategy) RelevanceFor(painPointID string) (Relevance, bool) {
	var (
		best  Relevance
		found bool
	)
	for _, rel := range s.PainPointRelevances {
		if rel.PainPointID != painPointID {
			continue
		}
		if !found || rel.RelevanceScore > best.RelevanceScore {
			best = rel
			found = true
		}
	}
	return best, found
}

// ProcessedPainPoint is a normalized pain point annotated with its matching strategies.
type ProcessedPainPoint struct {
	NormalizedPainPoint
	RelevantStrategies      []Strategy `json:"relevantStrategies"`
	RelevantStrategiesCount int        `json:"relevantStrategiesCount"`
	HasRelevantStrategies   bool       `json:"hasRelevantStrategies"`
}
