package painpoints

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FindRelevant returns the strategies, in input order, that carry a relevance
// record for painPointID scoring at least RelevanceThreshold.
func FindRelevant(painPointID string, strategies []Strategy) []Strategy {
	out := []Strategy{}
	for _, s := range strategies {
		if addresses(s, painPointID) {
			out = append(out, s)
		}
	}
	return out
}

func addresses(s Strategy, painPointID string) bool {
	for _, rel := range s.PainPointRelevances {
		if rel.PainPointID == painPointID && rel.RelevanceScore >= RelevanceThreshold {
			return true
		}
	}
	return false
}

// Process normalizes raw pain points and annotates each with its relevant strategies.
func Process(raw []RawPainPoint, strategies []Strategy, opts ...Option) []ProcessedPainPoint {
	normalized := Normalize(raw, opts...)
	out := make([]ProcessedPainPoint, len(normalized))
	for i, p := range normalized {
		relevant := FindRelevant(p.ID, strategies)
		out[i] = ProcessedPainPoint{
			NormalizedPainPoint:     p,
			RelevantStrategies:      relevant,
			RelevantStrategiesCount: len(relevant),
			HasRelevantStrategies:   len(relevant) > 0,
		}
	}
	return out
}

// Prioritize ranks pain points and returns at most maxPoints of them.
//
// Order: addressable pain points first, then higher severity, then (when both are
// addressable) more relevant strategies, then title in collation order.
// A maxPoints of zero or less yields an empty result.
func Prioritize(raw []RawPainPoint, strategies []Strategy, maxPoints int, opts ...Option) []ProcessedPainPoint {
	processed := Process(raw, strategies, opts...)
	Sort(processed)
	if maxPoints < 0 {
		maxPoints = 0
	}
	if maxPoints < len(processed) {
		processed = processed[:maxPoints]
	}
	return processed
}

// PrioritizeTop is Prioritize with DefaultMaxPoints.
func PrioritizeTop(raw []RawPainPoint, strategies []Strategy, opts ...Option) []ProcessedPainPoint {
	return Prioritize(raw, strategies, DefaultMaxPoints, opts...)
}

// Sort orders processed pain points in place by priority. Equal elements keep
// their relative order.
func Sort(points []ProcessedPainPoint) {
	col := collate.New(language.English)
	sort.SliceStable(points, func(i, j int) bool {
		return less(col, points[i], points[j])
	})
}

func less(col *collate.Collator, a, b ProcessedPainPoint) bool {
	if a.HasRelevantStrategies != b.HasRelevantStrategies {
		return a.HasRelevantStrategies
	}
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	if a.HasRelevantStrategies && b.HasRelevantStrategies && a.RelevantStrategiesCount != b.RelevantStrategiesCount {
		return a.RelevantStrategiesCount > b.RelevantStrategiesCount
	}
	return col.CompareString(a.Title, b.Title) < 0
}
