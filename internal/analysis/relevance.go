package analysis

import "sort"

// TopRelevances returns the n highest scoring relevances without modifying rels.
func TopRelevances(rels []PainPointRelevance, n int) []PainPointRelevance {
	out := append([]PainPointRelevance(nil), rels...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	if n < 0 {
		n = 0
	}
	if n < len(out) {
		out = out[:n]
	}
	return out
}
