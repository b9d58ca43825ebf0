// Package narrative produces the LLM-written text that accompanies a company's
// analysis in the PDF report.
package narrative

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const defaultSeverity = 5

// Severity is a 1-10 challenge severity. It decodes from JSON numbers or numeric
// strings; anything else decodes as 5.
type Severity int

func (s *Severity) UnmarshalJSON(data []byte) error {
	*s = defaultSeverity
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = Severity(math.Round(f))
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
			*s = Severity(n)
		}
	}
	return nil
}

type PrioritizedChallenge struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Severity          Severity `json:"severity"`
	Manifestations    []string `json:"manifestations"`
	IndustryRelevance string   `json:"industryRelevance"`
}

// UnmarshalJSON defaults Severity to 5 only when the field is absent; an explicit
// zero is kept.
func (c *PrioritizedChallenge) UnmarshalJSON(data []byte) error {
	type plain PrioritizedChallenge
	p := plain{Severity: defaultSeverity}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = PrioritizedChallenge(p)
	return nil
}

type ChallengeSolution struct {
	Challenge      string  `json:"challenge"`
	Solution       string  `json:"solution"`
	RelevanceScore float64 `json:"relevanceScore"`
	ExpectedImpact string  `json:"expectedImpact"`
}

type ExecutiveSummaryContent struct {
	ProblemStatement       string                 `json:"problemStatement"`
	PartnershipProposals   []string               `json:"partnershipProposals"`
	TimingPoints           []string               `json:"timingPoints"`
	BusinessContextSummary string                 `json:"businessContextSummary"`
	PrioritizedChallenges  []PrioritizedChallenge `json:"prioritizedChallenges"`
	ChallengeSolutions     []ChallengeSolution    `json:"challengeSolutions"`
	IndustryTerminology    []string               `json:"industryTerminology"`
}

// Content is the narrative for one company. GeneratedAt is a Unix millisecond
// timestamp.
type Content struct {
	CompanyContext          string                  `json:"companyContext"`
	KeyBusinessChallenges   []string                `json:"keyBusinessChallenges"`
	StrategicOpportunities  []string                `json:"strategicOpportunities"`
	ExecutiveSummaryContent ExecutiveSummaryContent `json:"executiveSummaryContent"`
	GeneratedAt             int64                   `json:"generatedAt"`
}

// Decode parses content JSON and replaces missing lists with empty ones.
func Decode(data []byte) (Content, error) {
	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return Content{}, err
	}
	c.fill()
	return c, nil
}

func (c *Content) fill() {
	c.KeyBusinessChallenges = nonNil(c.KeyBusinessChallenges)
	c.StrategicOpportunities = nonNil(c.StrategicOpportunities)
	es := &c.ExecutiveSummaryContent
	es.PartnershipProposals = nonNil(es.PartnershipProposals)
	es.TimingPoints = nonNil(es.TimingPoints)
	es.IndustryTerminology = nonNil(es.IndustryTerminology)
	if es.PrioritizedChallenges == nil {
		es.PrioritizedChallenges = []PrioritizedChallenge{}
	}
	if es.ChallengeSolutions == nil {
		es.ChallengeSolutions = []ChallengeSolution{}
	}
	for i := range es.PrioritizedChallenges {
		es.PrioritizedChallenges[i].Manifestations = nonNil(es.PrioritizedChallenges[i].Manifestations)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var (
	boldTerm = regexp.MustCompile(`\*\*(.*?)\*\*`)
	listTerm = regexp.MustCompile(`- ([^:\n]+):`)
)

const maxKeyTerms = 10

// ExtractKeyTerms collects markdown bold terms and "- term:" list labels from
// text, deduplicated in order of appearance, at most ten.
func ExtractKeyTerms(text string) []string {
	terms := []string{}
	if strings.TrimSpace(text) == "" {
		return terms
	}
	seen := map[string]bool{}
	add := func(matches [][]string) {
		for _, m := range matches {
			t := strings.TrimSpace(m[1])
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			terms = append(terms, t)
		}
	}
	add(boldTerm.FindAllStringSubmatch(text, -1))
	add(listTerm.FindAllStringSubmatch(text, -1))
	if len(terms) > maxKeyTerms {
		terms = terms[:maxKeyTerms]
	}
	return terms
}

// bullets returns the dash-prefixed lines of text without their dash.
func bullets(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		if item := strings.TrimSpace(strings.TrimPrefix(line, "-")); item != "" {
			out = append(out, item)
		}
	}
	return out
}
