// Package analysis holds the company analysis documents produced by the backend
// and the derived views the dashboard and report render from them.
package analysis

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/joelkehle/transformation-dashboard/internal/painpoints"
)

const (
	LevelHigh   = "High"
	LevelMedium = "Medium"
	LevelLow    = "Low"
)

const (
	TimeframeShort  = "Short-term"
	TimeframeMedium = "Medium-term"
	TimeframeLong   = "Long-term"
)

const FinalProposalFile = "final_proposal.json"

type PainPointRelevance struct {
	PainPointID         string  `json:"painPointId"`
	RelevanceScore      float64 `json:"relevanceScore"`
	Explanation         string  `json:"explanation"`
	ExpectedImprovement string  `json:"expectedImprovement"`
}

type BusinessChallengeRelevance struct {
	ChallengeID         string  `json:"challengeId"`
	RelevanceScore      float64 `json:"relevanceScore"`
	Explanation         string  `json:"explanation"`
	ExpectedImprovement string  `json:"expectedImprovement"`
}

// Opportunity is one AI transformation strategy recommended for a company.
type Opportunity struct {
	ID                            string                       `json:"id"`
	Title                         string                       `json:"title"`
	Description                   string                       `json:"description"`
	Impact                        string                       `json:"impact"`
	Complexity                    string                       `json:"complexity"`
	Timeframe                     string                       `json:"timeframe"`
	KeyBenefits                   []string                     `json:"keyBenefits,omitempty"`
	ImplementationSteps           []string                     `json:"implementationSteps,omitempty"`
	ResourceRequirements          []string                     `json:"resourceRequirements,omitempty"`
	RiskFactors                   []string                     `json:"riskFactors,omitempty"`
	MitigationStrategies          []string                     `json:"mitigationStrategies,omitempty"`
	TechnicalChallenges           []string                     `json:"technicalChallenges,omitempty"`
	ValidationScore               *float64                     `json:"validationScore,omitempty"`
	FeasibilityScore              *float64                     `json:"feasibilityScore,omitempty"`
	CombinedScore                 *float64                     `json:"combinedScore,omitempty"`
	OpportunityScore              *float64                     `json:"opportunityScore,omitempty"`
	Category                      string                       `json:"category,omitempty"`
	ROI                           string                       `json:"roi,omitempty"`
	EstimatedCost                 string                       `json:"estimatedCost,omitempty"`
	EstimatedTimeToImplementation string                       `json:"estimatedTimeToImplementation,omitempty"`
	PainPointRelevances           []PainPointRelevance         `json:"painPointRelevances,omitempty"`
	BusinessChallengeRelevances   []BusinessChallengeRelevance `json:"businessChallengeRelevances,omitempty"`
}

// Strategy converts the opportunity into the shape the pain point matcher reads.
func (o Opportunity) Strategy() painpoints.Strategy {
	rels := make([]painpoints.Relevance, len(o.PainPointRelevances))
	for i, r := range o.PainPointRelevances {
		rels[i] = painpoints.Relevance{
			PainPointID:         r.PainPointID,
			RelevanceScore:      r.RelevanceScore,
			Explanation:         r.Explanation,
			ExpectedImprovement: r.ExpectedImprovement,
		}
	}
	return painpoints.Strategy{ID: o.ID, Title: o.Title, PainPointRelevances: rels}
}

// Strategies converts a list of opportunities for the pain point matcher.
func Strategies(opps []Opportunity) []painpoints.Strategy {
	out := make([]painpoints.Strategy, len(opps))
	for i, o := range opps {
		out[i] = o.Strategy()
	}
	return out
}

// CompanyData is the final proposal document for one company.
type CompanyData struct {
	CompanyName         string                    `json:"companyName"`
	CompanyURL          string                    `json:"companyUrl"`
	Industry            string                    `json:"industry"`
	BusinessContext     string                    `json:"businessContext"`
	AIOpportunities     []Opportunity             `json:"aiOpportunities"`
	RecommendedApproach string                    `json:"recommendedApproach"`
	NextSteps           []string                  `json:"nextSteps"`
	PossiblePainPoints  painpoints.RawPainPoints  `json:"possiblePainPoints,omitempty"`
}

type IndustryInsights struct {
	Industry           string                    `json:"industry"`
	IndustryInsights   []string                  `json:"industryInsights"`
	PossiblePainPoints painpoints.RawPainPoints  `json:"possiblePainPoints,omitempty"`
}

type BusinessChallenge struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    int    `json:"priority,omitempty"`
}

// BusinessChallenges decodes the challenge list, which the backend writes either as
// objects or as plain strings. Strings become challenges carrying only a name.
func BusinessChallenges(data []byte) ([]BusinessChallenge, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	out := make([]BusinessChallenge, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			out = append(out, BusinessChallenge{Name: name})
			continue
		}
		var c BusinessChallenge
		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type CacheFile struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Created string `json:"created"`
}

// CacheStatus reports which analysis files the backend holds for a company.
type CacheStatus struct {
	Exists    bool        `json:"exists"`
	CompanyID string      `json:"companyId,omitempty"`
	Files     []CacheFile `json:"files,omitempty"`
	CachePath string      `json:"cachePath,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// HasFinalProposal reports whether the analysis has finished.
func (s CacheStatus) HasFinalProposal() bool {
	for _, f := range s.Files {
		if f.Name == FinalProposalFile {
			return true
		}
	}
	return false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CompanyID is the path-safe identifier the backend files a company under.
func CompanyID(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}

// Bundle is everything the dashboard and report read for one company.
type Bundle struct {
	Company    CompanyData         `json:"company"`
	Insights   IndustryInsights    `json:"insights"`
	Challenges []BusinessChallenge `json:"challenges"`
}

// PainPointSource returns the raw pain points to rank: industry insights when
// present, otherwise the final proposal's.
func (b Bundle) PainPointSource() []painpoints.RawPainPoint {
	if len(b.Insights.PossiblePainPoints) > 0 {
		return b.Insights.PossiblePainPoints
	}
	return b.Company.PossiblePainPoints
}
