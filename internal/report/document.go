package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/narrative"
	"github.com/joelkehle/transformation-dashboard/internal/painpoints"
)

const DefaultTopOpportunities = 5

// Provider is the consultancy presenting the plan.
type Provider struct {
	Name           string
	Email          string
	Website        string
	Signatory      string
	SignatoryTitle string
}

var DefaultProvider = Provider{
	Name:           "HawkenAI",
	Email:          "info@hawkenai.com",
	Website:        "www.hawkenai.com",
	SignatoryTitle: "Founder & CEO, HawkenAI",
}

type Options struct {
	Theme    analysis.Theme
	Date     time.Time
	Provider Provider
	// TopOpportunities caps the opportunities listed on the overview page.
	TopOpportunities int
}

// Section is one top-level part of the report. Body is markdown without the
// section heading.
type Section struct {
	ID    string
	Title string
	Body  string
}

type Document struct {
	Title    string
	Company  string
	Theme    analysis.Theme
	Summary  ExecutiveSummary
	Sections []Section
}

// Markdown renders the document as GitHub-flavoured markdown, one level-two
// heading per section.
func (d Document) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Title, strings.TrimSpace(s.Body))
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Section returns the section with id.
func (d Document) Section(id string) (Section, bool) {
	for _, s := range d.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Build assembles the transformation plan for a company.
func Build(b analysis.Bundle, content narrative.Content, opts Options) Document {
	if opts.Theme.Name == "" {
		opts.Theme = analysis.ThemeByName(analysis.DefaultTheme)
	}
	if opts.Date.IsZero() {
		opts.Date = time.Now()
	}
	if opts.Provider.Name == "" {
		opts.Provider = DefaultProvider
	}
	if opts.TopOpportunities <= 0 {
		opts.TopOpportunities = DefaultTopOpportunities
	}

	company := b.Company
	summary := BuildExecutiveSummary(company, b.Challenges, b.Insights, content)
	ranked := rankByCombinedScore(company.AIOpportunities)
	titles := painPointTitles(b, summary)

	body := []Section{
		{ID: "executive-summary", Title: "Executive Summary", Body: executiveSummarySection(company, summary)},
		{ID: "top-opportunities", Title: "Top AI Opportunities", Body: topOpportunitiesSection(ranked, opts)},
		{ID: "strategy-matrix", Title: "Strategy Prioritization Matrix", Body: matrixSection(company.AIOpportunities, opts.Theme)},
	}
	for i, o := range ranked {
		body = append(body, Section{
			ID:    fmt.Sprintf("opportunity-%d", i+1),
			Title: firstNonEmpty(o.Title, fmt.Sprintf("Opportunity %d", i+1)),
			Body:  opportunitySection(o, titles),
		})
	}
	body = append(body,
		Section{ID: "next-steps", Title: "Next Steps & Action Plan", Body: nextStepsSection(company)},
		Section{ID: "why-us", Title: fmt.Sprintf("Why %s?", opts.Provider.Name), Body: whyUsSection(opts.Provider)},
		Section{ID: "contact", Title: "Contact", Body: contactSection(opts.Provider)},
	)

	sections := append([]Section{
		{ID: "cover-letter", Title: fmt.Sprintf("%s's AI Transformation Plan", company.CompanyName), Body: coverLetterSection(company, opts)},
		{ID: "table-of-contents", Title: "Table of Contents", Body: tableOfContents(body)},
	}, body...)

	return Document{
		Title:    fmt.Sprintf("AI Transformation Plan for %s", company.CompanyName),
		Company:  company.CompanyName,
		Theme:    opts.Theme,
		Summary:  summary,
		Sections: sections,
	}
}

func coverLetterSection(c analysis.CompanyData, opts Options) string {
	industry := firstNonEmpty(c.Industry, "your industry")
	p := opts.Provider
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", opts.Date.Format("January 2, 2006"))
	fmt.Fprintf(&b, "Dear %s Leadership Team,\n\n", c.CompanyName)
	fmt.Fprintf(&b, "Thank you for considering %s as your partner in your AI journey. We are excited about the opportunity to help %s implement transformative AI solutions that could deliver significant business impact and competitive advantage in the %s sector.\n\n", p.Name, c.CompanyName, industry)
	b.WriteString("Our team is uniquely positioned to assist you in creating an AI-powered solution that will reclaim valuable time, streamline operations, and enable comprehensive business transformation. By leveraging large language models and other AI capabilities, we can help you solve complex problems, enhance decision-making processes, and unlock new opportunities for growth and innovation.\n\n")
	b.WriteString("We specialize in innovative AI software that delivers significant, measurable results. Our solutions are designed to integrate seamlessly with your existing systems and processes, minimizing disruption while maximizing impact. With our expertise in a full-service AI consultancy, we can provide tailored recommendations that address your most pressing needs.\n\n")
	b.WriteString("Please find below our detailed proposal outlining our understanding of your needs, our proposed approach, and how we can help you achieve your objectives. The solution will naturally evolve with your feedback and based on conversations with your team.\n\n")
	b.WriteString("Sincerely,\n\n")
	if p.Signatory != "" {
		fmt.Fprintf(&b, "**%s**  \n", p.Signatory)
	}
	fmt.Fprintf(&b, "%s  \n%s\n", firstNonEmpty(p.SignatoryTitle, p.Name), p.Email)
	return b.String()
}

// tableOfContents numbers each section and its level-three headings.
func tableOfContents(sections []Section) string {
	var b strings.Builder
	for i, s := range sections {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, s.Title)
		n := 0
		for _, line := range strings.Split(s.Body, "\n") {
			if title, ok := strings.CutPrefix(line, "### "); ok {
				n++
				fmt.Fprintf(&b, "    - %d.%d %s\n", i+1, n, strings.TrimSpace(title))
			}
		}
	}
	return b.String()
}

func executiveSummarySection(c analysis.CompanyData, s ExecutiveSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Company's Mission\n\n%s\n\n", s.BusinessSummary)

	b.WriteString("### Common Industry Pain Points\n\n")
	b.WriteString("Based on industry analysis, companies with similar profiles often face these challenges. Our AI strategy recommendations are designed to address these potential pain points.\n\n")
	shown := 0
	for _, ch := range s.PrioritizedChallenges {
		if strings.TrimSpace(ch.Title) == "" {
			continue
		}
		shown++
		fmt.Fprintf(&b, "#### %s\n\n", ch.Title)
		badge := fmt.Sprintf("Severity: %d/10", clampSeverity(ch.Severity))
		if ch.Addressable {
			badge += " · **Addressable**"
		}
		fmt.Fprintf(&b, "%s\n\n", badge)
		if ch.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", ch.Description)
		}
		writeBullets(&b, ch.Manifestations)
		if ch.IndustryRelevance != "" {
			fmt.Fprintf(&b, "_%s_\n\n", ch.IndustryRelevance)
		}
	}
	if shown == 0 {
		b.WriteString("_No specific pain points identified for your industry._\n\n")
	}

	if len(s.PainPoints) > 0 {
		b.WriteString("### Addressable Pain Points\n\n")
		b.WriteString("| Pain point | Severity | Addressed by |\n|---|---|---|\n")
		for _, p := range s.PainPoints {
			fmt.Fprintf(&b, "| %s | %d/10 | %s |\n", cell(p.Title), clampSeverity(p.Severity), cell(strategyTitles(p.RelevantStrategies)))
		}
		b.WriteString("\n")
	}

	b.WriteString("### Recommended AI Solutions\n\n")
	groups := groupSolutions(s.ChallengeSolutions)
	if len(groups) == 0 {
		b.WriteString("_No AI solutions have been identified yet._\n\n")
	}
	for _, g := range groups {
		fmt.Fprintf(&b, "**%s**\n\n", g.challenge)
		for _, sol := range g.solutions {
			fmt.Fprintf(&b, "- %s (relevance %s)\n", sol.Solution, formatScore(sol.RelevanceScore))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "### The Challenge\n\n%s\n\n", s.ProblemStatement)
	b.WriteString("### Our Proposal\n\n")
	writeBullets(&b, s.PartnershipProposals)
	b.WriteString("### The timing is critical as:\n\n")
	writeBullets(&b, s.TimingPoints)
	fmt.Fprintf(&b, "> By implementing these AI solutions, %s can transform operational challenges into strategic advantages, improving efficiency, reducing costs, and enhancing customer experiences.\n", c.CompanyName)
	return b.String()
}

type solutionGroup struct {
	challenge string
	solutions []narrative.ChallengeSolution
}

// groupSolutions groups solutions by challenge in first-seen order, dropping
// blank challenges and solutions.
func groupSolutions(sols []narrative.ChallengeSolution) []solutionGroup {
	var out []solutionGroup
	index := map[string]int{}
	for _, s := range sols {
		if strings.TrimSpace(s.Challenge) == "" || strings.TrimSpace(s.Solution) == "" {
			continue
		}
		i, ok := index[s.Challenge]
		if !ok {
			i = len(out)
			index[s.Challenge] = i
			out = append(out, solutionGroup{challenge: s.Challenge})
		}
		out[i].solutions = append(out[i].solutions, s)
	}
	return out
}

func topOpportunitiesSection(ranked []analysis.Opportunity, opts Options) string {
	var b strings.Builder
	b.WriteString("Based on our analysis of your business context, industry trends, and AI capabilities, we've identified the following high-impact opportunities for your organization.\n\n")
	if len(ranked) == 0 {
		b.WriteString("No opportunities have been identified yet. Please complete the AI assessment to generate opportunities.\n")
		return b.String()
	}

	m := analysis.ComputeOverviewMetrics(ranked)
	b.WriteString("### Overview Metrics\n\n| Metric | Score |\n|---|---|\n")
	fmt.Fprintf(&b, "| Implementation ease | %d%% |\n| Impact potential | %d%% |\n| Time to value | %d%% |\n\n",
		m.ImplementationEase, m.ImpactPotential, m.TimeToValue)

	b.WriteString("### Category Distribution\n\n| Category | Opportunities | Share |\n|---|---|---|\n")
	for _, share := range analysis.CategoryDistribution(ranked, opts.Theme) {
		if share.Value == 0 {
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %d%% |\n", share.Name, share.Value, percent(share.Value, len(ranked)))
	}
	b.WriteString("\n")

	top := ranked
	if len(top) > opts.TopOpportunities {
		top = top[:opts.TopOpportunities]
	}
	fmt.Fprintf(&b, "### Top %d Opportunities\n\n", len(top))
	for i, o := range top {
		fmt.Fprintf(&b, "%d. **%s**  \n   %s  \n   Impact: %s · Complexity: %s · Timeframe: %s\n",
			i+1, o.Title, o.Description,
			firstNonEmpty(o.Impact, analysis.LevelMedium), firstNonEmpty(o.Complexity, analysis.LevelMedium), firstNonEmpty(o.Timeframe, analysis.TimeframeMedium))
	}
	return b.String()
}

func matrixSection(opps []analysis.Opportunity, theme analysis.Theme) string {
	byQuadrant := map[analysis.Quadrant][]string{}
	for _, o := range opps {
		q := analysis.QuadrantFor(o)
		byQuadrant[q] = append(byQuadrant[q], o.Title)
	}
	var b strings.Builder
	b.WriteString("Opportunities placed by impact and implementation complexity. Start with quick wins to build momentum.\n\n")
	for _, q := range analysis.Quadrants {
		info := q.Info(theme)
		fmt.Fprintf(&b, "### %s\n\n_%s_\n\n", info.Name, info.Description)
		if len(byQuadrant[q]) == 0 {
			b.WriteString("- None\n\n")
			continue
		}
		writeBullets(&b, byQuadrant[q])
	}
	return b.String()
}

func opportunitySection(o analysis.Opportunity, painPointTitles map[string]string) string {
	var b strings.Builder
	b.WriteString("### Strategic Assessment\n\n| | |\n|---|---|\n")
	if o.Category != "" {
		fmt.Fprintf(&b, "| Category | %s |\n", cell(capitalize(o.Category)))
	}
	fmt.Fprintf(&b, "| Impact | %s |\n| Complexity | %s |\n| Timeframe | %s |\n",
		cell(firstNonEmpty(o.Impact, analysis.LevelMedium)), cell(firstNonEmpty(o.Complexity, analysis.LevelMedium)), cell(firstNonEmpty(o.Timeframe, analysis.TimeframeMedium)))
	for _, score := range []struct {
		label string
		value *float64
	}{
		{"Combined score", o.CombinedScore},
		{"Validation", o.ValidationScore},
		{"Feasibility", o.FeasibilityScore},
	} {
		if score.value != nil && *score.value > 0 {
			fmt.Fprintf(&b, "| %s | %d%% |\n", score.label, int(math.Round(*score.value)))
		}
	}
	for _, row := range [][2]string{
		{"ROI", o.ROI},
		{"Estimated cost", o.EstimatedCost},
		{"Time to implement", o.EstimatedTimeToImplementation},
	} {
		if row[1] != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", row[0], cell(row[1]))
		}
	}
	b.WriteString("\n")
	if o.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", o.Description)
	}

	listSection(&b, "Key Benefits", o.KeyBenefits)
	if len(o.ImplementationSteps) > 0 {
		b.WriteString("### Implementation Steps\n\n")
		for i, step := range o.ImplementationSteps {
			head, detail, ok := strings.Cut(step, ":")
			if ok && strings.TrimSpace(detail) != "" {
				fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, strings.TrimSpace(head), strings.TrimSpace(detail))
			} else {
				fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(strings.TrimSuffix(step, ":")))
			}
		}
		b.WriteString("\n")
	}
	listSection(&b, "Resource Requirements", o.ResourceRequirements)
	listSection(&b, "Risk Factors", o.RiskFactors)
	listSection(&b, "Mitigation Strategies", o.MitigationStrategies)
	listSection(&b, "Technical Challenges", o.TechnicalChallenges)

	if rels := analysis.TopRelevances(o.PainPointRelevances, len(o.PainPointRelevances)); len(rels) > 0 {
		b.WriteString("### Pain Point Relevance\n\n| Pain point | Relevance | Expected improvement |\n|---|---|---|\n")
		for _, r := range rels {
			title := firstNonEmpty(painPointTitles[r.PainPointID], r.PainPointID)
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(title), formatScore(r.RelevanceScore), cell(r.ExpectedImprovement))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func nextStepsSection(c analysis.CompanyData) string {
	var b strings.Builder
	b.WriteString("### Overview\n\nBased on our analysis of your business needs and the identified AI opportunities, we recommend the following action plan to begin your AI transformation journey.\n\n")
	if c.RecommendedApproach != "" {
		fmt.Fprintf(&b, "### Recommended Approach\n\n%s\n\n", c.RecommendedApproach)
	}
	if len(c.NextSteps) > 0 {
		b.WriteString("### Next Steps\n\n")
		for i, s := range c.NextSteps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		b.WriteString("\n")
	}
	b.WriteString("### Timeline\n\n")
	b.WriteString("> We recommend a phased approach to implementation, starting with high-impact, low-complexity opportunities to achieve quick wins and build momentum.\n\n")
	b.WriteString("**Phase 1: Foundation (3 Months)**\n\n- Assessment and planning\n- Initial data infrastructure setup\n\n")
	b.WriteString("**Phase 2: Implementation (6 Months)**\n\n- Deploy first AI solutions\n- Train teams and iterate\n")
	return b.String()
}

func whyUsSection(p Provider) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Our Advantage\n\nPartnering with %s for your AI transformation journey offers several unique advantages.\n\n", p.Name)
	for _, group := range []struct {
		title string
		items []string
	}{
		{"Industry Expertise", []string{"Specialized knowledge across multiple industries", "Deep understanding of industry-specific challenges"}},
		{"End-to-End Implementation", []string{"From strategy to deployment and beyond", "Seamless integration with existing systems"}},
		{"Proven Methodology", []string{"Data-driven approach to AI implementation", "Rigorous validation and testing processes"}},
		{"Ongoing Support", []string{"Continuous optimization of AI solutions", "Training and knowledge transfer to your team"}},
	} {
		fmt.Fprintf(&b, "#### %s\n\n", group.title)
		writeBullets(&b, group.items)
	}
	b.WriteString("### Our Commitment\n\n")
	b.WriteString("> Let's work together to leverage the power of AI and transform your business for the future.\n\n")
	fmt.Fprintf(&b, "With %s as your partner, you'll benefit from our cutting-edge AI expertise and practical business experience. Our team will work alongside yours to ensure a successful transformation that delivers measurable results and positions your company for long-term success in an increasingly AI-driven world.\n", p.Name)
	return b.String()
}

func contactSection(p Provider) string {
	return fmt.Sprintf("**Ready to get started?**\n\nContact us at %s or visit %s\n", p.Email, p.Website)
}

// rankByCombinedScore orders opportunities by combined score, highest first.
// Unscored opportunities count as zero; ties keep input order.
func rankByCombinedScore(opps []analysis.Opportunity) []analysis.Opportunity {
	out := append([]analysis.Opportunity(nil), opps...)
	score := func(o analysis.Opportunity) float64 {
		if o.CombinedScore == nil {
			return 0
		}
		return *o.CombinedScore
	}
	sort.SliceStable(out, func(i, j int) bool { return score(out[i]) > score(out[j]) })
	return out
}

// painPointTitles maps every known pain point id to its title.
func painPointTitles(b analysis.Bundle, s ExecutiveSummary) map[string]string {
	out := map[string]string{}
	for _, p := range painpoints.Normalize(b.PainPointSource()) {
		out[p.ID] = p.Title
	}
	for _, p := range s.PainPoints {
		out[p.ID] = p.Title
	}
	return out
}

func strategyTitles(ss []painpoints.Strategy) string {
	if len(ss) == 0 {
		return "-"
	}
	titles := make([]string, len(ss))
	for i, s := range ss {
		titles[i] = firstNonEmpty(s.Title, s.ID)
	}
	return strings.Join(titles, "; ")
}

func listSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	writeBullets(b, items)
}

func writeBullets(b *strings.Builder, items []string) {
	if len(items) == 0 {
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func clampSeverity(n int) int {
	return max(1, min(10, n))
}

// formatScore shows 0-10 relevance scores out of ten and larger scores as
// percentages.
func formatScore(score float64) string {
	if score > 10 {
		return fmt.Sprintf("%d%%", int(math.Round(score)))
	}
	if score == math.Trunc(score) {
		return fmt.Sprintf("%d/10", int(score))
	}
	return fmt.Sprintf("%.1f/10", score)
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(total)))
}

// cell makes s safe inside a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
