package narrative

import (
	"fmt"
	"strings"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
)

var (
	fallbackPainPoints = []string{
		"Manual processes and workflows requiring significant time and resources",
		"Data silos preventing comprehensive insights and decision-making",
		"Customer experience inconsistencies impacting satisfaction and retention",
		"Operational inefficiencies increasing costs and reducing competitiveness",
	}
	fallbackOpportunities = []string{
		"Implement AI-powered workflow automation to reduce operational costs by 30%",
		"Deploy intelligent customer engagement platform to increase satisfaction by 40%",
		"Develop predictive analytics system to improve decision-making accuracy by 25%",
	}
)

type industryText struct {
	keywords []string
	lines    []string
}

var simulatedPainPointsByIndustry = []industryText{
	{[]string{"retail", "ecommerce"}, []string{
		"Inventory management inefficiencies common throughout the retail industry, leading to stockouts and excess costs",
		"Customer data fragmentation across retail systems preventing personalized experiences",
		"Logistics and fulfillment delays affecting the entire retail sector",
		"Price optimization complexity faced by most retailers",
	}},
	{[]string{"finance", "banking"}, []string{
		"Customer onboarding friction prevalent across financial institutions",
		"Risk assessment complexity affecting efficiency throughout the financial sector",
		"Regulatory compliance burdens impacting all financial service providers",
		"Legacy system integration challenges widespread in banking",
	}},
	{[]string{"healthcare", "health"}, []string{
		"Patient data management complexity affecting healthcare providers industry-wide",
		"Care coordination fragmentation common across the healthcare ecosystem",
		"Treatment protocol standardization challenges faced by most healthcare organizations",
		"Administrative burden reducing patient care time throughout the sector",
	}},
	{[]string{"media", "entertainment", "streaming"}, []string{
		"Content discovery limitations prevalent across streaming platforms",
		"User retention challenges common to all subscription-based media services",
		"Content recommendation accuracy issues affecting the entire streaming industry",
		"Production resource allocation complexity faced by most media companies",
	}},
	{nil, []string{
		"Manual processes and workflows requiring significant time and resources across the industry",
		"Data silos preventing comprehensive insights common in most organizations",
		"Customer experience inconsistencies prevalent throughout the sector",
		"Operational efficiency gaps widespread in the industry",
	}},
}

var simulatedOpportunitiesByIndustry = []industryText{
	{[]string{"retail", "ecommerce"}, []string{
		"Implement AI-driven inventory forecasting to reduce stockouts by 35% while decreasing holding costs",
		"Deploy personalized recommendation engine to increase average order value by 28%",
		"Create intelligent logistics optimization to reduce delivery times by 22%",
		"Develop dynamic pricing automation to improve margin by 15% while maintaining competitiveness",
	}},
	{[]string{"finance", "banking"}, []string{
		"Deploy AI-powered risk assessment to reduce manual reviews by 65% while improving accuracy",
		"Implement intelligent fraud detection to identify suspicious transactions with 92% accuracy",
		"Create automated regulatory compliance tools to reduce reporting time by 40%",
		"Develop customer segmentation AI to increase product adoption by 35%",
	}},
	{[]string{"healthcare", "health"}, []string{
		"Implement AI-assisted diagnosis support to improve detection accuracy by 28%",
		"Deploy natural language processing for medical documentation to save 15 hours weekly per provider",
		"Create predictive care models to reduce readmission rates by 32%",
		"Develop intelligent scheduling to optimize resource allocation and reduce wait times by 45%",
	}},
	{[]string{"media", "entertainment", "streaming"}, []string{
		"Deploy advanced content recommendation engine to increase viewing time by 24%",
		"Implement viewer preference analytics to reduce churn by 18%",
		"Create AI-powered content valuation to optimize production investment by 30%",
		"Develop personalized engagement features to increase user retention by 25%",
	}},
	{nil, []string{
		"Implement AI-driven document processing to reduce manual workload by 75% and increase data accuracy",
		"Deploy intelligent customer engagement platform to increase satisfaction by 42%",
		"Develop predictive analytics system to improve decision-making accuracy by 35%",
		"Create natural language processing solution to extract insights from unstructured data",
	}},
}

func pickIndustry(table []industryText, ind string) []string {
	ind = strings.ToLower(ind)
	for _, entry := range table {
		if entry.keywords == nil || containsAny(ind, entry.keywords...) {
			return append([]string(nil), entry.lines...)
		}
	}
	return nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func choose(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

// simulated returns industry-aware stand-in text for a prompt the generator
// could not answer.
func simulated(kind promptKind, c analysis.CompanyData) string {
	switch kind {
	case promptContext:
		return simulatedContext(c)
	case promptPainPoints:
		return "- " + strings.Join(pickIndustry(simulatedPainPointsByIndustry, c.Industry), "\n- ")
	case promptOpportunities:
		return "- " + strings.Join(pickIndustry(simulatedOpportunitiesByIndustry, c.Industry), "\n- ")
	}
	return "Content generated based on your business context and requirements."
}

func simulatedContext(c analysis.CompanyData) string {
	name := strings.TrimSpace(c.CompanyName)
	if name == "" {
		name = "The company"
	}
	ind := strings.ToLower(strings.TrimSpace(c.Industry))
	if ind == "" {
		ind = "technology"
	}
	has := func(s string) bool { return strings.Contains(ind, s) }

	var text string
	switch {
	case containsAny(ind, "music", "audio", "streaming"):
		text = fmt.Sprintf("%s provides digital %s streaming services%s for listeners, offering access to a wide library of audio content.",
			name, choose(has("music"), "music", "content"), choose(has("subscription"), " through subscription plans", ""))
	case containsAny(ind, "video", "entertainment", "media"):
		text = fmt.Sprintf("%s offers %s video streaming and content services, providing users with access to movies, shows, and entertainment programming.",
			name, choose(has("subscription"), "subscription-based", ""))
	case containsAny(ind, "e-commerce", "ecommerce", "retail"):
		text = fmt.Sprintf("%s operates an %s platform selling products%s to consumers and businesses.",
			name, choose(has("online"), "online", "e-commerce"), choose(has("marketplace"), " through a marketplace model", ""))
	case containsAny(ind, "software", "saas"):
		text = fmt.Sprintf("%s develops and delivers %s solutions for %s, providing tools for %s.",
			name, choose(has("saas"), "Software-as-a-Service (SaaS)", "software"),
			choose(has("business"), "business", "customers"), choose(has("productivity"), "productivity and efficiency", "digital processes"))
	case containsAny(ind, "finance", "banking", "payment"):
		text = fmt.Sprintf("%s provides %s financial services%s, helping customers manage transactions, investments, and financial resources.",
			name, choose(has("digital"), "digital", ""), choose(has("payment"), " and payment processing", ""))
	case containsAny(ind, "healthcare", "health", "medical"):
		text = fmt.Sprintf("%s offers %s healthcare solutions and services designed to improve patient care, treatment options, and medical outcomes.",
			name, choose(has("tech"), "technology-enabled", ""))
	default:
		text = fmt.Sprintf("%s provides %s products and services to %s customers, focusing on %s.",
			name, ind, choose(has("b2b"), "business", "consumer"), choose(has("digital"), "digital solutions", "industry-specific offerings"))
	}
	return strings.Join(strings.Fields(text), " ")
}
