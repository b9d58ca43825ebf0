package analysis

import "strings"

type Category struct {
	ID   string
	Name string
	Icon string

	categoryKeywords []string
	titleKeywords    []string
}

func (c Category) matches(o Opportunity) bool {
	category := strings.ToLower(o.Category)
	title := strings.ToLower(o.Title)
	if category != "" {
		for _, kw := range c.categoryKeywords {
			if strings.Contains(category, kw) {
				return true
			}
		}
	}
	for _, kw := range c.titleKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// Categories is the ordered category list; an opportunity belongs to the first
// category it matches and falls through to Other.
var Categories = []Category{
	{
		ID: "knowledge-management", Name: "Knowledge Management", Icon: "ri-search-line",
		categoryKeywords: []string{"knowledge"},
		titleKeywords:    []string{"knowledge", "search"},
	},
	{
		ID: "content-generation", Name: "Content Generation", Icon: "ri-file-text-line",
		categoryKeywords: []string{"content"},
		titleKeywords:    []string{"content", "generation"},
	},
	{
		ID: "text-analysis", Name: "Text Analysis", Icon: "ri-bar-chart-line",
		categoryKeywords: []string{"data", "analysis"},
		titleKeywords:    []string{"analysis"},
	},
	{
		ID: "workflow-automation", Name: "Workflow Automation", Icon: "ri-settings-line",
		categoryKeywords: []string{"automation"},
		titleKeywords:    []string{"automation", "workflow"},
	},
	{
		ID: "visual-understanding", Name: "Visual Understanding", Icon: "ri-image-line",
		categoryKeywords: []string{"visual"},
		titleKeywords:    []string{"visual", "image", "vision"},
	},
	CategoryOther,
}

var CategoryOther = Category{ID: "other", Name: "Other", Icon: "ri-apps-line"}

func CategoryFor(o Opportunity) Category {
	for _, c := range Categories {
		if c.ID != CategoryOther.ID && c.matches(o) {
			return c
		}
	}
	return CategoryOther
}

type CategoryShare struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value int    `json:"value"`
	Fill  string `json:"fill"`
}

// CategoryDistribution counts opportunities per category. Every category is
// returned, in Categories order, including those with no opportunities.
func CategoryDistribution(opps []Opportunity, theme Theme) []CategoryShare {
	counts := map[string]int{}
	for _, o := range opps {
		counts[CategoryFor(o).ID]++
	}
	out := make([]CategoryShare, len(Categories))
	for i, c := range Categories {
		out[i] = CategoryShare{ID: c.ID, Name: c.Name, Value: counts[c.ID], Fill: theme.CategoryColor(c.ID)}
	}
	return out
}
