package analysis

import "strings"

type Theme struct {
	Name        string `json:"name"`
	Primary     string `json:"primary"`
	Secondary   string `json:"secondary"`
	Tertiary    string `json:"tertiary"`
	Quaternary  string `json:"quaternary"`
	Gray        string `json:"gray"`
	LightBorder string `json:"lightBorder"`

	CategoryColors map[string]string `json:"categoryColors"`
}

const DefaultTheme = "classic"

var themes = map[string]Theme{
	"classic": {
		Name: "classic", Primary: "#3B82F6", Secondary: "#10B981", Tertiary: "#F59E0B", Quaternary: "#EF4444",
		Gray: "#9CA3AF", LightBorder: "#E5E7EB",
		CategoryColors: map[string]string{
			"visual-understanding": "#10b981",
			"content-generation":   "#3b82f6",
			"text-analysis":        "#ef4444",
			"knowledge-management": "#06b6d4",
			"workflow-automation":  "#f59e0b",
			"other":                "#cbd5e1",
		},
	},
	"nature": {
		Name: "nature", Primary: "#47B881", Secondary: "#00A3B9", Tertiary: "#FFB951", Quaternary: "#F87D7D",
		Gray: "#9CA3AF", LightBorder: "#E6F0EA",
		CategoryColors: map[string]string{
			"visual-understanding": "#22c55e",
			"content-generation":   "#0ea5e9",
			"text-analysis":        "#ef4444",
			"knowledge-management": "#6366f1",
			"workflow-automation":  "#f97316",
			"other":                "#cbd5e1",
		},
	},
	"ocean": {
		Name: "ocean", Primary: "#ADDB67", Secondary: "#7E57C2", Tertiary: "#F78C6C", Quaternary: "#57B6C2",
		Gray: "#9CA3AF", LightBorder: "#E1E8F0",
		CategoryColors: map[string]string{
			"visual-understanding": "#addb67",
			"content-generation":   "#57b6c2",
			"text-analysis":        "#f78c6c",
			"knowledge-management": "#0284c7",
			"workflow-automation":  "#ffd43b",
			"other":                "#cbd5e1",
		},
	},
}

// ThemeByName returns the named palette, falling back to classic.
func ThemeByName(name string) Theme {
	if t, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return themes[DefaultTheme]
}

func ThemeNames() []string {
	return []string{"classic", "nature", "ocean"}
}

func (t Theme) CategoryColor(id string) string {
	if c, ok := t.CategoryColors[id]; ok {
		return c
	}
	return t.CategoryColors[CategoryOther.ID]
}
