package models

// Competition is a coarse keyword/topic difficulty bucket.
type Competition string

const (
	CompetitionLow    Competition = "Low"
	CompetitionMedium Competition = "Medium"
	CompetitionHigh   Competition = "High"
)

// TrendType classifies how a topic is trending.
type TrendType string

const (
	TrendDaily    TrendType = "Daily"
	TrendRealtime TrendType = "Realtime"
	TrendBreakout TrendType = "Breakout"
	TrendRising   TrendType = "Rising"
)

// Trend is a discovered trending topic.
type Trend struct {
	Topic        string      `json:"topic"`
	Volume       string      `json:"volume"`
	Category     string      `json:"category"`
	Rising       bool        `json:"rising"`
	SearchIntent string      `json:"searchIntent"`
	TrendType    TrendType   `json:"trendType"`
	TimePeriod   string      `json:"timePeriod"`
	Region       string      `json:"region"`
	Competition  Competition `json:"competition"`
}

// Keyword is an SEO keyword candidate.
type Keyword struct {
	Phrase      string      `json:"phrase"`
	Volume      string      `json:"volume"`
	Competition Competition `json:"competition"`
	Intent      string      `json:"intent"`
	Type        string      `json:"type"`
}

// Suggestion is a low-competition topic idea.
type Suggestion struct {
	Topic     string   `json:"topic"`
	Reason    string   `json:"reason"`
	Potential string   `json:"potential"`
	Keywords  []string `json:"keywords"`
}

// Country is a selectable trend region.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Countries lists the regions offered by the dashboard.
var Countries = []Country{
	{Code: "GLOBAL", Name: "Global"},
	{Code: "US", Name: "United States"},
	{Code: "GB", Name: "United Kingdom"},
	{Code: "CA", Name: "Canada"},
	{Code: "AU", Name: "Australia"},
	{Code: "PK", Name: "Pakistan"},
	{Code: "IN", Name: "India"},
	{Code: "AE", Name: "UAE"},
}

// CountryName resolves a country code to its display name, falling back to
// the code itself.
func CountryName(code string) string {
	for _, c := range Countries {
		if c.Code == code {
			return c.Name
		}
	}
	return code
}

// CategoryIDs maps dashboard categories to Google Trends category ids.
var CategoryIDs = map[string]int{
	"All categories":        0,
	"Business & Industrial": 12,
	"Technology":            7,
	"Health":                45,
	"Entertainment":         3,
	"Sports":                20,
	"Finance":               7,
	"Education":             958,
	"Science":               174,
	"Shopping":              18,
	"Real Estate":           29,
	"Travel":                67,
	"Food & Drink":          71,
	"Home & Garden":         11,
	"Autos & Vehicles":      47,
	"Beauty & Fitness":      44,
	"Jobs & Education":      19,
	"Law & Government":      19,
	"News":                  16,
	"Online Communities":    299,
	"People & Society":      14,
	"Pets & Animals":        66,
	"Reference":             533,
	"SaaS & Software":       7,
}
