package ai

var competitionEnum = []string{"Low", "Medium", "High"}

func str(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

func arrayOf(item *Schema) *Schema { return &Schema{Type: TypeArray, Items: item} }

// TrendsSchema constrains trend discovery output.
var TrendsSchema = arrayOf(&Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"topic":        str(""),
		"volume":       str(""),
		"category":     str(""),
		"rising":       {Type: TypeBoolean},
		"searchIntent": str(""),
		"trendType":    str(""),
		"timePeriod":   str(""),
		"region":       str(""),
		"competition":  {Type: TypeString, Enum: competitionEnum},
	},
	Required: []string{"topic", "volume", "category", "rising", "searchIntent", "trendType", "timePeriod", "region", "competition"},
})

// KeywordsSchema constrains keyword expansion output.
var KeywordsSchema = arrayOf(&Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"phrase":      str(""),
		"volume":      str("Estimated monthly search volume (e.g. 1.2K, 500)"),
		"competition": {Type: TypeString, Enum: competitionEnum},
		"intent":      {Type: TypeString, Enum: []string{"Informational", "Commercial", "Transactional"}},
		"type":        {Type: TypeString, Enum: []string{"Long-tail", "Question", "Seed"}},
	},
	Required: []string{"phrase", "volume", "competition", "intent", "type"},
})

// SuggestionsSchema constrains topic suggestion output.
var SuggestionsSchema = arrayOf(&Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"topic":     str(""),
		"reason":    str(""),
		"potential": str(""),
		"keywords":  {Type: TypeArray, Items: str(""), Description: "Associated high-value keywords"},
	},
	Required: []string{"topic", "reason", "potential", "keywords"},
})

// ArticleSchema constrains article drafting output.
var ArticleSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"title":           str("Main Article Title"),
		"seoTitle":        str("SEO-optimized Title for Yoast (max 60 chars)"),
		"focusKeyword":    str("The primary focus keyword for Yoast SEO"),
		"content":         str("Full article content (800+ words) in MARKDOWN format"),
		"metaDescription": str("Compelling meta description (STRICTLY 150-160 chars with focus keyword and CTA)"),
		"slug":            str("SEO-friendly URL slug"),
		"keywords":        {Type: TypeArray, Items: str(""), Description: "Main keyword and LSI keywords used"},
	},
	Required: []string{"title", "seoTitle", "focusKeyword", "content", "metaDescription", "slug", "keywords"},
}

// AuditSchema constrains the humanize/SEO audit output.
var AuditSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"rewritten":          str("The fully humanized and audited version of the content"),
		"similarity":         {Type: TypeNumber, Description: "Plagiarism similarity score (0-100)"},
		"humanScore":         {Type: TypeNumber, Description: "Human-likeness score (0-100)"},
		"seoScore":           {Type: TypeNumber, Description: "SEO readiness score (0-100)"},
		"seoRecommendations": {Type: TypeArray, Items: str(""), Description: "Specific actionable SEO improvements"},
	},
	Required: []string{"rewritten", "similarity", "humanScore", "seoScore", "seoRecommendations"},
}
