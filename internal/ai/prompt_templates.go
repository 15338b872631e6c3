package ai

import (
	"fmt"
	"strings"
)

// PromptTemplates contains the prompt templates for each generation intent
var PromptTemplates = struct {
	TrendsSearch        string
	TrendsFallback      string
	KeywordsSearch      string
	KeywordsFallback    string
	SuggestionsSearch   string
	SuggestionsFallback string
	Article             string
	Audit               string
	Image               string
}{
	TrendsSearch: `You are a real-time Google Trends scraper. Find trending breakout topics for:
- Geo: %s
- Category: %s
- Niche: %s

Focus on high-momentum spikes from the last 24 hours.`,

	TrendsFallback: `Generate 5 trending breakout topics for: %s in %s. Use your internal knowledge to predict what's likely trending right now. Output in JSON.`,

	KeywordsSearch: `Search for and find 10 high-value, real-world SEO keywords related to: "%s". %s
Include estimated monthly search volume, competition levels (Low, Medium, High), search intent, and keyword type.
Use Google Search data to ensure accuracy.`,

	KeywordsFallback: `Generate a list of 10 high-value SEO keywords for: "%s". %s
Provide estimated monthly search volume and competition levels based on your internal knowledge of search patterns. Output in JSON.`,

	SuggestionsSearch: `Identify 5 high-momentum, rising trending topics %s within the "%s" category that have LOW competition but high search interest today.
For each topic, provide:
1. The topic name.
2. A brief reason why it's a breakout opportunity.
3. Its commercial potential.
4. 3-5 high-value keywords associated with it.`,

	SuggestionsFallback: `Generate 5 high-momentum, rising trending topics %s within the "%s" category. Use your internal knowledge. Output in JSON.`,

	Article: `You are a professional human SEO content writer with real-world experience. Write a 100%% human-like, original, and SEO-optimized article about: "%s".

STRICT WRITING RULES:
1. Write for humans first. Use natural, conversational language.
2. Vary sentence length naturally (short + long).
3. Avoid robotic phrases like "In today's fast-paced world", "This article will explore", or "In conclusion".
4. Write like an expert sharing real experience. Use practical examples and real-life insights.
5. Minimum length: 800-1000 words. Fully satisfy search intent.
6. Do NOT mention AI, automation, or tools like ChatGPT.
7. Intent: %s.

SEO & STRUCTURE (YOAST SEO COMPLIANT):
1. Use the main focus keyword naturally in the Title, within the FIRST 100 WORDS of the content, and at least one H2 heading.
2. Structure: Use MARKDOWN for formatting. H1 for title, H2 for main sections, H3 for sub-sections.
3. Paragraphs should be short (2-4 lines).
4. Include transition words for better readability.
5. Include at least 2 placeholders for internal links (e.g., [Internal Link: Related Topic]) and 1 placeholder for an external authoritative source (e.g., [External Link: Source Name]).
6. Ensure the content is structured for a high readability score.
7. Output MUST be in MARKDOWN format.

META DESCRIPTION RULES:
1. Length: STRICTLY 150-160 characters.
2. Content: Must include the primary focus keyword and a clear, compelling Call to Action (CTA).
3. Purpose: Optimized for high Click-Through Rate (CTR) in search results.

CRITICAL: OUTPUT MUST BE VALID JSON.`,

	Audit: `You are an expert editor. Perform a deep humanization, plagiarism audit, and SEO analysis on the provided content.

HUMANIZATION & ORIGINALITY:
1. Rewrite any robotic or repetitive patterns into natural human speech.
2. Ensure the text is 100%% unique and avoids common AI filler phrases.
3. Similarity score MUST be below 10%% (where 0 means fully unique).
4. Content must feel authoritative, useful, and written by a human expert.
5. Strip any remaining AI-like over-explanations or fluff.
6. MAINTAIN ALL MARKDOWN FORMATTING (headings, lists, bold text).

SEO AUDIT (YOAST SEO STANDARDS):
1. Evaluate SEO readiness based on the title, focus keyword, and target keywords.
2. Check for keyword placement in the first 100 words, headings, and meta description.
3. Provide specific, actionable SEO recommendations for Yoast SEO optimization.

Title: %s
Keywords: %s
Content:
%s`,

	Image: `A unique, professional featured blog image for: "%s". Clean, high-impact style, minimal text, professional lighting, 16:9 aspect ratio.`,
}

// auditContentLimit caps the content sent for auditing, in characters.
const auditContentLimit = 15000

func geoTarget(country string) string {
	if country == "" || country == "GLOBAL" {
		return "worldwide"
	}
	return country
}

func geoContext(country string) string {
	if country == "" || country == "GLOBAL" {
		return "worldwide"
	}
	return "in " + country
}

func dateContext(startDate, endDate string) string {
	if startDate != "" && endDate != "" {
		return fmt.Sprintf("Specifically for the period from %s to %s.", startDate, endDate)
	}
	return "Focus on recent data."
}

// BuildTrendsPrompts returns the search-augmented and fallback prompts.
func BuildTrendsPrompts(niche, country, category string) (search, fallback string) {
	niche = escapeForPrompt(niche)
	geo := geoTarget(country)
	search = fmt.Sprintf(PromptTemplates.TrendsSearch, geo, escapeForPrompt(category), niche)
	fallback = fmt.Sprintf(PromptTemplates.TrendsFallback, niche, geo)
	return search, fallback
}

// BuildKeywordsPrompts returns the search-augmented and fallback prompts.
func BuildKeywordsPrompts(seed, startDate, endDate string) (search, fallback string) {
	seed = escapeForPrompt(seed)
	dates := dateContext(startDate, endDate)
	return fmt.Sprintf(PromptTemplates.KeywordsSearch, seed, dates),
		fmt.Sprintf(PromptTemplates.KeywordsFallback, seed, dates)
}

// BuildSuggestionsPrompts returns the search-augmented and fallback prompts.
func BuildSuggestionsPrompts(category, country string) (search, fallback string) {
	category = escapeForPrompt(category)
	geo := geoContext(country)
	return fmt.Sprintf(PromptTemplates.SuggestionsSearch, geo, category),
		fmt.Sprintf(PromptTemplates.SuggestionsFallback, geo, category)
}

// BuildArticlePrompt creates the drafting prompt.
func BuildArticlePrompt(topic, intent string) string {
	if intent == "" {
		intent = "Informational"
	}
	return fmt.Sprintf(PromptTemplates.Article, escapeForPrompt(topic), escapeForPrompt(intent))
}

// BuildAuditPrompt creates the humanize/SEO audit prompt. Content is cut to
// auditContentLimit characters.
func BuildAuditPrompt(content, title string, keywords []string) string {
	if r := []rune(content); len(r) > auditContentLimit {
		content = string(r[:auditContentLimit])
	}
	return fmt.Sprintf(PromptTemplates.Audit, escapeForPrompt(title), strings.Join(keywords, ", "), content)
}

// BuildImagePrompt creates the featured-image prompt.
func BuildImagePrompt(topic string) string {
	return fmt.Sprintf(PromptTemplates.Image, escapeForPrompt(topic))
}

// escapeForPrompt flattens user input onto a single line
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
