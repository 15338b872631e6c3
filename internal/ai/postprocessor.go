package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/bilgisen/autostudio/internal/models"
)

// similarityFloor is the score below which an audit reports zero similarity.
// This is a presentation policy, not a measurement.
const similarityFloor = 10

var (
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	scriptBlocks  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	dangerousTags = regexp.MustCompile(`(?i)</?(script|iframe|object|embed|link|meta)[^>]*>`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9]`)
)

// PostProcessor validates and cleans structured model output.
type PostProcessor struct {
	maxTitleLength       int
	maxDescriptionLength int
	minContentLength     int
}

func NewPostProcessor() *PostProcessor {
	return &PostProcessor{
		maxTitleLength:       60,
		maxDescriptionLength: 160,
		minContentLength:     50,
	}
}

// CleanJSON strips Markdown code fences that models sometimes wrap JSON in.
func CleanJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// DecodeJSON cleans text and unmarshals it into v.
func DecodeJSON(text string, v interface{}) error {
	clean := CleanJSON(text)
	if clean == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return fmt.Errorf("invalid JSON in model response: %w", err)
	}
	return nil
}

// ProcessDraft validates and normalizes a generated article draft.
func (p *PostProcessor) ProcessDraft(d *models.ArticleDraft) error {
	d.Content = p.cleanMarkdown(unescapeNewlines(d.Content))
	if len(strings.TrimSpace(d.Content)) < p.minContentLength {
		return fmt.Errorf("content too short, minimum %d characters required", p.minContentLength)
	}

	d.Title = p.cleanText(d.Title)
	d.SeoTitle = truncateText(p.cleanText(d.SeoTitle), p.maxTitleLength)
	d.MetaDescription = truncateText(p.cleanText(d.MetaDescription), p.maxDescriptionLength)
	d.FocusKeyword = p.cleanText(d.FocusKeyword)

	if d.Slug == "" && d.Title != "" {
		d.Slug = Slugify(d.Title)
	}
	if d.Keywords == nil {
		d.Keywords = []string{}
	}
	return nil
}

// ProcessAudit normalizes an audit result and applies the similarity floor.
func (p *PostProcessor) ProcessAudit(a *models.AuditResult) {
	a.Rewritten = p.cleanMarkdown(unescapeNewlines(a.Rewritten))
	a.Similarity = ClampSimilarity(a.Similarity)
	if a.SeoRecommendations == nil {
		a.SeoRecommendations = []string{}
	}
}

// ClampSimilarity reports any score below the floor as exactly zero.
func ClampSimilarity(score float64) float64 {
	if score < similarityFloor {
		return 0
	}
	return score
}

// Slugify lowercases s and replaces every character outside [a-z0-9] with '-'.
func Slugify(s string) string {
	return nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
}

// cleanText removes control characters and normalizes whitespace
func (p *PostProcessor) cleanText(s string) string {
	s = controlChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// cleanMarkdown removes embedded active HTML and normalizes line endings
func (p *PostProcessor) cleanMarkdown(content string) string {
	content = scriptBlocks.ReplaceAllString(content, "")
	content = dangerousTags.ReplaceAllString(content, "")
	return strings.ReplaceAll(content, "\r\n", "\n")
}

// unescapeNewlines turns literal "\n" sequences left by double-encoded JSON
// into real line breaks.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func truncateText(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
