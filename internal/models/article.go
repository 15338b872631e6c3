package models

import "time"

// ArticleStatus represents the editorial state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft ArticleStatus = "draft"
	ArticleReview      ArticleStatus = "review"
	ArticleReady       ArticleStatus = "ready"
	ArticlePublished   ArticleStatus = "published"
)

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusDraft, ArticleReview, ArticleReady, ArticlePublished:
		return true
	}
	return false
}

// Article is a generated long-form post.
type Article struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	SeoTitle           string        `json:"seoTitle,omitempty"`
	FocusKeyword       string        `json:"focusKeyword,omitempty"`
	Content            string        `json:"content"`
	Status             ArticleStatus `json:"status"`
	Slug               string        `json:"slug"`
	MetaDescription    string        `json:"metaDescription"`
	Keywords           []string      `json:"keywords"`
	CreatedAt          time.Time     `json:"createdAt"`
	PublishedURL       string        `json:"publishedUrl,omitempty"`
	SimilarityScore    float64       `json:"similarityScore"`
	HumanScore         float64       `json:"humanScore"`
	SeoReady           bool          `json:"seoReady"`
	SeoScore           float64       `json:"seoScore"`
	SeoRecommendations []string      `json:"seoRecommendations"`
	ImageURL           string        `json:"imageUrl,omitempty"`
	// ScheduledAt is an ISO-8601 timestamp passed through to the CMS.
	ScheduledAt string `json:"scheduledAt,omitempty"`
	OwnerID     string `json:"ownerId,omitempty"`
}

// IsScheduled reports whether the article should be published in the future.
func (a *Article) IsScheduled() bool {
	return a.ScheduledAt != ""
}

// ArticleDraft is the structured output of the drafting model.
type ArticleDraft struct {
	Title           string   `json:"title"`
	SeoTitle        string   `json:"seoTitle"`
	FocusKeyword    string   `json:"focusKeyword"`
	Content         string   `json:"content"`
	MetaDescription string   `json:"metaDescription"`
	Slug            string   `json:"slug"`
	Keywords        []string `json:"keywords"`
}

// AuditResult is the structured output of the humanize/SEO audit.
type AuditResult struct {
	Rewritten          string   `json:"rewritten"`
	Similarity         float64  `json:"similarity"`
	HumanScore         float64  `json:"humanScore"`
	SeoScore           float64  `json:"seoScore"`
	SeoRecommendations []string `json:"seoRecommendations"`
}
