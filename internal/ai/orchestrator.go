package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/bilgisen/autostudio/internal/utils"
	"github.com/rs/zerolog"
)

const imageAspectRatio = "16:9"

// Models selects the model variant used for each step.
type Models struct {
	Search   string // search-augmented structured calls
	Fallback string // fast non-search fallback
	Fast     string // article drafting and audit
	Pro      string // second article drafting attempt
	Image    string
	Proxy    string // plain text generation
}

// Policy is the resilience policy for search-augmented intents.
type Policy struct {
	SearchTimeout   time.Duration
	FallbackBackoff time.Duration
	FallbackRetries int
}

// DefaultPolicy waits 25s for search, then falls back after 1.5s with two
// retries.
func DefaultPolicy() Policy {
	return Policy{
		SearchTimeout:   25 * time.Second,
		FallbackBackoff: 1500 * time.Millisecond,
		FallbackRetries: 2,
	}
}

// Orchestrator turns content-generation intents into provider calls with
// timeout, fallback and retry handling. Every error it returns is an *Error.
type Orchestrator struct {
	provider Provider
	models   Models
	policy   Policy
	post     *PostProcessor
	sleep    func(ctx context.Context, d time.Duration) error
	log      zerolog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithSleep replaces the backoff sleeper, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func NewOrchestrator(provider Provider, m Models, p Policy, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		models:   m,
		policy:   p,
		post:     NewPostProcessor(),
		sleep:    utils.Sleep,
		log:      logger.Component("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FetchTrendingTopics discovers breakout topics for a niche, region and
// category.
func (o *Orchestrator) FetchTrendingTopics(ctx context.Context, niche, country, category, apiKey string) ([]models.Trend, error) {
	search, fallback := BuildTrendsPrompts(niche, country, category)
	return searchWithFallback[models.Trend](ctx, o, "trends",
		Request{Model: o.models.Search, Prompt: search, Schema: TrendsSchema, Search: true, APIKey: apiKey},
		Request{Model: o.models.Fallback, Prompt: fallback, Schema: TrendsSchema, APIKey: apiKey},
	)
}

// FindKeywords expands a seed into SEO keywords, optionally for a date range.
func (o *Orchestrator) FindKeywords(ctx context.Context, seed, startDate, endDate, apiKey string) ([]models.Keyword, error) {
	search, fallback := BuildKeywordsPrompts(seed, startDate, endDate)
	return searchWithFallback[models.Keyword](ctx, o, "keywords",
		Request{Model: o.models.Search, Prompt: search, Schema: KeywordsSchema, Search: true, APIKey: apiKey},
		Request{Model: o.models.Fallback, Prompt: fallback, Schema: KeywordsSchema, APIKey: apiKey},
	)
}

// FetchSmartSuggestions proposes low-competition topics for a category.
func (o *Orchestrator) FetchSmartSuggestions(ctx context.Context, category, country, apiKey string) ([]models.Suggestion, error) {
	search, fallback := BuildSuggestionsPrompts(category, country)
	return searchWithFallback[models.Suggestion](ctx, o, "suggestions",
		Request{Model: o.models.Search, Prompt: search, Schema: SuggestionsSchema, Search: true, APIKey: apiKey},
		Request{Model: o.models.Fallback, Prompt: fallback, Schema: SuggestionsSchema, APIKey: apiKey},
	)
}

// GenerateArticle drafts an article with the fast model and, on any failure,
// tries the pro model exactly once.
func (o *Orchestrator) GenerateArticle(ctx context.Context, topic, intent, apiKey string) (*models.ArticleDraft, error) {
	prompt := BuildArticlePrompt(topic, intent)
	log := o.log.With().Str("intent", "article").Str("topic", topic).Logger()

	draft, err := o.draft(ctx, Request{Model: o.models.Fast, Prompt: prompt, Schema: ArticleSchema, APIKey: apiKey})
	if err == nil {
		return draft, nil
	}
	if ctx.Err() != nil {
		return nil, Classify(ctx.Err())
	}
	log.Warn().Err(err).Str("model", o.models.Fast).Msg("Article generation failed, trying pro model")

	draft, err = o.draft(ctx, Request{Model: o.models.Pro, Prompt: prompt, Schema: ArticleSchema, APIKey: apiKey})
	if err != nil {
		log.Error().Err(err).Str("model", o.models.Pro).Msg("Article generation failed")
		return nil, Classify(err)
	}
	return draft, nil
}

func (o *Orchestrator) draft(ctx context.Context, req Request) (*models.ArticleDraft, error) {
	resp, err := o.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	var d models.ArticleDraft
	if err := DecodeJSON(resp.Text, &d); err != nil {
		return nil, err
	}
	if err := o.post.ProcessDraft(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// AuditAndRewrite humanizes content and scores it. It makes a single attempt.
// Similarity scores below 10 are reported as 0.
func (o *Orchestrator) AuditAndRewrite(ctx context.Context, content, title string, keywords []string, apiKey string) (*models.AuditResult, error) {
	resp, err := o.provider.Generate(ctx, Request{
		Model:  o.models.Fast,
		Prompt: BuildAuditPrompt(content, title, keywords),
		Schema: AuditSchema,
		APIKey: apiKey,
	})
	if err != nil {
		o.log.Error().Err(err).Str("intent", "audit").Msg("Audit request failed")
		return nil, Classify(err)
	}

	text := resp.Text
	if text == "" {
		text = `{"rewritten": "", "similarity": 0, "humanScore": 100, "seoScore": 85, "seoRecommendations": []}`
	}
	var result models.AuditResult
	if err := DecodeJSON(text, &result); err != nil {
		o.log.Error().Err(err).Str("intent", "audit").Msg("Audit parse error")
		return nil, Classify(err)
	}
	o.post.ProcessAudit(&result)
	return &result, nil
}

// GenerateBlogImage returns the first generated image as a data URI, or ""
// when the model produced none.
func (o *Orchestrator) GenerateBlogImage(ctx context.Context, topic, apiKey string) (string, error) {
	resp, err := o.provider.Generate(ctx, Request{
		Model:       o.models.Image,
		Prompt:      BuildImagePrompt(topic),
		AspectRatio: imageAspectRatio,
		APIKey:      apiKey,
	})
	if err != nil {
		o.log.Error().Err(err).Str("intent", "image").Msg("Image generation failed")
		return "", Classify(err)
	}
	if len(resp.Images) == 0 {
		return "", nil
	}
	img := resp.Images[0]
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, img.Data), nil
}

// GenerateText runs a plain prompt against the proxy model with the
// process default key.
func (o *Orchestrator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := o.provider.Generate(ctx, Request{Model: o.models.Proxy, Prompt: prompt})
	if err != nil {
		return "", Classify(err)
	}
	return resp.Text, nil
}

// searchWithFallback runs the search-augmented request under the search
// deadline and, if it fails or yields nothing, the fallback request under
// the retry policy.
func searchWithFallback[T any](ctx context.Context, o *Orchestrator, intent string, primary, fallback Request) ([]T, error) {
	log := o.log.With().Str("intent", intent).Logger()

	items, err := utils.WithDeadline(ctx, o.policy.SearchTimeout, func(ctx context.Context) ([]T, error) {
		resp, err := o.provider.Generate(ctx, primary)
		if err != nil {
			return nil, err
		}
		var out []T
		if err := DecodeJSON(resp.Text, &out); err != nil {
			return nil, err
		}
		if len(out) == 0 {
			return nil, ErrEmptyResult
		}
		return out, nil
	})
	if err == nil {
		return items, nil
	}
	if ctx.Err() != nil {
		return nil, Classify(ctx.Err())
	}
	log.Warn().Err(err).Msg("Search-augmented attempt failed or timed out, trying fallback")

	var result []T
	policy := utils.RetryPolicy{
		MaxAttempts: o.policy.FallbackRetries + 1,
		Backoff:     utils.ConstantBackoff(o.policy.FallbackBackoff),
		Sleep:       o.sleep,
		OnRetry: func(attempt int, err error) {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Fallback failed, retrying")
		},
	}
	err = policy.Do(ctx, func(ctx context.Context, attempt int) error {
		resp, err := o.provider.Generate(ctx, fallback)
		if err != nil {
			return err
		}
		text := resp.Text
		if text == "" {
			text = "[]"
		}
		var out []T
		if err := DecodeJSON(text, &out); err != nil {
			return err
		}
		result = out
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Fallback failed after retries")
		return nil, Classify(err)
	}
	if result == nil {
		result = []T{}
	}
	return result, nil
}
