package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/autostudio/internal/ai"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/bilgisen/autostudio/internal/storage"
	"github.com/bilgisen/autostudio/internal/wordpress"
	"github.com/google/uuid"
)

const (
	defaultHumanScore = 95
	seoReadyThreshold = 80
)

// WriteArticle runs the three-step pipeline (draft, audit, image) and
// stores the result as a ready article.
func (s *Service) WriteArticle(ctx context.Context, sess *Session, topic, intent string) (*models.Article, error) {
	topic = strings.TrimSpace(topic)
	if intent == "" {
		intent = "Informational"
	}
	key := apiKey(sess)

	s.logs.Info(fmt.Sprintf("Engine: Starting generation for %q...", topic))
	article, err := s.runPipeline(ctx, topic, intent, key)
	if err != nil {
		s.logs.Error("Failure: " + err.Error())
		return nil, err
	}
	if sess != nil && sess.Member != nil {
		article.OwnerID = sess.Member.ID
	}

	if err := s.articles.SaveArticle(ctx, article); err != nil {
		s.logs.Error("Failure: could not save article")
		return nil, fmt.Errorf("failed to save article: %w", err)
	}

	s.logs.Success("Success: Article generated and audited.")
	s.recordUsage(ctx, sess, models.UsageArticles, models.UsageImages)
	return article, nil
}

func (s *Service) runPipeline(ctx context.Context, topic, intent, key string) (*models.Article, error) {
	s.logs.Info("Step 1/3: Generating human-like draft...")
	draft, err := s.engine.GenerateArticle(ctx, topic, intent, key)
	if err != nil {
		return nil, err
	}

	title := draft.Title
	if title == "" {
		title = topic
	}
	keywords := draft.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	s.logs.Info("Step 2/3: Running humanization and SEO audit...")
	audit, err := s.engine.AuditAndRewrite(ctx, draft.Content, title, keywords, key)
	if err != nil {
		return nil, err
	}

	s.logs.Info("Step 3/3: Generating professional featured image...")
	image, err := s.engine.GenerateBlogImage(ctx, topic, key)
	if err != nil {
		return nil, err
	}

	a := &models.Article{
		ID:                 uuid.NewString(),
		Title:              title,
		SeoTitle:           draft.SeoTitle,
		FocusKeyword:       draft.FocusKeyword,
		Content:            draft.Content,
		Status:             models.ArticleReady,
		Slug:               draft.Slug,
		MetaDescription:    draft.MetaDescription,
		Keywords:           keywords,
		CreatedAt:          s.now(),
		SimilarityScore:    audit.Similarity,
		HumanScore:         audit.HumanScore,
		SeoReady:           audit.SeoScore > seoReadyThreshold,
		SeoScore:           audit.SeoScore,
		SeoRecommendations: audit.SeoRecommendations,
		ImageURL:           image,
	}
	if audit.Rewritten != "" {
		a.Content = audit.Rewritten
	}
	if a.Slug == "" {
		a.Slug = ai.Slugify(topic)
	}
	if a.HumanScore == 0 {
		a.HumanScore = defaultHumanScore
	}
	if a.SeoRecommendations == nil {
		a.SeoRecommendations = []string{}
	}

	if s.images != nil && strings.HasPrefix(image, "data:") {
		name := a.Slug + "-" + a.ID[:8]
		if url, err := s.images.StoreImage(ctx, name, image); err != nil {
			s.log.Warn().Err(err).Str("article_id", a.ID).Msg("Image offload failed, keeping inline image")
		} else {
			a.ImageURL = url
		}
	}
	return a, nil
}

// Publish sends an article to WordPress. Scheduled articles stay ready with
// the post URL attached; others become published.
func (s *Service) Publish(ctx context.Context, sess *Session, id string) (*models.Article, error) {
	a, err := s.GetArticle(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	cfg := s.state.WordPressConfig()
	if !cfg.Configured() {
		s.logs.Error("WP Error: Configuration missing!")
		return nil, wordpress.ErrNotConfigured
	}

	action := "Publishing"
	if a.IsScheduled() {
		action = "Scheduling"
	}
	s.logs.Info(fmt.Sprintf("%s %q to WordPress...", action, a.Title))

	url, err := s.publisher.Publish(ctx, a, cfg)
	if err != nil {
		s.logs.Error("WP Error: " + err.Error())
		return nil, err
	}

	a.PublishedURL = url
	if a.IsScheduled() {
		a.Status = models.ArticleReady
	} else {
		a.Status = models.ArticlePublished
	}
	if err := s.articles.SaveArticle(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save article: %w", err)
	}

	if a.IsScheduled() {
		s.logs.Success("Success: Post scheduled for " + scheduleLabel(a.ScheduledAt))
	} else {
		s.logs.Success("Success: Post live at " + url)
	}
	return a, nil
}

// UpdateArticle replaces the editable fields of an existing article.
func (s *Service) UpdateArticle(ctx context.Context, sess *Session, updated *models.Article) (*models.Article, error) {
	current, err := s.GetArticle(ctx, sess, updated.ID)
	if err != nil {
		return nil, err
	}
	if updated.Status != "" && !updated.Status.Valid() {
		return nil, fmt.Errorf("invalid article status %q", updated.Status)
	}

	next := *updated
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.OwnerID = current.OwnerID
	if next.Status == "" {
		next.Status = current.Status
	}
	if next.Keywords == nil {
		next.Keywords = []string{}
	}
	if next.SeoRecommendations == nil {
		next.SeoRecommendations = []string{}
	}

	if err := s.articles.SaveArticle(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save article: %w", err)
	}
	return &next, nil
}

// DeleteArticle removes an article.
func (s *Service) DeleteArticle(ctx context.Context, sess *Session, id string) error {
	if _, err := s.GetArticle(ctx, sess, id); err != nil {
		return err
	}
	if err := s.articles.DeleteArticle(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrArticleNotFound
		}
		return err
	}
	s.logs.Info("Cleanup: Draft deleted.")
	return nil
}

// GetArticle returns an article the caller may see.
func (s *Service) GetArticle(ctx context.Context, sess *Session, id string) (*models.Article, error) {
	a, err := s.articles.GetArticle(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	if !canSee(sess, a) {
		return nil, ErrArticleNotFound
	}
	return a, nil
}

// ListArticles returns the caller's articles, newest first. Admins and
// anonymous callers of a public instance see every article.
func (s *Service) ListArticles(ctx context.Context, sess *Session) ([]*models.Article, error) {
	all, err := s.articles.ListArticles(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Article, 0, len(all))
	for _, a := range all {
		if canSee(sess, a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func canSee(sess *Session, a *models.Article) bool {
	if sess == nil || sess.Member == nil || sess.IsAdmin() {
		return true
	}
	return a.OwnerID == sess.Member.ID
}

func scheduleLabel(ts string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("Jan 2, 2006 15:04")
		}
	}
	return ts
}
