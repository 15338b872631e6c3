// Package studio implements the content studio workflows: trend discovery,
// keyword research, the draft/audit/image article pipeline and publishing.
package studio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/members"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/bilgisen/autostudio/internal/state"
	"github.com/rs/zerolog"
)

// ErrArticleNotFound is returned for unknown or inaccessible articles.
var ErrArticleNotFound = errors.New("article not found")

// Engine produces content. *ai.Orchestrator implements it.
type Engine interface {
	FetchTrendingTopics(ctx context.Context, niche, country, category, apiKey string) ([]models.Trend, error)
	FindKeywords(ctx context.Context, seed, startDate, endDate, apiKey string) ([]models.Keyword, error)
	FetchSmartSuggestions(ctx context.Context, category, country, apiKey string) ([]models.Suggestion, error)
	GenerateArticle(ctx context.Context, topic, intent, apiKey string) (*models.ArticleDraft, error)
	AuditAndRewrite(ctx context.Context, content, title string, keywords []string, apiKey string) (*models.AuditResult, error)
	GenerateBlogImage(ctx context.Context, topic, apiKey string) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ArticleRepository persists articles. *storage.Storage implements it.
type ArticleRepository interface {
	SaveArticle(ctx context.Context, a *models.Article) error
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	ListArticles(ctx context.Context, page, pageSize int) ([]*models.Article, error)
	DeleteArticle(ctx context.Context, id string) error
}

// Publisher pushes an article to the CMS. *wordpress.Publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, a *models.Article, cfg models.WordPressConfig) (string, error)
}

// ImageStore offloads generated images. *assets.R2Uploader implements it.
type ImageStore interface {
	StoreImage(ctx context.Context, name, dataURI string) (string, error)
}

// TrendFeed lists daily trending searches. *feed.Processor implements it.
type TrendFeed interface {
	DailyTrends(ctx context.Context, geo string) ([]models.Trend, error)
}

// Deps are the collaborators of a Service. Images and Feed are optional.
type Deps struct {
	Engine    Engine
	Articles  ArticleRepository
	Publisher Publisher
	Images    ImageStore
	Feed      TrendFeed
	Members   *members.Store
	State     *state.AppState
	Logs      *ActivityLog
}

// Service coordinates the studio workflows.
type Service struct {
	engine    Engine
	articles  ArticleRepository
	publisher Publisher
	images    ImageStore
	feed      TrendFeed
	members   *members.Store
	state     *state.AppState
	logs      *ActivityLog
	now       func() time.Time
	log       zerolog.Logger
}

func New(d Deps) *Service {
	logs := d.Logs
	if logs == nil {
		logs = NewActivityLog(0)
	}
	return &Service{
		engine:    d.Engine,
		articles:  d.Articles,
		publisher: d.Publisher,
		images:    d.Images,
		feed:      d.Feed,
		members:   d.Members,
		state:     d.State,
		logs:      logs,
		now:       time.Now,
		log:       logger.Component("studio"),
	}
}

// Logs returns the activity log.
func (s *Service) Logs() *ActivityLog { return s.logs }

// State returns the application state.
func (s *Service) State() *state.AppState { return s.state }

// Members returns the member store.
func (s *Service) Members() *members.Store { return s.members }

// GenerateText answers a plain prompt with the proxy model.
func (s *Service) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.engine.GenerateText(ctx, prompt)
}

// Reset clears persisted state, every article and the activity log.
func (s *Service) Reset(ctx context.Context) error {
	s.state.Reset(ctx)

	articles, err := s.articles.ListArticles(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to list articles: %w", err)
	}
	for _, a := range articles {
		if err := s.articles.DeleteArticle(ctx, a.ID); err != nil {
			return fmt.Errorf("failed to delete article %s: %w", a.ID, err)
		}
	}
	s.logs.Clear()
	s.log.Warn().Int("articles", len(articles)).Msg("Studio reset")
	return nil
}

func (s *Service) recordUsage(ctx context.Context, sess *Session, kinds ...models.UsageKind) {
	if sess == nil || sess.Member == nil {
		return
	}
	for _, kind := range kinds {
		m, err := s.members.RecordUsage(ctx, sess.Member.ID, kind)
		if err != nil {
			s.log.Warn().Err(err).Str("member_id", sess.Member.ID).Str("kind", string(kind)).Msg("Failed to record usage")
			continue
		}
		sess.Member = m
	}
}
