// Package app wires configuration into the running studio: the state
// backend, the AI provider, publishing, image offload, feeds and the
// auto-refresh scheduler.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bilgisen/autostudio/internal/ai"
	"github.com/bilgisen/autostudio/internal/assets"
	"github.com/bilgisen/autostudio/internal/cache"
	"github.com/bilgisen/autostudio/internal/config"
	"github.com/bilgisen/autostudio/internal/feed"
	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/members"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/bilgisen/autostudio/internal/scheduler"
	"github.com/bilgisen/autostudio/internal/state"
	"github.com/bilgisen/autostudio/internal/storage"
	"github.com/bilgisen/autostudio/internal/studio"
	"github.com/bilgisen/autostudio/internal/wordpress"
)

// App is the assembled studio.
type App struct {
	Studio    *studio.Service
	Scheduler *scheduler.Scheduler
	State     *state.AppState
	Members   *members.Store
	Feed      *feed.Processor

	closers []func() error
}

// OpenBackend opens the blob backend named by cfg.StoreBackend. The returned
// close function releases it.
func OpenBackend(cfg *config.Config) (state.Backend, func() error, error) {
	switch cfg.StoreBackend {
	case "memory":
		m := cache.NewMemoryStore()
		return m, m.Close, nil
	case "file":
		b, err := storage.NewFileBlobs(filepath.Join(cfg.StoragePath, "state"))
		if err != nil {
			return nil, nil, err
		}
		return b, func() error { return nil }, nil
	case "redis":
		r, err := cache.NewRedisClient(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	case "sqlite":
		s, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// NewProvider returns the AI provider selected by cfg.AIBackend.
func NewProvider(cfg *config.Config) ai.Provider {
	if cfg.AIBackend == "sdk" {
		return ai.NewGenAIClient(cfg.AIApiKey)
	}
	return ai.NewGeminiClient(cfg.AIApiKey, cfg.AIBaseURL, cfg.AITimeout)
}

// NewOrchestrator builds the content engine from cfg.
func NewOrchestrator(cfg *config.Config, provider ai.Provider) *ai.Orchestrator {
	return ai.NewOrchestrator(provider,
		ai.Models{
			Search:   cfg.AISearchModel,
			Fallback: cfg.AIFallbackModel,
			Fast:     cfg.AIFastModel,
			Pro:      cfg.AIProModel,
			Image:    cfg.AIImageModel,
			Proxy:    cfg.AIProxyModel,
		},
		ai.Policy{
			SearchTimeout:   cfg.AISearchTimeout,
			FallbackBackoff: cfg.AIFallbackBackoff,
			FallbackRetries: cfg.AIFallbackRetries,
		},
	)
}

// New assembles the studio from cfg and loads the persisted state. When
// provider is nil the one selected by cfg is used.
func New(ctx context.Context, cfg *config.Config, provider ai.Provider) (*App, error) {
	log := logger.Component("app")
	a := &App{}

	backend, closeBackend, err := OpenBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.StoreBackend, err)
	}
	a.closers = append(a.closers, closeBackend)

	a.State = state.New(backend)
	a.State.Load(ctx)
	a.Members = members.NewStore(a.State, members.WithWriteDelay(cfg.StoreWriteDelay))

	articles, err := storage.NewStorage(cfg.StoragePath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if provider == nil {
		provider = NewProvider(cfg)
	}

	deps := studio.Deps{
		Engine:    NewOrchestrator(cfg, provider),
		Articles:  articles,
		Publisher: wordpress.NewPublisher(cfg.HTTPTimeout),
		Members:   a.Members,
		State:     a.State,
	}

	if cfg.AssetsEnabled() {
		up, err := assets.NewR2Uploader(ctx, assets.Config{
			Endpoint:  cfg.R2Endpoint,
			AccountID: cfg.R2AccountID,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
			PublicURL: cfg.AssetPublicURL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Image offload disabled")
		} else {
			deps.Images = up
		}
	}

	if cfg.TrendsFeedURL != "" {
		a.Feed = feed.NewProcessor(cfg.TrendsFeedURL)
		deps.Feed = a.Feed
	}

	a.Studio = studio.New(deps)
	a.Scheduler = scheduler.New(cfg.AutoRefreshInterval, func(ctx context.Context, p scheduler.Params) ([]models.Trend, error) {
		return a.Studio.SyncTrends(ctx, &studio.Session{APIKey: p.APIKey}, studio.TrendQuery{
			Niche:    p.Niche,
			Country:  p.Country,
			Category: p.Category,
		})
	})

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("ai_backend", cfg.AIBackend).
		Bool("assets", deps.Images != nil).
		Msg("Studio assembled")
	return a, nil
}

// Close stops the scheduler and releases the backend.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
